package v1

type UpdateNodeRequest struct {
	MaxVMs      *int64  `json:"max_vms"`
	Priority    *int64  `json:"priority"`
	IsActive    *bool   `json:"is_active"`
	StoragePool *string `json:"storage_pool"`
}

type NodeDetail struct {
	Id             int64           `json:"id"`
	NodeName       string          `json:"node_name"`
	MaxVMs         int64           `json:"max_vms"`
	Priority       int64           `json:"priority"`
	IsActive       bool            `json:"is_active"`
	StoragePool    string          `json:"storage_pool"`
	VMCount        int64           `json:"vm_count"`
	AvailableSlots int64           `json:"available_slots"`
	Utilization    float64         `json:"utilization"`
	Storages       []StorageDetail `json:"storages,omitempty"`
}

type ListNodeResponse struct {
	Response
	Data []NodeDetail
}

type NodeStatistics struct {
	TotalNodes         int64        `json:"total_nodes"`
	ActiveNodes        int64        `json:"active_nodes"`
	TotalCapacity      int64        `json:"total_capacity"`
	TotalVMs           int64        `json:"total_vms"`
	OverallUtilization float64      `json:"overall_utilization"`
	Nodes              []NodeDetail `json:"nodes"`
}

type CreateStorageRequest struct {
	StorageName string `json:"storage_name" binding:"required"`
	Weight      int64  `json:"weight" binding:"min=0"`
	MaxVMs      *int64 `json:"max_vms"`
}

type UpdateStorageRequest struct {
	Weight   *int64 `json:"weight"`
	MaxVMs   *int64 `json:"max_vms"`
	IsActive *bool  `json:"is_active"`
}

type StorageDetail struct {
	Id          int64  `json:"id"`
	StorageName string `json:"storage_name"`
	Weight      int64  `json:"weight"`
	MaxVMs      *int64 `json:"max_vms"`
	IsActive    bool   `json:"is_active"`
	VMCount     int64  `json:"vm_count"`
}
