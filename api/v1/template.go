package v1

type CreateTemplateRequest struct {
	Name        string `json:"name" binding:"required" example:"kali-lab"`
	Description string `json:"description"`
	Memory      int64  `json:"memory" example:"2048"`
	Cores       int64  `json:"cores" example:"2"`
}

type UpdateTemplateRequest struct {
	Description *string `json:"description"`
	Memory      *int64  `json:"memory"`
	Cores       *int64  `json:"cores"`
	IsActive    *bool   `json:"is_active"`
}

type TemplateDetail struct {
	Id          int64                   `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Memory      int64                   `json:"memory"`
	Cores       int64                   `json:"cores"`
	IsActive    bool                    `json:"is_active"`
	Mappings    []TemplateMappingDetail `json:"mappings,omitempty"`
}

type TemplateMappingDetail struct {
	NodeName     string `json:"node_name"`
	TemplateVMID uint32 `json:"template_vmid"`
}

type ListTemplateResponse struct {
	Response
	Data []TemplateDetail
}

// CreateTemplateMappingRequest registers a template VMID on one node. There is
// no replication path: the template VM must already exist on that node.
type CreateTemplateMappingRequest struct {
	NodeName     string `json:"node_name" binding:"required"`
	TemplateVMID uint32 `json:"template_vmid" binding:"required"`
}
