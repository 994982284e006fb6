package model

import (
	"time"
)

// NodeConfig is the per-node deployment configuration. Rows are created by
// administrators or upserted by the cluster reconciliation pass; a node absent
// from discovery is never deleted automatically.
type NodeConfig struct {
	Id       int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	NodeName string `json:"node_name" gorm:"column:node_name;uniqueIndex"`
	MaxVMs   int64  `json:"max_vms" gorm:"column:max_vms"`
	Priority int64  `json:"priority" gorm:"column:priority;default:1"`
	IsActive int8   `json:"is_active" gorm:"column:is_active;default:1"`
	// Legacy single default pool; preferred source is the node_storage rows.
	StoragePool string `json:"storage_pool" gorm:"column:storage_pool"`
	// Round-robin cursor for distributing VMs across storages, always reduced
	// modulo the current weighted candidate list length.
	StorageCursor int64     `json:"storage_cursor" gorm:"column:storage_cursor;default:0"`
	ResourceHash  string    `json:"resource_hash" gorm:"column:resource_hash;index"`
	LastSyncTime  time.Time `json:"last_sync_time" gorm:"column:last_sync_time"`
	CreateTime    time.Time `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime    time.Time `json:"update_time" gorm:"column:gmt_modified"`
}

func (NodeConfig) TableName() string {
	return "node_config"
}

// NodeStorage is a storage pool attached to a node, with a relative weight for
// the weighted round-robin distribution and an optional VM cap.
type NodeStorage struct {
	Id          int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	NodeID      int64  `json:"node_id" gorm:"column:node_id;index;uniqueIndex:uq_node_storage"`
	StorageName string `json:"storage_name" gorm:"column:storage_name;uniqueIndex:uq_node_storage"`
	Weight      int64  `json:"weight" gorm:"column:weight;default:1"`
	// nil means unlimited
	MaxVMs     *int64    `json:"max_vms" gorm:"column:max_vms"`
	IsActive   int8      `json:"is_active" gorm:"column:is_active;default:1"`
	CreateTime time.Time `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime time.Time `json:"update_time" gorm:"column:gmt_modified"`
}

func (NodeStorage) TableName() string {
	return "node_storage"
}
