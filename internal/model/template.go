package model

import (
	"time"
)

// VmTemplate is a reusable VM image definition. It is deployable only while
// active, and only on nodes that carry an explicit TemplateNodeMapping row.
type VmTemplate struct {
	Id           int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	TemplateName string    `json:"template_name" gorm:"column:template_name;uniqueIndex"`
	Description  string    `json:"description" gorm:"column:description"`
	Memory       int64     `json:"memory" gorm:"column:memory;default:2048"`
	Cores        int64     `json:"cores" gorm:"column:cores;default:2"`
	IsActive     int8      `json:"is_active" gorm:"column:is_active;default:1"`
	CreateTime   time.Time `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime   time.Time `json:"update_time" gorm:"column:gmt_modified"`
}

func (VmTemplate) TableName() string {
	return "vm_template"
}

// TemplateNodeMapping maps a template to its VMID on one Proxmox node.
// Mappings are administrative writes only; absence of a row means the template
// is not deployable on that node.
type TemplateNodeMapping struct {
	Id         int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	TemplateID int64  `json:"template_id" gorm:"column:template_id;index;uniqueIndex:uq_template_node"`
	NodeName   string `json:"node_name" gorm:"column:node_name;uniqueIndex:uq_template_node"`
	// Template VMID on this specific node
	TemplateVMID uint32    `json:"template_vmid" gorm:"column:template_vmid"`
	CreateTime   time.Time `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime   time.Time `json:"update_time" gorm:"column:gmt_modified"`
}

func (TemplateNodeMapping) TableName() string {
	return "template_node_mapping"
}
