package model

import (
	"time"
)

// VM status values. RefreshStatus persists backend statuses verbatim when they
// map onto this set; anything else is persisted as StatusError.
const (
	VMStatusCreating = "creating"
	VMStatusRunning  = "running"
	VMStatusStopped  = "stopped"
	VMStatusError    = "error"
)

// VirtualMachine is a provisioned lab VM. Rows are created exclusively by the
// deployment orchestrator after the backend clone/start sequence succeeded,
// and removed only by the paired delete operation.
type VirtualMachine struct {
	Id        int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	StudentID int64 `json:"student_id" gorm:"column:student_id;index"`
	// Backend-assigned VMID, globally unique, never recycled locally.
	VMID         uint32    `json:"vmid" gorm:"column:vmid;uniqueIndex"`
	NodeName     string    `json:"node_name" gorm:"column:node_name;index"`
	TemplateName string    `json:"template_name" gorm:"column:template_name"`
	// Empty for linked clones that inherit the template's storage.
	Storage    string    `json:"storage" gorm:"column:storage"`
	Status     string    `json:"status" gorm:"column:status;default:creating"`
	IPAddress  string    `json:"ip_address" gorm:"column:ip_address"`
	ConsoleURL string    `json:"console_url" gorm:"column:console_url"`
	CreateTime time.Time `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime time.Time `json:"update_time" gorm:"column:gmt_modified"`
}

func (VirtualMachine) TableName() string {
	return "virtual_machine"
}
