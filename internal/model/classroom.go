package model

import (
	"time"
)

// Classroom groups students under one teacher account. The classroom name is
// part of the DNS-safe VM display name derived at deploy time.
type Classroom struct {
	Id            int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	ClassroomName string    `json:"classroom_name" gorm:"column:classroom_name"`
	// Owning teacher's UserId.
	UserID        string    `json:"user_id" gorm:"column:user_id;index"`
	CreateTime    time.Time `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime    time.Time `json:"update_time" gorm:"column:gmt_modified"`
}

func (Classroom) TableName() string {
	return "classroom"
}
