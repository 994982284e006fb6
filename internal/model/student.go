package model

import (
	"time"
)

// Student is the tenant a VM is provisioned for.
type Student struct {
	Id          int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	StudentName string `json:"student_name" gorm:"column:student_name"`
	ClassroomID int64  `json:"classroom_id" gorm:"column:classroom_id;index"`
	Username    string `json:"username" gorm:"column:username;uniqueIndex"`
	Password    string `json:"-" gorm:"column:password"`
	IsActive    int8   `json:"is_active" gorm:"column:is_active;default:1"`
	// account lockout
	FailedLoginAttempts int64      `json:"-" gorm:"column:failed_login_attempts;default:0"`
	LockedUntil         *time.Time `json:"-" gorm:"column:locked_until"`
	CreateTime          time.Time  `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime          time.Time  `json:"update_time" gorm:"column:gmt_modified"`
}

func (Student) TableName() string {
	return "student"
}
