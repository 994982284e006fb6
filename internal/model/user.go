package model

import (
	"time"
)

// User roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
)

type User struct {
	Id         int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	UserId     string    `json:"user_id" gorm:"column:user_id;uniqueIndex"`
	Username   string    `json:"username" gorm:"column:username;uniqueIndex"`
	Nickname   string    `json:"nickname" gorm:"column:nickname"`
	Password   string    `json:"-" gorm:"column:password"`
	Email      string    `json:"email" gorm:"column:email;uniqueIndex"`
	Role       string    `json:"role" gorm:"column:role;default:teacher"`
	CreateTime time.Time `json:"create_time" gorm:"column:gmt_create"`
	UpdateTime time.Time `json:"update_time" gorm:"column:gmt_modified"`
}

func (User) TableName() string {
	return "users"
}
