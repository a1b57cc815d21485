package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Staff   UserRole = "staff"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name       string    `gorm:"size:100;not null" json:"name"`
	Email      string    `gorm:"size:100;unique;not null" json:"email"`
	Password   string    `gorm:"size:100;not null" json:"-"`
	Role       UserRole  `gorm:"type:enum('student','staff','admin');default:'student'" json:"role"`
	RollNumber string    `gorm:"size:50;index" json:"rollNumber"`
	Department string    `gorm:"size:100" json:"department"`
	BatchYear  int       `json:"batchYear"`
	Disabled   bool      `gorm:"default:false" json:"disabled"`
	LastLogin  time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
	LastSeen   time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
