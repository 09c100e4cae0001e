package model

import "time"

type User struct {
	UUIDBase
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	FullName  string    `gorm:"size:100" json:"fullName"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	LastLogin time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"lastLogin"`
	LastSeen  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
