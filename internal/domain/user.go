package domain

import (
	"time"
)

type Role string

const (
	RoleVolunteer Role = "志愿者"
	RoleOfficer   Role = "干事"
	RoleBlackCore Role = "黑心"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
