package model

import (
	"fmt"
	"time"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole validates a role name against the allow-list.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleUser, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("invalid role %q", s)
	}
}

// User is a registered account that can book spaces.
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:256;not null" json:"email"`
	Role      Role      `gorm:"size:16;not null" json:"role"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanMakeReservation is true for every known role today. It is kept apart
// from the role check so the capability can be narrowed independently.
func (u *User) CanMakeReservation() bool {
	return u.Role == RoleUser || u.Role == RoleAdmin
}
