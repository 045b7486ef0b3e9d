package account

import (
	"errors"
	"time"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleHR        Role = "hr"
	RoleMarketing Role = "mkt"
	RoleUser      Role = "user"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	ID           int64     `json:"user_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Role     Role   `json:"role"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Name     *string `json:"name,omitempty"`
	Surname  *string `json:"surname,omitempty"`
	Role     *Role   `json:"role,omitempty"`
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleMarketing, RoleUser:
		return true
	}
	return false
}
