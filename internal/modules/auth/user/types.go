package user

import (
	"errors"
	"time"
)

type LoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterDTO struct {
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
	Mail     string `json:"mail" binding:"omitempty,email"`
}

type UpdateProfileDTO struct {
	Name *string `json:"name"`
	Mail *string `json:"mail"`
}

type ChangePasswordDTO struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type CreateTokenDTO struct {
	Name      string     `json:"name" binding:"required"`
	ExpiredAt *time.Time `json:"expired_at"`
}

type userResponse struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Name          string     `json:"name"`
	Mail          string     `json:"mail"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`
}

type loginResponse struct {
	Token string        `json:"token"`
	User  *userResponse `json:"user,omitempty"`
}

type sessionResponse struct {
	ID      string    `json:"id"`
	UA      string    `json:"ua"`
	IP      string    `json:"ip"`
	Date    time.Time `json:"date"`
	Current bool      `json:"current"`
}

type tokenResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Token     string     `json:"token"`
	ExpiredAt *time.Time `json:"expired_at"`
	Created   time.Time  `json:"created"`
}

var (
	errUserNotFound      = errors.New("user not found")
	errWrongPassword     = errors.New("wrong password")
	errOwnerExists       = errors.New("owner already registered")
	errPasswordSameAsOld = errors.New("password same as old")
)
