package dto

import (
	"time"

	"github.com/deniz/stajlink/internal/app/models"
)

// UserResponse represents user information returned by the API
type UserResponse struct {
	ID        int64      `json:"id" example:"1"`
	Email     string     `json:"email" example:"ogrenci@school.edu.tr"`
	FirstName string     `json:"firstName" example:"Ayşe"`
	LastName  string     `json:"lastName" example:"Yılmaz"`
	RoleType  string     `json:"roleType" example:"STUDENT" enums:"STUDENT,ADVISOR,CAREER_CENTER,ADMIN"`
	StudentNo *string    `json:"studentNo,omitempty" example:"20201234"`
	IsActive  bool       `json:"isActive" example:"true"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLoginAt,omitempty"`
}

// ToUserResponse converts a user model to its response DTO
func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		RoleType:  string(u.RoleType),
		StudentNo: u.StudentNo,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLoginAt,
	}
}

// CreateUserRequest represents the admin user-creation payload
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required,min=2,max=100"`
	LastName  string `json:"lastName" binding:"required,min=2,max=100"`
	RoleType  string `json:"roleType" binding:"required" enums:"STUDENT,ADVISOR,CAREER_CENTER,ADMIN"`
	StudentNo string `json:"studentNo,omitempty"`
}

// UpdateUserRequest represents the admin user-update payload
type UpdateUserRequest struct {
	FirstName *string `json:"firstName,omitempty" binding:"omitempty,min=2,max=100"`
	LastName  *string `json:"lastName,omitempty" binding:"omitempty,min=2,max=100"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

// UserListResponse is a page of users
type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination PaginationInfo `json:"pagination"`
}
