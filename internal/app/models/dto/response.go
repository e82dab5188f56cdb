package dto

import "time"

// APIResponse provides the standard response envelope for all endpoints
type APIResponse struct {
	Success    bool            `json:"success" example:"true"`
	Message    string          `json:"message,omitempty" example:"Operation completed successfully"`
	Data       interface{}     `json:"data,omitempty"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
	Error      *ErrorDetail    `json:"error,omitempty"`
	Timestamp  time.Time       `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// PaginationInfo represents pagination metadata
type PaginationInfo struct {
	CurrentPage int   `json:"currentPage" example:"1"`
	PageSize    int   `json:"pageSize" example:"10"`
	TotalItems  int64 `json:"totalItems" example:"42"`
	TotalPages  int   `json:"totalPages" example:"5"`
}

// NewSuccessResponse creates a response envelope for a successful operation
func NewSuccessResponse(data interface{}, message string) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewPagedResponse creates a response envelope carrying a page of items
func NewPagedResponse(data interface{}, pagination PaginationInfo) APIResponse {
	return APIResponse{
		Success:    true,
		Data:       data,
		Pagination: &pagination,
		Timestamp:  time.Now(),
	}
}
