package dto

import "github.com/yukikurage/projecttime-api/internal/utils"

// ListResponse is the envelope of every paginated list endpoint
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// NewListResponse converts models with convert and attaches pagination info
func NewListResponse[M any, T any](items []M, total int64, params utils.PaginationParams, convert func(M) T) ListResponse[T] {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = convert(item)
	}

	return ListResponse[T]{
		Items:      out,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: utils.TotalPages(total, params.Limit),
	}
}

// MessageResponse is returned by endpoints without a body of their own
type MessageResponse struct {
	Message string `json:"message"`
}
