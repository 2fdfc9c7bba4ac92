package handler

import "github.com/inkpress/blog-api/internal/core/domain"

type createCommentRequest struct {
	Content  string `json:"content"   validate:"required,min=1,max=2000"`
	ParentID string `json:"parent_id" validate:"omitempty,len=24,hexadecimal"`
}

type updateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

type commentThreadResponse struct {
	Comment *domain.Comment   `json:"comment"`
	Replies []*domain.Comment `json:"replies"`
}
