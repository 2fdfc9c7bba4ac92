package handler

import "github.com/inkpress/blog-api/internal/core/domain"

type createPostRequest struct {
	Title         string   `json:"title"           validate:"required,min=3,max=200"`
	Content       string   `json:"content"         validate:"required"`
	Excerpt       string   `json:"excerpt"         validate:"max=500"`
	Tags          []string `json:"tags"            validate:"max=10,dive,min=1,max=30"`
	Status        string   `json:"status"          validate:"omitempty,oneof=draft published"`
	CoverImageURL string   `json:"cover_image_url" validate:"omitempty,url"`
}

type updatePostRequest struct {
	Title         *string   `json:"title"           validate:"omitempty,min=3,max=200"`
	Content       *string   `json:"content"         validate:"omitempty,min=1"`
	Excerpt       *string   `json:"excerpt"         validate:"omitempty,max=500"`
	Tags          *[]string `json:"tags"            validate:"omitempty,max=10,dive,min=1,max=30"`
	Status        *string   `json:"status"          validate:"omitempty,oneof=draft published"`
	CoverImageURL *string   `json:"cover_image_url" validate:"omitempty,url"`
}

// postSummaryResponse is the lightweight item used in list responses.
// It intentionally omits content to keep payloads small.
type postSummaryResponse struct {
	ID            string        `json:"id"`
	Slug          string        `json:"slug"`
	Title         string        `json:"title"`
	Excerpt       string        `json:"excerpt,omitempty"`
	Tags          []string      `json:"tags,omitempty"`
	Status        string        `json:"status"`
	Author        domain.Author `json:"author"`
	CoverImageURL string        `json:"cover_image_url,omitempty"`
	ViewCount     int64         `json:"view_count"`
	CreatedAt     string        `json:"created_at"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listPostsResponse struct {
	Data       []postSummaryResponse `json:"data"`
	Pagination paginationResponse    `json:"pagination"`
}

func toPostSummary(p *domain.Post) postSummaryResponse {
	return postSummaryResponse{
		ID:            p.ID,
		Slug:          p.Slug,
		Title:         p.Title,
		Excerpt:       p.Excerpt,
		Tags:          p.Tags,
		Status:        string(p.Status),
		Author:        p.Author,
		CoverImageURL: p.CoverImageURL,
		ViewCount:     p.ViewCount,
		CreatedAt:     p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
