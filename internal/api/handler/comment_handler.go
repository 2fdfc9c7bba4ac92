package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/blog-api/internal/core/domain"
	"github.com/inkpress/blog-api/internal/core/ports"
)

// CommentHandler handles HTTP requests for comment operations.
type CommentHandler struct {
	service ports.CommentService
}

func NewCommentHandler(service ports.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// Create handles POST /posts/:id/comments (auth required).
func (h *CommentHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.service.Create(c.Request().Context(), ports.CreateCommentInput{
		PostID:   c.Param("id"),
		ParentID: req.ParentID,
		Content:  req.Content,
		Author: domain.Author{
			ID:        user.ID,
			Username:  user.Username,
			AvatarURL: user.AvatarURL,
		},
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment)
}

// ListByPost handles GET /posts/:id/comments.
func (h *CommentHandler) ListByPost(c echo.Context) error {
	threads, err := h.service.ListByPost(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	resp := make([]commentThreadResponse, 0, len(threads))
	for _, t := range threads {
		resp = append(resp, commentThreadResponse{Comment: t.Comment, Replies: t.Replies})
	}
	return c.JSON(http.StatusOK, resp)
}

// Update handles PUT /comments/:id (auth required; author or admin).
func (h *CommentHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	comment, err := h.service.Update(c.Request().Context(), c.Param("id"), req.Content, user.ID, user.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comment)
}

// Delete handles DELETE /comments/:id (auth required; author or admin).
func (h *CommentHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), user.ID, user.Role); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
