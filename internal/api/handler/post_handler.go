package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/blog-api/internal/core/domain"
	"github.com/inkpress/blog-api/internal/core/ports"
)

// ViewDispatcher is the interface the handler uses to enqueue view events.
type ViewDispatcher interface {
	Enqueue(view ports.PostViewInput)
}

// PostHandler handles HTTP requests for post operations.
type PostHandler struct {
	service ports.PostService
	views   ViewDispatcher
}

func NewPostHandler(service ports.PostService, views ViewDispatcher) *PostHandler {
	return &PostHandler{service: service, views: views}
}

// Create handles POST /posts (auth required).
func (h *PostHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.service.Create(c.Request().Context(), ports.CreatePostInput{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		Tags:          req.Tags,
		Status:        req.Status,
		CoverImageURL: req.CoverImageURL,
		Author: domain.Author{
			ID:        user.ID,
			Username:  user.Username,
			AvatarURL: user.AvatarURL,
		},
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// Get handles GET /posts/:slug (optional auth). A view event is enqueued for
// published posts; counting happens off the request path.
func (h *PostHandler) Get(c echo.Context) error {
	viewerID, viewerRole := viewer(c)

	post, err := h.service.GetBySlug(c.Request().Context(), c.Param("slug"), viewerID, viewerRole)
	if err != nil {
		return err
	}

	if post.Status == domain.PostPublished && h.views != nil {
		h.views.Enqueue(ports.PostViewInput{
			PostID:     post.ID,
			ViewerHash: viewerHash(c, viewerID),
			Timestamp:  time.Now().UTC(),
		})
	}
	return c.JSON(http.StatusOK, post)
}

// List handles GET /posts (optional auth).
func (h *PostHandler) List(c echo.Context) error {
	viewerID, viewerRole := viewer(c)

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	filter := ports.ListPostsFilter{
		Status:   c.QueryParam("status"),
		Tag:      c.QueryParam("tag"),
		AuthorID: c.QueryParam("author"),
		Search:   c.QueryParam("search"),
		Page:     page,
		Limit:    limit,
	}
	// Metadata must reflect the page actually served, not the raw query.
	filter.Normalise()

	posts, total, err := h.service.List(c.Request().Context(), filter, viewerID, viewerRole)
	if err != nil {
		return err
	}

	data := make([]postSummaryResponse, 0, len(posts))
	for _, p := range posts {
		data = append(data, toPostSummary(p))
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))

	return c.JSON(http.StatusOK, listPostsResponse{
		Data: data,
		Pagination: paginationResponse{
			Total:      total,
			Page:       filter.Page,
			Limit:      filter.Limit,
			TotalPages: totalPages,
		},
	})
}

// Update handles PUT /posts/:id (auth required; author or admin).
func (h *PostHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdatePostInput{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		Tags:          req.Tags,
		Status:        req.Status,
		CoverImageURL: req.CoverImageURL,
	}, user.ID, user.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// Delete handles DELETE /posts/:id (auth required; author or admin).
func (h *PostHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), user.ID, user.Role); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// viewerHash identifies a viewer for view-count throttling without storing
// the raw address: user ID when logged in, hashed client IP otherwise.
func viewerHash(c echo.Context, viewerID string) string {
	if viewerID != "" {
		return viewerID
	}
	sum := sha256.Sum256([]byte(c.RealIP()))
	return hex.EncodeToString(sum[:8])
}
