package domain

import "time"

// PostStatus represents the publication state of a post.
type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
)

// Author is the public-safe projection of a user embedded in posts and
// comments. It never carries credential material.
type Author struct {
	ID        string `json:"id" bson:"id"`
	Username  string `json:"username" bson:"username"`
	AvatarURL string `json:"avatar_url,omitempty" bson:"avatar_url,omitempty"`
}

// Post is the blog article aggregate.
type Post struct {
	ID            string     `json:"id" bson:"_id,omitempty"`
	Slug          string     `json:"slug" bson:"slug"`
	Title         string     `json:"title" bson:"title"`
	Content       string     `json:"content" bson:"content"`
	Excerpt       string     `json:"excerpt,omitempty" bson:"excerpt,omitempty"`
	Tags          []string   `json:"tags,omitempty" bson:"tags,omitempty"`
	Status        PostStatus `json:"status" bson:"status"`
	Author        Author     `json:"author" bson:"author"`
	CoverImageURL string     `json:"cover_image_url,omitempty" bson:"cover_image_url,omitempty"`
	ViewCount     int64      `json:"view_count" bson:"view_count"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at"`
}

// Visible reports whether viewer may read the post: published posts are
// public, drafts are visible only to their author and admins.
func (p *Post) Visible(viewerID, viewerRole string) bool {
	if p.Status == PostPublished {
		return true
	}
	return p.Author.ID == viewerID || viewerRole == RoleAdmin
}

// Editable reports whether viewer may update or delete the post.
func (p *Post) Editable(viewerID, viewerRole string) bool {
	return p.Author.ID == viewerID || viewerRole == RoleAdmin
}
