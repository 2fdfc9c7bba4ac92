package domain

import "time"

// Comment is a single comment on a post. ParentID is empty for top-level
// comments and references another comment on the same post for replies;
// threading is one level deep.
type Comment struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	PostID    string    `json:"post_id" bson:"post_id"`
	ParentID  string    `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	Author    Author    `json:"author" bson:"author"`
	Content   string    `json:"content" bson:"content"`
	Deleted   bool      `json:"deleted" bson:"deleted"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Editable reports whether viewer may update or delete the comment.
func (c *Comment) Editable(viewerID, viewerRole string) bool {
	return c.Author.ID == viewerID || viewerRole == RoleAdmin
}
