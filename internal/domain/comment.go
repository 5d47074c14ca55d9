package domain

import (
	"time"
)

// ReviewComment is a user comment on a review. One level of threading is
// supported via ParentCommentID: replies reference a top-level comment and
// cannot themselves be replied to.
type ReviewComment struct {
	ID              string    `json:"id"`
	ReviewID        string    `json:"review_id"`
	UserID          string    `json:"user_id"`
	ParentCommentID *string   `json:"parent_comment_id,omitempty"`
	Content         string    `json:"content"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsReply reports whether the comment is a reply to another comment.
func (c *ReviewComment) IsReply() bool {
	return c.ParentCommentID != nil
}
