package models

import "time"

type CommentStatus string

const (
	CommentPending   CommentStatus = "PENDING"
	CommentPublished CommentStatus = "PUBLISHED"
)

type Comment struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Text      string        `gorm:"type:varchar(5000);not null" json:"text"`
	EventID   uint          `gorm:"not null;index" json:"event_id"`
	AuthorID  uint          `gorm:"not null;index" json:"author_id"`
	Status    CommentStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	CreatedOn time.Time     `json:"created_on"`
}
