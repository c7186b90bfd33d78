package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is append-only: there is no update or delete operation, comments
// only disappear when their task is deleted.
type Comment struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	Text       string         `gorm:"type:text;not null" json:"text"`
	AuthorID   string         `gorm:"type:varchar(64)" json:"authorId"`
	AuthorName string         `gorm:"type:varchar(255)" json:"authorName"`
	TaskID     uint64         `gorm:"not null;index" json:"task_id"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
