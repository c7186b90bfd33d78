package models

import (
	"time"
)

// Project is the board shared by everyone viewing the same chat.
// ChatID is the external identifier supplied by clients (the Telegram
// chat id); the server treats it as an opaque string.
type Project struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	ChatID    string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"chatId"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Tasks []Task `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}
