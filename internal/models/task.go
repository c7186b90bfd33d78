package models

import (
	"time"

	"gorm.io/gorm"
)

// Quadrants of the Eisenhower matrix.
const (
	QuadrantMin = 0
	QuadrantMax = 3
)

type Task struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	Quadrant     int            `gorm:"not null;default:0" json:"quadrant"`
	AssigneeID   string         `gorm:"type:varchar(64)" json:"assigneeId"`
	AssigneeName string         `gorm:"type:varchar(255)" json:"assigneeName"`
	Deadline     *time.Time     `json:"deadline"`
	ProjectID    uint64         `gorm:"not null;index" json:"project_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project  Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Comments []Comment `gorm:"foreignKey:TaskID" json:"comments"`
}

// ValidQuadrant reports whether q is one of the four matrix buckets.
func ValidQuadrant(q int) bool {
	return q >= QuadrantMin && q <= QuadrantMax
}
