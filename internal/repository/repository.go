package repository

import (
	"time"

	"github.com/taskaboard/realtime-api/internal/models"
)

// ProjectStore defines the persistence contract for projects, tasks and
// comments. Every mutating call returns the state read back after the write
// so callers can broadcast authoritative values rather than client input.
type ProjectStore interface {
	// GetOrCreateProject returns the project for an external chat id,
	// creating an empty one if it does not exist. Tasks and their comments
	// are eagerly loaded in creation order.
	GetOrCreateProject(chatID string) (*models.Project, error)

	// CreateTask creates a task under the project identified by chatID,
	// resolving the project with the same get-or-create semantics.
	CreateTask(chatID string, input CreateTaskInput) (*models.Task, error)

	// UpdateTask replaces all mutable fields of a task. Comments are
	// untouched. Returns gorm.ErrRecordNotFound if the task is unknown.
	UpdateTask(taskID uint64, input UpdateTaskInput) (*models.Task, error)

	// MoveTask changes a task's quadrant. Returns ErrInvalidQuadrant when
	// the quadrant is outside [0,3].
	MoveTask(taskID uint64, quadrant int) (*models.Task, error)

	// DeleteTask deletes a task and cascades to its comments.
	DeleteTask(taskID uint64) error

	// AddComment appends a comment and returns the parent task with its
	// comments refreshed.
	AddComment(taskID uint64, input AddCommentInput) (*models.Task, error)
}

// CreateTaskInput holds the fields for a new task
type CreateTaskInput struct {
	Title        string
	Description  string
	Quadrant     int
	AssigneeID   string
	AssigneeName string
	Deadline     *time.Time
}

// UpdateTaskInput holds the replacement fields for an existing task
type UpdateTaskInput struct {
	Title        string
	Description  string
	Quadrant     int
	AssigneeID   string
	AssigneeName string
	Deadline     *time.Time
}

// AddCommentInput holds the fields for a new comment
type AddCommentInput struct {
	Text       string
	AuthorID   string
	AuthorName string
}
