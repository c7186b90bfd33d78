package dto

import (
	"time"

	"github.com/taskaboard/realtime-api/internal/models"
)

// deadlineLayout is the wire format for deadlines. The board has no
// time-of-day semantics, so only the date crosses the wire.
const deadlineLayout = "2006-01-02"

// CommentDTO represents a comment in API responses and broadcast events
type CommentDTO struct {
	ID         uint64    `json:"id"`
	Text       string    `json:"text"`
	AuthorID   string    `json:"authorId,omitempty"`
	AuthorName string    `json:"authorName,omitempty"`
	TaskID     uint64    `json:"taskId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TaskDTO represents a task in API responses and broadcast events
type TaskDTO struct {
	ID           uint64       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Quadrant     int          `json:"quadrant"`
	AssigneeID   string       `json:"assigneeId,omitempty"`
	AssigneeName string       `json:"assigneeName,omitempty"`
	Deadline     *string      `json:"deadline"`
	ProjectID    uint64       `json:"projectId"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Comments     []CommentDTO `json:"comments"`
}

// ProjectDTO represents a full project snapshot with nested tasks
type ProjectDTO struct {
	ID     uint64    `json:"id"`
	ChatID string    `json:"chatId"`
	Tasks  []TaskDTO `json:"tasks"`
}

// Conversion functions

// ToCommentDTO converts a Comment model to CommentDTO
func ToCommentDTO(comment models.Comment) CommentDTO {
	return CommentDTO{
		ID:         comment.ID,
		Text:       comment.Text,
		AuthorID:   comment.AuthorID,
		AuthorName: comment.AuthorName,
		TaskID:     comment.TaskID,
		CreatedAt:  comment.CreatedAt,
	}
}

// ToTaskDTO converts a Task model to TaskDTO. Comments are always present
// in the output (an empty array rather than null) so clients can render the
// thread without nil checks.
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Quadrant:     task.Quadrant,
		AssigneeID:   task.AssigneeID,
		AssigneeName: task.AssigneeName,
		ProjectID:    task.ProjectID,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
		Comments:     make([]CommentDTO, 0, len(task.Comments)),
	}

	if task.Deadline != nil {
		deadline := task.Deadline.Format(deadlineLayout)
		dto.Deadline = &deadline
	}

	for _, comment := range task.Comments {
		dto.Comments = append(dto.Comments, ToCommentDTO(comment))
	}

	return dto
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:     project.ID,
		ChatID: project.ChatID,
		Tasks:  make([]TaskDTO, 0, len(project.Tasks)),
	}

	for _, task := range project.Tasks {
		dto.Tasks = append(dto.Tasks, ToTaskDTO(task))
	}

	return dto
}
