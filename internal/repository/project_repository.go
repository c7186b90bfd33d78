package repository

import (
	"errors"

	"github.com/taskaboard/realtime-api/internal/models"
	"gorm.io/gorm"
)

// ErrInvalidQuadrant is returned when a quadrant is outside the matrix range.
var ErrInvalidQuadrant = errors.New("quadrant must be between 0 and 3")

// GormProjectStore is a GORM implementation of ProjectStore
type GormProjectStore struct {
	db *gorm.DB
}

// NewProjectStore creates a new ProjectStore
func NewProjectStore(db *gorm.DB) ProjectStore {
	return &GormProjectStore{db: db}
}

// GetOrCreateProject returns the project for chatID, creating it if absent
func (r *GormProjectStore) GetOrCreateProject(chatID string) (*models.Project, error) {
	project, err := r.findProject(chatID)
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := models.Project{ChatID: chatID}
	if err := r.db.Create(&created).Error; err != nil {
		// A concurrent session may have created the project between the
		// lookup and the insert; the unique index on chat_id guarantees a
		// single winner, so re-read it.
		if project, rerr := r.findProject(chatID); rerr == nil {
			return project, nil
		}
		return nil, err
	}
	created.Tasks = []models.Task{}

	return &created, nil
}

// CreateTask creates a task under the project identified by chatID
func (r *GormProjectStore) CreateTask(chatID string, input CreateTaskInput) (*models.Task, error) {
	project, err := r.getOrCreateProjectRow(chatID)
	if err != nil {
		return nil, err
	}

	task := models.Task{
		Title:        input.Title,
		Description:  input.Description,
		Quadrant:     input.Quadrant,
		AssigneeID:   input.AssigneeID,
		AssigneeName: input.AssigneeName,
		Deadline:     input.Deadline,
		ProjectID:    project.ID,
	}
	if err := r.db.Create(&task).Error; err != nil {
		return nil, err
	}

	return r.findTask(task.ID)
}

// UpdateTask replaces all mutable fields of a task
func (r *GormProjectStore) UpdateTask(taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, taskID).Error; err != nil {
		return nil, err
	}

	task.Title = input.Title
	task.Description = input.Description
	task.Quadrant = input.Quadrant
	task.AssigneeID = input.AssigneeID
	task.AssigneeName = input.AssigneeName
	task.Deadline = input.Deadline

	if err := r.db.Save(&task).Error; err != nil {
		return nil, err
	}

	return r.findTask(task.ID)
}

// MoveTask changes a task's quadrant
func (r *GormProjectStore) MoveTask(taskID uint64, quadrant int) (*models.Task, error) {
	if !models.ValidQuadrant(quadrant) {
		return nil, ErrInvalidQuadrant
	}

	var task models.Task
	if err := r.db.First(&task, taskID).Error; err != nil {
		return nil, err
	}

	task.Quadrant = quadrant
	if err := r.db.Save(&task).Error; err != nil {
		return nil, err
	}

	return r.findTask(task.ID)
}

// DeleteTask deletes a task and its comments
func (r *GormProjectStore) DeleteTask(taskID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, taskID).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", taskID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&task).Error
	})
}

// AddComment appends a comment and returns the refreshed parent task
func (r *GormProjectStore) AddComment(taskID uint64, input AddCommentInput) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, taskID).Error; err != nil {
		return nil, err
	}

	comment := models.Comment{
		Text:       input.Text,
		AuthorID:   input.AuthorID,
		AuthorName: input.AuthorName,
		TaskID:     task.ID,
	}
	if err := r.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	return r.findTask(task.ID)
}

// findProject loads a project with tasks and comments in creation order
func (r *GormProjectStore) findProject(chatID string) (*models.Project, error) {
	var project models.Project
	err := r.db.
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("tasks.id ASC")
		}).
		Preload("Tasks.Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.id ASC")
		}).
		Where("chat_id = ?", chatID).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	if project.Tasks == nil {
		project.Tasks = []models.Task{}
	}
	return &project, nil
}

// getOrCreateProjectRow resolves a project without loading its tasks
func (r *GormProjectStore) getOrCreateProjectRow(chatID string) (*models.Project, error) {
	var project models.Project
	err := r.db.Where("chat_id = ?", chatID).First(&project).Error
	if err == nil {
		return &project, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	project = models.Project{ChatID: chatID}
	if err := r.db.Create(&project).Error; err != nil {
		if rerr := r.db.Where("chat_id = ?", chatID).First(&project).Error; rerr == nil {
			return &project, nil
		}
		return nil, err
	}
	return &project, nil
}

// findTask loads a task with its comments in creation order
func (r *GormProjectStore) findTask(taskID uint64) (*models.Task, error) {
	var task models.Task
	err := r.db.
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.id ASC")
		}).
		First(&task, taskID).Error
	if err != nil {
		return nil, err
	}
	if task.Comments == nil {
		task.Comments = []models.Comment{}
	}
	return &task, nil
}
