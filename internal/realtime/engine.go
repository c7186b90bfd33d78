package realtime

import (
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/taskaboard/realtime-api/internal/dto"
	apierrors "github.com/taskaboard/realtime-api/internal/errors"
	"github.com/taskaboard/realtime-api/internal/models"
	"github.com/taskaboard/realtime-api/internal/repository"
	"gorm.io/gorm"
)

// Engine is the single authority turning client intents into persisted state
// changes and broadcast events. Every broadcast payload is the value read
// back from the store after the write, never the client's claim; failures go
// to the originating session only.
type Engine struct {
	store repository.ProjectStore
	hub   *Hub
	locks *taskLocks
}

// NewEngine creates a new Engine
func NewEngine(store repository.ProjectStore, hub *Hub) *Engine {
	return &Engine{
		store: store,
		hub:   hub,
		locks: newTaskLocks(),
	}
}

// Dispatch routes one inbound message. It is called concurrently, one
// goroutine per session.
func (e *Engine) Dispatch(client Client, msg Message) {
	if msg.Event == EventJoinProject {
		e.handleJoin(client, msg.Data)
		return
	}

	// Mutation intents require a joined session: a client that never joined
	// has no room to receive the resulting broadcast in.
	if _, ok := e.hub.Room(client); !ok {
		e.sendError(client, msg.Event, apierrors.ErrCodeNotJoined, "join a project before sending intents")
		return
	}

	switch msg.Event {
	case EventTaskCreate:
		e.handleTaskCreate(client, msg.Data)
	case EventTaskMove:
		e.handleTaskMove(client, msg.Data)
	case EventTaskUpdate:
		e.handleTaskUpdate(client, msg.Data)
	case EventTaskDelete:
		e.handleTaskDelete(client, msg.Data)
	case EventCommentAdd:
		e.handleCommentAdd(client, msg.Data)
	default:
		e.sendError(client, msg.Event, apierrors.ErrCodeUnknownIntent, "unknown intent")
	}
}

func (e *Engine) handleJoin(client Client, data json.RawMessage) {
	chatID, err := decodeJoinData(data)
	if err != nil {
		e.sendError(client, EventJoinProject, apierrors.ErrCodeValidation, err.Error())
		return
	}
	if chatID == "" {
		e.sendError(client, EventJoinProject, apierrors.ErrCodeValidation, "chatId is required")
		return
	}

	e.hub.Join(client, chatID)
}

func (e *Engine) handleTaskCreate(client Client, data json.RawMessage) {
	var payload CreateTaskPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		e.sendError(client, EventTaskCreate, apierrors.ErrCodeValidation, "malformed task-create payload")
		return
	}

	title := strings.TrimSpace(payload.Title)
	if title == "" {
		e.sendError(client, EventTaskCreate, apierrors.ErrCodeValidation, "title is required")
		return
	}
	if !models.ValidQuadrant(payload.Quadrant) {
		e.sendError(client, EventTaskCreate, apierrors.ErrCodeValidation, "quadrant must be between 0 and 3")
		return
	}
	if payload.ChatID == "" {
		e.sendError(client, EventTaskCreate, apierrors.ErrCodeValidation, "chatId is required")
		return
	}
	deadline, err := parseDeadline(payload.Deadline)
	if err != nil {
		e.sendError(client, EventTaskCreate, apierrors.ErrCodeValidation, err.Error())
		return
	}

	task, err := e.store.CreateTask(payload.ChatID.String(), repository.CreateTaskInput{
		Title:        title,
		Description:  payload.Description,
		Quadrant:     payload.Quadrant,
		AssigneeID:   payload.AssigneeID.String(),
		AssigneeName: payload.AssigneeName,
		Deadline:     deadline,
	})
	if err != nil {
		e.sendStoreError(client, EventTaskCreate, err)
		return
	}

	e.broadcastTask(payload.ChatID.String(), EventTaskCreated, task)
}

func (e *Engine) handleTaskMove(client Client, data json.RawMessage) {
	var payload MoveTaskPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		e.sendError(client, EventTaskMove, apierrors.ErrCodeValidation, "malformed task-move payload")
		return
	}
	if !models.ValidQuadrant(payload.Quadrant) {
		e.sendError(client, EventTaskMove, apierrors.ErrCodeValidation, "quadrant must be between 0 and 3")
		return
	}
	if payload.ChatID == "" {
		e.sendError(client, EventTaskMove, apierrors.ErrCodeValidation, "chatId is required")
		return
	}

	unlock := e.locks.lock(uint64(payload.TaskID))
	defer unlock()

	task, err := e.store.MoveTask(uint64(payload.TaskID), payload.Quadrant)
	if err != nil {
		e.sendStoreError(client, EventTaskMove, err)
		return
	}

	e.broadcastTask(payload.ChatID.String(), EventTaskMoved, task)
}

func (e *Engine) handleTaskUpdate(client Client, data json.RawMessage) {
	var payload UpdateTaskPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		e.sendError(client, EventTaskUpdate, apierrors.ErrCodeValidation, "malformed task-update payload")
		return
	}

	title := strings.TrimSpace(payload.Title)
	if title == "" {
		e.sendError(client, EventTaskUpdate, apierrors.ErrCodeValidation, "title is required")
		return
	}
	if !models.ValidQuadrant(payload.Quadrant) {
		e.sendError(client, EventTaskUpdate, apierrors.ErrCodeValidation, "quadrant must be between 0 and 3")
		return
	}
	if payload.ChatID == "" {
		e.sendError(client, EventTaskUpdate, apierrors.ErrCodeValidation, "chatId is required")
		return
	}
	deadline, err := parseDeadline(payload.Deadline)
	if err != nil {
		e.sendError(client, EventTaskUpdate, apierrors.ErrCodeValidation, err.Error())
		return
	}

	unlock := e.locks.lock(uint64(payload.ID))
	defer unlock()

	task, err := e.store.UpdateTask(uint64(payload.ID), repository.UpdateTaskInput{
		Title:        title,
		Description:  payload.Description,
		Quadrant:     payload.Quadrant,
		AssigneeID:   payload.AssigneeID.String(),
		AssigneeName: payload.AssigneeName,
		Deadline:     deadline,
	})
	if err != nil {
		e.sendStoreError(client, EventTaskUpdate, err)
		return
	}

	e.broadcastTask(payload.ChatID.String(), EventTaskUpdated, task)
}

func (e *Engine) handleTaskDelete(client Client, data json.RawMessage) {
	var payload DeleteTaskPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		e.sendError(client, EventTaskDelete, apierrors.ErrCodeValidation, "malformed task-delete payload")
		return
	}
	if payload.ChatID == "" {
		e.sendError(client, EventTaskDelete, apierrors.ErrCodeValidation, "chatId is required")
		return
	}

	unlock := e.locks.lock(uint64(payload.TaskID))
	defer unlock()

	if err := e.store.DeleteTask(uint64(payload.TaskID)); err != nil {
		e.sendStoreError(client, EventTaskDelete, err)
		return
	}

	e.broadcast(payload.ChatID.String(), EventTaskDeleted, uint64(payload.TaskID))
}

func (e *Engine) handleCommentAdd(client Client, data json.RawMessage) {
	var payload AddCommentPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		e.sendError(client, EventCommentAdd, apierrors.ErrCodeValidation, "malformed comment-add payload")
		return
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		e.sendError(client, EventCommentAdd, apierrors.ErrCodeValidation, "text is required")
		return
	}
	if payload.ChatID == "" {
		e.sendError(client, EventCommentAdd, apierrors.ErrCodeValidation, "chatId is required")
		return
	}

	unlock := e.locks.lock(uint64(payload.TaskID))
	defer unlock()

	task, err := e.store.AddComment(uint64(payload.TaskID), repository.AddCommentInput{
		Text:       text,
		AuthorID:   payload.AuthorID.String(),
		AuthorName: payload.AuthorName,
	})
	if err != nil {
		e.sendStoreError(client, EventCommentAdd, err)
		return
	}

	e.broadcastTask(payload.ChatID.String(), EventCommentAdded, task)
}

// broadcastTask sends a task event to every session in the room
func (e *Engine) broadcastTask(projectID, event string, task *models.Task) {
	e.broadcast(projectID, event, dto.ToTaskDTO(*task))
}

func (e *Engine) broadcast(projectID, event string, data interface{}) {
	msg, err := NewMessage(event, data)
	if err != nil {
		log.Printf("realtime: dropping %s broadcast: %v", event, err)
		return
	}
	e.hub.Broadcast(projectID, msg)
}

// sendStoreError maps a store failure onto the error taxonomy and reports it
// to the originating session only. Nothing is broadcast: the room only ever
// sees events for durable state transitions.
func (e *Engine) sendStoreError(client Client, intent string, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		e.sendError(client, intent, apierrors.ErrCodeNotFound, "task not found")
	case errors.Is(err, repository.ErrInvalidQuadrant):
		e.sendError(client, intent, apierrors.ErrCodeValidation, err.Error())
	default:
		log.Printf("realtime: %s failed: %v", intent, err)
		e.sendError(client, intent, apierrors.ErrCodeStorage, "storage temporarily unavailable")
	}
}

func (e *Engine) sendError(client Client, intent, code, message string) {
	msg, err := NewMessage(EventError, ErrorPayload{
		Code:    code,
		Message: message,
		Intent:  intent,
	})
	if err != nil {
		log.Printf("realtime: failed to encode error event: %v", err)
		return
	}
	client.Deliver(msg)
}
