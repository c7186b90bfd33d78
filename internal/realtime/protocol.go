package realtime

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Inbound events (client intents)
const (
	EventJoinProject = "join-project"
	EventTaskCreate  = "task-create"
	EventTaskMove    = "task-move"
	EventTaskUpdate  = "task-update"
	EventTaskDelete  = "task-delete"
	EventCommentAdd  = "comment-add"
)

// Outbound events
const (
	EventTaskCreated  = "task-created"
	EventTaskMoved    = "task-moved"
	EventTaskUpdated  = "task-updated"
	EventTaskDeleted  = "task-deleted"
	EventCommentAdded = "comment-added"
	EventError        = "error"
)

// Message is the wire envelope in both directions.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewMessage builds an envelope with a marshaled payload
func NewMessage(event string, data interface{}) (Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode %s payload: %w", event, err)
	}
	return Message{Event: event, Data: raw}, nil
}

// ChatID is an opaque project identifier. Telegram chat ids are numeric, so
// clients may send either a JSON string or a JSON number; both decode to the
// same string form.
type ChatID string

func (c *ChatID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = ChatID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*c = ChatID(n.String())
		return nil
	}
	return fmt.Errorf("chatId must be a string or number")
}

func (c ChatID) String() string {
	return string(c)
}

// TaskID decodes a task identifier sent as a JSON number or numeric string.
type TaskID uint64

func (t *TaskID) UnmarshalJSON(data []byte) error {
	var n uint64
	if err := json.Unmarshal(data, &n); err == nil {
		*t = TaskID(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, perr := strconv.ParseUint(s, 10, 64)
		if perr != nil {
			return fmt.Errorf("taskId must be numeric")
		}
		*t = TaskID(parsed)
		return nil
	}
	return fmt.Errorf("taskId must be a number or numeric string")
}

// UserID is an opaque user identifier carried on assignee and author fields.
// Telegram user ids are numeric, so clients may send either a JSON string or
// a JSON number; both decode to the same string form.
type UserID string

func (u *UserID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*u = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*u = UserID(n.String())
		return nil
	}
	return fmt.Errorf("user id must be a string or number")
}

func (u UserID) String() string {
	return string(u)
}

// CreateTaskPayload is the data of a task-create intent
type CreateTaskPayload struct {
	ChatID       ChatID `json:"chatId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Quadrant     int    `json:"quadrant"`
	AssigneeID   UserID `json:"assigneeId"`
	AssigneeName string `json:"assigneeName"`
	Deadline     string `json:"deadline"`
}

// MoveTaskPayload is the data of a task-move intent
type MoveTaskPayload struct {
	ChatID   ChatID `json:"chatId"`
	TaskID   TaskID `json:"taskId"`
	Quadrant int    `json:"quadrant"`
}

// UpdateTaskPayload is the data of a task-update intent. All fields replace
// the stored ones; comments are not part of the payload.
type UpdateTaskPayload struct {
	ChatID       ChatID `json:"chatId"`
	ID           TaskID `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Quadrant     int    `json:"quadrant"`
	AssigneeID   UserID `json:"assigneeId"`
	AssigneeName string `json:"assigneeName"`
	Deadline     string `json:"deadline"`
}

// DeleteTaskPayload is the data of a task-delete intent
type DeleteTaskPayload struct {
	ChatID ChatID `json:"chatId"`
	TaskID TaskID `json:"taskId"`
}

// AddCommentPayload is the data of a comment-add intent
type AddCommentPayload struct {
	ChatID     ChatID `json:"chatId"`
	TaskID     TaskID `json:"taskId"`
	Text       string `json:"text"`
	AuthorID   UserID `json:"authorId"`
	AuthorName string `json:"authorName"`
}

// ErrorPayload is the data of an error event, sent to the originating
// session only.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Intent  string `json:"intent,omitempty"`
}

// deadlineLayout matches the date-only deadline format used by clients.
const deadlineLayout = "2006-01-02"

// parseDeadline converts a wire deadline into a timestamp. An empty string
// means no deadline. RFC 3339 is accepted as a fallback for clients that
// send full timestamps.
func parseDeadline(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(deadlineLayout, value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("deadline must be formatted as YYYY-MM-DD")
}

// decodeJoinData accepts both a bare chat id ("123") and an object
// ({"chatId": "123"}) as join-project data.
func decodeJoinData(data json.RawMessage) (string, error) {
	var id ChatID
	if err := json.Unmarshal(data, &id); err == nil {
		return id.String(), nil
	}
	var obj struct {
		ChatID ChatID `json:"chatId"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		return obj.ChatID.String(), nil
	}
	return "", fmt.Errorf("join-project data must be a chat id")
}
