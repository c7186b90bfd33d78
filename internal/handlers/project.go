package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskaboard/realtime-api/internal/dto"
	"github.com/taskaboard/realtime-api/internal/errors"
	"github.com/taskaboard/realtime-api/internal/repository"
)

type ProjectHandler struct {
	store repository.ProjectStore
}

func NewProjectHandler(store repository.ProjectStore) *ProjectHandler {
	return &ProjectHandler{
		store: store,
	}
}

// GetProject returns the full project snapshot for a chat id, creating the
// project if this is the first time the chat opens the board. Clients call
// it once at startup before switching to the realtime channel.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	chatID := strings.TrimSpace(c.Param("chatId"))
	if chatID == "" {
		errors.BadRequest(c, "chatId is required")
		return
	}

	project, err := h.store.GetOrCreateProject(chatID)
	if err != nil {
		errors.ServiceUnavailable(c, "Failed to load project")
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}
