package ui

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"impactdash/app"
	"impactdash/internal/errors"
	"impactdash/ui/middleware"
)

type chatBody struct {
	Message json.RawMessage   `json:"message"`
	History []json.RawMessage `json:"history"`
}

// handleChat answers one chat message.
// 400 for a missing message, 429 once the daily quota is used up, 500 otherwise.
func (s *Server) handleChat(c *gin.Context) {
	var body chatBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.logger.Error("[Chat] invalid request body: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "message": err.Error()})
		return
	}

	history := make([]app.HistoryEntry, 0, len(body.History))
	for _, raw := range body.History {
		var entry struct {
			Role    json.RawMessage `json:"role"`
			Content json.RawMessage `json:"content"`
		}
		if json.Unmarshal(raw, &entry) != nil {
			continue
		}
		history = append(history, app.HistoryEntry{Role: stringValue(entry.Role), Content: stringValue(entry.Content)})
	}

	reply, err := s.deps.Chat.Reply(c.Request.Context(), app.ChatRequest{
		Message:  stringValue(body.Message),
		History:  history,
		ClientID: middleware.GetClientID(c),
	})
	if err != nil {
		_ = c.Error(err)
		switch errors.GetCode(err) {
		case errors.CodeValidationError, errors.CodeRateLimited:
			c.JSON(errors.HTTPStatus(err), gin.H{"error": errors.UserMessage(err, err.Error())})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal server error",
				"message": errors.UserMessage(err, err.Error()),
			})
		}
		return
	}

	c.JSON(http.StatusOK, reply)
}

func (s *Server) handleChatQuota(c *gin.Context) {
	status, err := s.deps.Chat.QuotaStatus(c.Request.Context(), middleware.GetClientID(c))
	if err != nil {
		s.respondError(c, err, "Kontingent nicht verfügbar")
		return
	}
	c.JSON(http.StatusOK, status)
}
