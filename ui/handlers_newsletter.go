package ui

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"impactdash/app"
	"impactdash/ports"
)

type newsletterBody struct {
	Email json.RawMessage `json:"email"`
}

func (s *Server) handleSubscribe(c *gin.Context) {
	s.newsletterAction(c, "subscription", s.deps.Newsletter.Subscribe, app.MsgSubscribed)
}

func (s *Server) handleUnsubscribe(c *gin.Context) {
	s.newsletterAction(c, "unsubscribe", s.deps.Newsletter.Unsubscribe, app.MsgUnsubscribed)
}

func (s *Server) newsletterAction(c *gin.Context, name string, action func(context.Context, string) (*ports.ContactResult, error), success string) {
	var body newsletterBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.logger.Error("[Newsletter] %s error: %v", name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": app.MsgUnexpectedFailure})
		return
	}

	result, err := action(c.Request.Context(), stringValue(body.Email))
	if err != nil {
		s.respondError(c, err, app.MsgUnexpectedFailure)
		return
	}

	s.logger.Info("[Newsletter] %s successful: %s", name, result.ID)
	c.JSON(http.StatusOK, gin.H{"message": success, "data": result})
}
