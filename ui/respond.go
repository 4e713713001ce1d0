package ui

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"impactdash/internal/errors"
)

// respondError writes {error: message} with the status derived from err
func (s *Server) respondError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)
	c.JSON(errors.HTTPStatus(err), gin.H{"error": errors.UserMessage(err, fallback)})
}

// stringValue returns raw as a string, or "" when it is absent or not a string
func stringValue(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
