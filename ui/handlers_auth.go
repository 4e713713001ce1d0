package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"impactdash/internal/auth"
	"impactdash/internal/errors"
)

type loginForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

type loginPage struct {
	Username string
	Error    string
}

func (s *Server) handleLoginPage(c *gin.Context) {
	s.renderTemplate(c, http.StatusOK, "login.html", loginPage{})
}

// handleLogin accepts the login form or a JSON body. Form posts are
// redirected to the dashboard, JSON callers get the user back.
func (s *Server) handleLogin(c *gin.Context) {
	htmlForm := c.ContentType() == gin.MIMEPOSTForm || c.ContentType() == gin.MIMEMultipartPOSTForm

	if s.deps.Auth == nil {
		s.respondError(c, errors.NotFound("login"), "Anmeldung ist nicht konfiguriert")
		return
	}

	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		s.respondError(c, errors.InvalidInput("Benutzername und Passwort sind erforderlich"), "")
		return
	}

	user, err := s.deps.Auth.Verify(form.Username, form.Password)
	if err != nil {
		s.logger.Warn("[Auth] failed login for %q", form.Username)
		if htmlForm {
			s.renderTemplate(c, http.StatusUnauthorized, "login.html", loginPage{
				Username: form.Username,
				Error:    errors.UserMessage(err, "Anmeldung fehlgeschlagen"),
			})
			return
		}
		s.respondError(c, err, "Anmeldung fehlgeschlagen")
		return
	}

	token, expires, err := s.deps.Auth.IssueToken(form.Username)
	if err != nil {
		s.respondError(c, err, "Anmeldung fehlgeschlagen")
		return
	}
	s.deps.Auth.SetSessionCookie(c, token, s.deps.SecureCookie)
	s.logger.Info("[Auth] %s logged in", form.Username)

	if htmlForm {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "expiresAt": expires})
}

func (s *Server) handleLogout(c *gin.Context) {
	auth.ClearSessionCookie(c, s.deps.SecureCookie)
	c.JSON(http.StatusOK, gin.H{"message": "Abgemeldet"})
}
