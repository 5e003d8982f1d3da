package web

import (
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/avdske/go-chirper/internal/config"
	"github.com/gin-gonic/gin"
)

// getBaseTemplateData builds the common template data for a request.
// Pending flash notices for the session are consumed here.
func (s *WebServer) getBaseTemplateData(c *gin.Context, session *SessionData, title string) TemplateData {
	data := TemplateData{
		Title:       template.HTML(title),
		CurrentTime: time.Now().Format("2006-01-02 15:04:05"),
		AppVersion:  config.AppVersion,
	}
	if session != nil {
		data.User = session.User
		data.Success, data.Error = session.consumeFlash()
	} else if code := c.Query("message"); code != "" {
		data.Success, data.Error = mapMessageCode(code)
	}
	return data
}

// mapMessageCode translates a redirect message code into a page notice.
// Used for visitors without a session, who cannot carry flash messages.
func mapMessageCode(code string) (success string, errMsg string) {
	switch code {
	case "logged_out":
		return "You have been logged out. See you again soon!", ""
	case "login_required":
		return "", "You must be logged in to do that."
	case "login_failed":
		return "", "Invalid username or password."
	case "login_locked":
		return "", "Too many failed login attempts. Try again later."
	default:
		return "", ""
	}
}

// renderTemplate renders a page template wrapped in the base layout
func (s *WebServer) renderTemplate(c *gin.Context, name string, data interface{}) {
	tmplPath := filepath.Join(s.Config.TemplateDir, name)
	basePath := filepath.Join(s.Config.TemplateDir, "base.html")
	tmpl, err := template.ParseFiles(basePath, tmplPath)
	if err != nil {
		log.Printf("[WEB]: failed to parse template '%s': %v", name, err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(c.Writer, "base.html", data); err != nil {
		log.Printf("[WEB]: failed to render template '%s': %v", name, err)
	}
}

// renderError renders the error page with the given message
func (s *WebServer) renderError(c *gin.Context, session *SessionData, status int, message string) {
	data := s.getBaseTemplateData(c, session, "Error")
	data.Error = message
	c.Status(status)
	s.renderTemplate(c, "error.html", data)
}

// redirectToLogin sends a visitor without a session to the feed with a notice
func (s *WebServer) redirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/?message=login_required")
}

// safeNext returns a validated local redirect target from the request's
// "next" parameter, falling back to the feed. Only same-site paths pass.
func safeNext(c *gin.Context) string {
	next := c.PostForm("next")
	if next == "" {
		next = c.Query("next")
	}
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.Contains(next, "://") {
		return "/"
	}
	return next
}
