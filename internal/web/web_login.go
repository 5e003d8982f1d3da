package web

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// loginPage renders the login form
func (s *WebServer) loginPage(c *gin.Context) {
	session := s.getWebSession(c)
	if session != nil {
		// Already logged in
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	data := s.getBaseTemplateData(c, session, "Login")
	s.renderTemplate(c, "login.html", data)
}

// loginSubmit handles a login attempt. Every failure redirects back to
// the login page with a one-shot notice; the response does not reveal
// whether the username exists.
func (s *WebServer) loginSubmit(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	if username == "" || password == "" {
		c.Redirect(http.StatusSeeOther, "/login/?message=login_failed")
		return
	}

	// Unknown usernames fall through to the password check below, the
	// response stays the same either way
	locked, err := s.DB.IsUserLockedOut(username)
	if err == nil && locked {
		c.Redirect(http.StatusSeeOther, "/login/?message=login_locked")
		return
	}

	user, err := s.DB.GetUserByUsername(username)
	if err != nil || user == nil || !checkPassword(user.PasswordHash, password) {
		if user != nil {
			if err := s.DB.IncrementLoginAttempts(username); err != nil {
				log.Printf("[WEB]: failed to count login attempt for '%s': %v", username, err)
			}
		}
		c.Redirect(http.StatusSeeOther, "/login/?message=login_failed")
		return
	}

	session, err := s.createWebSession(c, user)
	if err != nil {
		s.renderError(c, nil, http.StatusInternalServerError, "Failed to create your session")
		return
	}
	session.SetSuccess("Welcome back, " + user.Username + "!")
	log.Printf("[WEB]: user '%s' logged in from %s", user.Username, c.ClientIP())
	c.Redirect(http.StatusSeeOther, "/")
}

// logout ends the current session and returns to the feed
func (s *WebServer) logout(c *gin.Context) {
	session := s.getWebSession(c)
	if session != nil {
		log.Printf("[WEB]: user '%s' logged out", session.User.Username)
	}
	s.destroyWebSession(c, session)
	c.Redirect(http.StatusSeeOther, "/?message=logged_out")
}
