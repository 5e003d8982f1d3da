package web

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// follow makes the current user follow the target user.
// Following yourself or a missing user is rejected, re-following is a no-op.
func (s *WebServer) follow(c *gin.Context) {
	session := s.getWebSession(c)
	if session == nil {
		s.redirectToLogin(c)
		return
	}

	target, ok := parseIDParam(c)
	if !ok {
		s.renderError(c, session, http.StatusNotFound, "Profile not found")
		return
	}
	user, err := s.DB.GetUserByID(target)
	if err != nil || user == nil {
		s.renderError(c, session, http.StatusNotFound, "Profile not found")
		return
	}
	if target == session.User.ID {
		session.SetError("You cannot follow yourself.")
		c.Redirect(http.StatusSeeOther, safeNext(c))
		return
	}

	if err := s.DB.Follow(session.User.ID, target); err != nil {
		log.Printf("[WEB]: failed to follow user %d: %v", target, err)
		s.renderError(c, session, http.StatusInternalServerError, "Failed to follow")
		return
	}
	session.SetSuccess("You are now following " + user.Username + ".")
	c.Redirect(http.StatusSeeOther, safeNext(c))
}

// unfollow removes the current user's follow of the target user.
// Unfollowing someone not followed is a no-op.
func (s *WebServer) unfollow(c *gin.Context) {
	session := s.getWebSession(c)
	if session == nil {
		s.redirectToLogin(c)
		return
	}

	target, ok := parseIDParam(c)
	if !ok {
		s.renderError(c, session, http.StatusNotFound, "Profile not found")
		return
	}
	user, err := s.DB.GetUserByID(target)
	if err != nil || user == nil {
		s.renderError(c, session, http.StatusNotFound, "Profile not found")
		return
	}

	if err := s.DB.Unfollow(session.User.ID, target); err != nil {
		log.Printf("[WEB]: failed to unfollow user %d: %v", target, err)
		s.renderError(c, session, http.StatusInternalServerError, "Failed to unfollow")
		return
	}
	session.SetSuccess("You no longer follow " + user.Username + ".")
	c.Redirect(http.StatusSeeOther, safeNext(c))
}
