package web

import (
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/avdske/go-chirper/internal/database"
	"github.com/avdske/go-chirper/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const sessionCookieName = "chirper_session"

// AuthUser is the authenticated user attached to a request
type AuthUser struct {
	ID          int64
	Username    string
	Email       string
	DisplayName string
}

// SessionData carries the validated session through a single request
type SessionData struct {
	SessionID string
	User      *AuthUser
	server    *WebServer
}

// flash messages keyed by session ID, consumed on next page render
var (
	flashMux     sync.RWMutex
	flashErrors  = make(map[string]string)
	flashSuccess = make(map[string]string)
)

// SetError stores a one-shot error notice for this session
func (sd *SessionData) SetError(msg string) {
	if sd == nil || sd.SessionID == "" {
		return
	}
	flashMux.Lock()
	flashErrors[sd.SessionID] = msg
	flashMux.Unlock()
}

// SetSuccess stores a one-shot success notice for this session
func (sd *SessionData) SetSuccess(msg string) {
	if sd == nil || sd.SessionID == "" {
		return
	}
	flashMux.Lock()
	flashSuccess[sd.SessionID] = msg
	flashMux.Unlock()
}

// consumeFlash returns and clears any stored notices for this session
func (sd *SessionData) consumeFlash() (success string, errMsg string) {
	if sd == nil || sd.SessionID == "" {
		return "", ""
	}
	flashMux.Lock()
	success = flashSuccess[sd.SessionID]
	errMsg = flashErrors[sd.SessionID]
	delete(flashSuccess, sd.SessionID)
	delete(flashErrors, sd.SessionID)
	flashMux.Unlock()
	return success, errMsg
}

// dropFlash discards any pending notices, used when a session ends
func dropFlash(sessionID string) {
	if sessionID == "" {
		return
	}
	flashMux.Lock()
	delete(flashSuccess, sessionID)
	delete(flashErrors, sessionID)
	flashMux.Unlock()
}

// getWebSession validates the session cookie and returns the session data,
// or nil if the request carries no valid session.
func (s *WebServer) getWebSession(c *gin.Context) *SessionData {
	sessionID, err := c.Cookie(sessionCookieName)
	if err != nil || len(sessionID) != database.SessionIDLength {
		return nil
	}
	user, err := s.DB.ValidateUserSession(sessionID)
	if err != nil || user == nil {
		return nil
	}
	return &SessionData{
		SessionID: sessionID,
		User: &AuthUser{
			ID:          user.ID,
			Username:    user.Username,
			Email:       user.Email,
			DisplayName: user.DisplayName,
		},
		server: s,
	}
}

// createWebSession establishes a new session for the user and sets the cookie
func (s *WebServer) createWebSession(c *gin.Context, user *models.User) (*SessionData, error) {
	sessionID, err := s.DB.CreateUserSession(user.ID, c.ClientIP())
	if err != nil {
		log.Printf("[WEB]: failed to create session for user '%s': %v", user.Username, err)
		return nil, err
	}
	s.setSessionCookie(c, sessionID)
	return &SessionData{
		SessionID: sessionID,
		User: &AuthUser{
			ID:          user.ID,
			Username:    user.Username,
			Email:       user.Email,
			DisplayName: user.DisplayName,
		},
		server: s,
	}, nil
}

// destroyWebSession invalidates the session server-side and clears the cookie
func (s *WebServer) destroyWebSession(c *gin.Context, session *SessionData) {
	if session != nil {
		dropFlash(session.SessionID)
		if err := s.DB.InvalidateUserSession(session.User.ID); err != nil {
			log.Printf("[WEB]: failed to invalidate session for user '%s': %v", session.User.Username, err)
		}
	}
	s.clearSessionCookie(c)
}

// isHTTPS determines if the request arrived over HTTPS, directly or via proxy
func (s *WebServer) isHTTPS(c *gin.Context) bool {
	if s.Config.SSL {
		return true
	}
	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https")
}

func (s *WebServer) setSessionCookie(c *gin.Context, sessionID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, sessionID, int(database.SessionTimeout.Seconds()), "/", "", s.isHTTPS(c), true)
}

func (s *WebServer) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, "", -1, "/", "", s.isHTTPS(c), true)
}

// hashPassword hashes a password with bcrypt
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// checkPassword compares a plaintext password against a bcrypt hash
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
