package web

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UpdateUserPageData contains data for the account settings page
type UpdateUserPageData struct {
	TemplateData
	UserForm    UserUpdateForm
	ProfileForm ProfileForm
	UserErrors  FormErrors
	ProfErrors  FormErrors
}

// updateUserPage renders the account settings form prefilled with the
// current account and profile values
func (s *WebServer) updateUserPage(c *gin.Context) {
	session := s.getWebSession(c)
	if session == nil {
		s.redirectToLogin(c)
		return
	}

	profile, err := s.DB.GetProfileByUserID(session.User.ID)
	if err != nil || profile == nil {
		log.Printf("[WEB]: failed to load profile for user %d: %v", session.User.ID, err)
		s.renderError(c, session, http.StatusInternalServerError, "Failed to load your profile")
		return
	}

	data := UpdateUserPageData{
		TemplateData: s.getBaseTemplateData(c, session, "Settings"),
		UserForm: UserUpdateForm{
			Email:       session.User.Email,
			DisplayName: session.User.DisplayName,
		},
		ProfileForm: ProfileForm{
			PictureURL: profile.PictureURL,
			Bio:        profile.Bio,
		},
	}
	s.renderTemplate(c, "update_user.html", data)
}

// updateUserSubmit saves account and profile settings. Both forms must
// validate before either is written. An optional new password re-issues
// the session so any other login of the account is signed out; plain
// account edits keep the current session, the session id is an opaque
// random value and nothing in it derives from email or display name.
func (s *WebServer) updateUserSubmit(c *gin.Context) {
	session := s.getWebSession(c)
	if session == nil {
		s.redirectToLogin(c)
		return
	}

	userForm, userErrs := ValidateUserUpdateForm(c.PostForm("email"), c.PostForm("display_name"))
	profForm, profErrs := ValidateProfileForm(c.PostForm("picture_url"), c.PostForm("bio"))

	password := c.PostForm("password")
	if password != "" {
		if err := validatePassword(password); err != nil {
			userErrs["password"] = err.Error()
		} else if password != c.PostForm("password2") {
			userErrs["password2"] = "passwords do not match"
		}
	}

	if userForm.Email != session.User.Email {
		if existing, err := s.DB.GetUserByEmail(userForm.Email); err == nil && existing != nil {
			userErrs["email"] = "that email is already registered"
		}
	}

	if userErrs.HasErrors() || profErrs.HasErrors() {
		data := UpdateUserPageData{
			TemplateData: s.getBaseTemplateData(c, session, "Settings"),
			UserForm:     userForm,
			ProfileForm:  profForm,
			UserErrors:   userErrs,
			ProfErrors:   profErrs,
		}
		c.Status(http.StatusBadRequest)
		s.renderTemplate(c, "update_user.html", data)
		return
	}

	if err := s.DB.UpdateUserAccount(session.User.ID, userForm.Email, userForm.DisplayName); err != nil {
		log.Printf("[WEB]: failed to update account for user %d: %v", session.User.ID, err)
		s.renderError(c, session, http.StatusInternalServerError, "Failed to save your settings")
		return
	}
	if err := s.DB.UpdateProfile(session.User.ID, profForm.PictureURL, profForm.Bio); err != nil {
		log.Printf("[WEB]: failed to update profile for user %d: %v", session.User.ID, err)
		s.renderError(c, session, http.StatusInternalServerError, "Failed to save your settings")
		return
	}

	if password != "" {
		hash, err := hashPassword(password)
		if err != nil {
			log.Printf("[WEB]: failed to hash password: %v", err)
			s.renderError(c, session, http.StatusInternalServerError, "Failed to change your password")
			return
		}
		if err := s.DB.UpdateUserPassword(session.User.ID, hash); err != nil {
			log.Printf("[WEB]: failed to update password for user %d: %v", session.User.ID, err)
			s.renderError(c, session, http.StatusInternalServerError, "Failed to change your password")
			return
		}
		// A new session replaces the old one, the previous cookie is dead
		user, err := s.DB.GetUserByID(session.User.ID)
		if err != nil || user == nil {
			c.Redirect(http.StatusSeeOther, "/login/")
			return
		}
		newSession, err := s.createWebSession(c, user)
		if err != nil {
			c.Redirect(http.StatusSeeOther, "/login/")
			return
		}
		session = newSession
	}

	session.SetSuccess("Your settings have been saved.")
	c.Redirect(http.StatusSeeOther, "/")
}
