package web

import (
	"log"
	"net/http"

	"github.com/avdske/go-chirper/internal/models"
	"github.com/gin-gonic/gin"
)

// RegisterPageData contains data for the registration page
type RegisterPageData struct {
	TemplateData
	Form       SignUpForm
	FormErrors FormErrors
}

// registerPage renders the registration form
func (s *WebServer) registerPage(c *gin.Context) {
	session := s.getWebSession(c)
	if session != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	data := RegisterPageData{
		TemplateData: s.getBaseTemplateData(c, session, "Register"),
	}
	s.renderTemplate(c, "register.html", data)
}

// registerSubmit creates a new account and logs the user in.
// The profile row is created together with the user.
func (s *WebServer) registerSubmit(c *gin.Context) {
	session := s.getWebSession(c)
	if session != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	form, errs := ValidateSignUpForm(
		c.PostForm("username"),
		c.PostForm("email"),
		c.PostForm("password"),
		c.PostForm("password2"),
	)

	renderForm := func() {
		data := RegisterPageData{
			TemplateData: s.getBaseTemplateData(c, nil, "Register"),
			Form:         form,
			FormErrors:   errs,
		}
		c.Status(http.StatusBadRequest)
		s.renderTemplate(c, "register.html", data)
	}

	if errs.HasErrors() {
		renderForm()
		return
	}

	// Uniqueness checks before the insert give friendlier errors than
	// surfacing the UNIQUE constraint failure.
	if existing, err := s.DB.GetUserByUsername(form.Username); err == nil && existing != nil {
		errs["username"] = "that username is already taken"
	}
	if existing, err := s.DB.GetUserByEmail(form.Email); err == nil && existing != nil {
		errs["email"] = "that email is already registered"
	}
	if errs.HasErrors() {
		renderForm()
		return
	}

	hash, err := hashPassword(form.Password)
	if err != nil {
		log.Printf("[WEB]: failed to hash password: %v", err)
		s.renderError(c, nil, http.StatusInternalServerError, "Registration failed")
		return
	}

	user := &models.User{
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: hash,
		DisplayName:  form.Username,
	}
	if err := s.DB.InsertUser(user); err != nil {
		log.Printf("[WEB]: failed to create user '%s': %v", form.Username, err)
		errs["username"] = "that username or email is already taken"
		renderForm()
		return
	}
	log.Printf("[WEB]: new user '%s' registered from %s", user.Username, c.ClientIP())

	newSession, err := s.createWebSession(c, user)
	if err != nil {
		// Account exists, session failed. Send them to the login page.
		c.Redirect(http.StatusSeeOther, "/login/")
		return
	}
	newSession.SetSuccess("Welcome to Chirper, " + user.Username + "!")
	c.Redirect(http.StatusSeeOther, "/")
}
