package web

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/avdske/go-chirper/internal/models"
)

// Form field limits
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 6
	MaxPasswordLength = 128
	MaxEmailLength    = 254
	MaxTweetLength    = 280
	MaxBioLength      = 500
	MaxURLLength      = 500
)

// FormErrors maps field names to validation error messages
type FormErrors map[string]string

// HasErrors reports whether any field failed validation
func (fe FormErrors) HasErrors() bool {
	return len(fe) > 0
}

// Get returns the error for a field, or empty string
func (fe FormErrors) Get(field string) string {
	return fe[field]
}

// SignUpForm is a validated registration submission
type SignUpForm struct {
	Username string
	Email    string
	Password string
}

// TweetForm is a validated tweet submission
type TweetForm struct {
	Content string
}

// UserUpdateForm is a validated account settings submission
type UserUpdateForm struct {
	Email       string
	DisplayName string
}

// ProfileForm is a validated profile settings submission
type ProfileForm struct {
	PictureURL string
	Bio        string
}

// validateUsername checks username format and length
func validateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return fmt.Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return fmt.Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	for _, r := range username {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' {
			return fmt.Errorf("username may only contain letters, digits and underscores")
		}
	}
	return nil
}

// validatePassword checks password length
func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must be at most %d characters", MaxPasswordLength)
	}
	return nil
}

// validateEmail does a minimal sanity check on an email address
func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email is too long")
	}
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return fmt.Errorf("email address is invalid")
	}
	if !strings.Contains(email[at+1:], ".") {
		return fmt.Errorf("email address is invalid")
	}
	return nil
}

// ValidateSignUpForm validates a registration submission
func ValidateSignUpForm(username, email, password, password2 string) (SignUpForm, FormErrors) {
	form := SignUpForm{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	errs := make(FormErrors)
	if err := validateUsername(form.Username); err != nil {
		errs["username"] = err.Error()
	}
	if err := validateEmail(form.Email); err != nil {
		errs["email"] = err.Error()
	}
	if err := validatePassword(form.Password); err != nil {
		errs["password"] = err.Error()
	}
	if password != password2 {
		errs["password2"] = "passwords do not match"
	}
	return form, errs
}

// ValidateTweetForm sanitizes and validates a tweet submission
func ValidateTweetForm(content string) (TweetForm, FormErrors) {
	form := TweetForm{Content: models.SanitizeContent(content)}
	errs := make(FormErrors)
	if form.Content == "" {
		errs["content"] = "tweet cannot be empty"
	} else if utf8.RuneCountInString(form.Content) > MaxTweetLength {
		errs["content"] = fmt.Sprintf("tweet must be at most %d characters", MaxTweetLength)
	}
	return form, errs
}

// ValidateUserUpdateForm validates an account settings submission
func ValidateUserUpdateForm(email, displayName string) (UserUpdateForm, FormErrors) {
	form := UserUpdateForm{
		Email:       strings.TrimSpace(email),
		DisplayName: models.SanitizeContent(displayName),
	}
	errs := make(FormErrors)
	if err := validateEmail(form.Email); err != nil {
		errs["email"] = err.Error()
	}
	if utf8.RuneCountInString(form.DisplayName) > MaxUsernameLength {
		errs["display_name"] = fmt.Sprintf("display name must be at most %d characters", MaxUsernameLength)
	}
	return form, errs
}

// ValidateProfileForm validates a profile settings submission
func ValidateProfileForm(pictureURL, bio string) (ProfileForm, FormErrors) {
	form := ProfileForm{
		PictureURL: strings.TrimSpace(pictureURL),
		Bio:        models.SanitizeContent(bio),
	}
	errs := make(FormErrors)
	if form.PictureURL != "" {
		if len(form.PictureURL) > MaxURLLength {
			errs["picture_url"] = "picture URL is too long"
		} else if !strings.HasPrefix(form.PictureURL, "http://") && !strings.HasPrefix(form.PictureURL, "https://") {
			errs["picture_url"] = "picture URL must start with http:// or https://"
		}
	}
	if utf8.RuneCountInString(form.Bio) > MaxBioLength {
		errs["bio"] = fmt.Sprintf("bio must be at most %d characters", MaxBioLength)
	}
	return form, errs
}
