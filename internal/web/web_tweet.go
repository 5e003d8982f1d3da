package web

import (
	"log"
	"net/http"

	"github.com/avdske/go-chirper/internal/models"
	"github.com/gin-gonic/gin"
)

// EditTweetPageData contains data for the tweet edit page
type EditTweetPageData struct {
	TemplateData
	Tweet      *models.Tweet
	Form       TweetForm
	FormErrors FormErrors
}

// tweetLike toggles the current user's like on a tweet
func (s *WebServer) tweetLike(c *gin.Context) {
	session := s.getWebSession(c)
	if session == nil {
		s.redirectToLogin(c)
		return
	}

	tweetID, ok := parseIDParam(c)
	if !ok {
		s.renderError(c, session, http.StatusNotFound, "Tweet not found")
		return
	}
	tweet, err := s.DB.GetTweetByID(tweetID)
	if err != nil || tweet == nil {
		s.renderError(c, session, http.StatusNotFound, "Tweet not found")
		return
	}

	if _, err := s.DB.ToggleLike(session.User.ID, tweetID); err != nil {
		log.Printf("[WEB]: failed to toggle like on tweet %d: %v", tweetID, err)
		s.renderError(c, session, http.StatusInternalServerError, "Failed to update like")
		return
	}
	c.Redirect(http.StatusSeeOther, safeNext(c))
}

// deleteTweet removes a tweet. Only the author may delete it.
func (s *WebServer) deleteTweet(c *gin.Context) {
	session := s.getWebSession(c)
	if session == nil {
		s.redirectToLogin(c)
		return
	}

	tweetID, ok := parseIDParam(c)
	if !ok {
		s.renderError(c, session, http.StatusNotFound, "Tweet not found")
		return
	}
	tweet, err := s.DB.GetTweetByID(tweetID)
	if err != nil || tweet == nil {
		s.renderError(c, session, http.StatusNotFound, "Tweet not found")
		return
	}
	if tweet.Username != session.User.Username {
		session.SetError("You do not own that tweet!")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	if err := s.DB.DeleteTweet(tweetID); err != nil {
		log.Printf("[WEB]: failed to delete tweet %d: %v", tweetID, err)
		s.renderError(c, session, http.StatusInternalServerError, "Failed to delete tweet")
		return
	}
	session.SetSuccess("Tweet deleted.")
	c.Redirect(http.StatusSeeOther, safeNext(c))
}

// editTweetPage renders the edit form. Only the author may edit.
func (s *WebServer) editTweetPage(c *gin.Context) {
	session := s.getWebSession(c)
	if session == nil {
		s.redirectToLogin(c)
		return
	}

	tweetID, ok := parseIDParam(c)
	if !ok {
		s.renderError(c, session, http.StatusNotFound, "Tweet not found")
		return
	}
	tweet, err := s.DB.GetTweetByID(tweetID)
	if err != nil || tweet == nil {
		s.renderError(c, session, http.StatusNotFound, "Tweet not found")
		return
	}
	if tweet.Username != session.User.Username {
		session.SetError("You do not own that tweet!")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	data := EditTweetPageData{
		TemplateData: s.getBaseTemplateData(c, session, "Edit Tweet"),
		Tweet:        tweet,
		Form:         TweetForm{Content: tweet.Content},
	}
	s.renderTemplate(c, "edit_tweet.html", data)
}

// editTweetSubmit saves an edited tweet. Only the author may edit.
func (s *WebServer) editTweetSubmit(c *gin.Context) {
	session := s.getWebSession(c)
	if session == nil {
		s.redirectToLogin(c)
		return
	}

	tweetID, ok := parseIDParam(c)
	if !ok {
		s.renderError(c, session, http.StatusNotFound, "Tweet not found")
		return
	}
	tweet, err := s.DB.GetTweetByID(tweetID)
	if err != nil || tweet == nil {
		s.renderError(c, session, http.StatusNotFound, "Tweet not found")
		return
	}
	if tweet.Username != session.User.Username {
		session.SetError("You do not own that tweet!")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	form, errs := ValidateTweetForm(c.PostForm("content"))
	if errs.HasErrors() {
		data := EditTweetPageData{
			TemplateData: s.getBaseTemplateData(c, session, "Edit Tweet"),
			Tweet:        tweet,
			Form:         form,
			FormErrors:   errs,
		}
		c.Status(http.StatusBadRequest)
		s.renderTemplate(c, "edit_tweet.html", data)
		return
	}

	if err := s.DB.UpdateTweetContent(tweetID, session.User.ID, form.Content); err != nil {
		log.Printf("[WEB]: failed to update tweet %d: %v", tweetID, err)
		s.renderError(c, session, http.StatusInternalServerError, "Failed to update tweet")
		return
	}
	session.SetSuccess("Tweet updated.")
	c.Redirect(http.StatusSeeOther, "/")
}
