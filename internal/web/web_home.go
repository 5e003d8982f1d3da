package web

import (
	"log"
	"net/http"

	"github.com/avdske/go-chirper/internal/models"
	"github.com/gin-gonic/gin"
)

// HomePageData contains data for the feed page
type HomePageData struct {
	TemplateData
	Tweets     []*models.Tweet
	Form       TweetForm
	FormErrors FormErrors
}

// homePage renders the global feed, newest tweets first.
// The tweet form is shown to logged-in visitors only.
func (s *WebServer) homePage(c *gin.Context) {
	session := s.getWebSession(c)

	var viewerID int64
	if session != nil {
		viewerID = session.User.ID
	}
	tweets, err := s.DB.GetAllTweets(viewerID)
	if err != nil {
		log.Printf("[WEB]: failed to load feed: %v", err)
		s.renderError(c, session, http.StatusInternalServerError, "Failed to load the feed")
		return
	}

	data := HomePageData{
		TemplateData: s.getBaseTemplateData(c, session, "Home"),
		Tweets:       tweets,
	}
	s.renderTemplate(c, "home.html", data)
}

// homeSubmit handles a new tweet from the feed page
func (s *WebServer) homeSubmit(c *gin.Context) {
	session := s.getWebSession(c)
	if session == nil {
		s.redirectToLogin(c)
		return
	}

	form, errs := ValidateTweetForm(c.PostForm("content"))
	if errs.HasErrors() {
		tweets, err := s.DB.GetAllTweets(session.User.ID)
		if err != nil {
			log.Printf("[WEB]: failed to load feed: %v", err)
			s.renderError(c, session, http.StatusInternalServerError, "Failed to load the feed")
			return
		}
		data := HomePageData{
			TemplateData: s.getBaseTemplateData(c, session, "Home"),
			Tweets:       tweets,
			Form:         form,
			FormErrors:   errs,
		}
		c.Status(http.StatusBadRequest)
		s.renderTemplate(c, "home.html", data)
		return
	}

	tweet := &models.Tweet{
		UserID:  session.User.ID,
		Content: form.Content,
	}
	if err := s.DB.InsertTweet(tweet); err != nil {
		log.Printf("[WEB]: failed to insert tweet for user '%s': %v", session.User.Username, err)
		s.renderError(c, session, http.StatusInternalServerError, "Failed to post your tweet")
		return
	}

	session.SetSuccess("Your tweet has been posted!")
	c.Redirect(http.StatusSeeOther, "/")
}
