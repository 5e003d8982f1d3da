package web

import (
	"log"
	"net/http"
	"strconv"

	"github.com/avdske/go-chirper/internal/models"
	"github.com/gin-gonic/gin"
)

// ProfileListPageData contains data for the profile discovery page
type ProfileListPageData struct {
	TemplateData
	Profiles []*models.Profile
}

// ProfilePageData contains data for a single profile page
type ProfilePageData struct {
	TemplateData
	Profile     *models.Profile
	Tweets      []*models.Tweet
	IsFollowing bool
	IsSelf      bool
}

// FollowListPageData contains data for the followers/follows pages
type FollowListPageData struct {
	TemplateData
	Profile  *models.Profile
	Profiles []*models.Profile
	Heading  string
}

// parseIDParam parses the :id route parameter as a positive integer
func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// profileListPage lists all other users, for logged-in visitors only
func (s *WebServer) profileListPage(c *gin.Context) {
	session := s.getWebSession(c)
	if session == nil {
		s.redirectToLogin(c)
		return
	}

	profiles, err := s.DB.GetAllProfilesExcept(session.User.ID)
	if err != nil {
		log.Printf("[WEB]: failed to load profile list: %v", err)
		s.renderError(c, session, http.StatusInternalServerError, "Failed to load profiles")
		return
	}

	data := ProfileListPageData{
		TemplateData: s.getBaseTemplateData(c, session, "Profiles"),
		Profiles:     profiles,
	}
	s.renderTemplate(c, "profile_list.html", data)
}

// profilePage shows a user's profile with their tweets
func (s *WebServer) profilePage(c *gin.Context) {
	session := s.getWebSession(c)
	if session == nil {
		s.redirectToLogin(c)
		return
	}

	userID, ok := parseIDParam(c)
	if !ok {
		s.renderError(c, session, http.StatusNotFound, "Profile not found")
		return
	}

	profile, err := s.DB.GetProfileByUserID(userID)
	if err != nil || profile == nil {
		s.renderError(c, session, http.StatusNotFound, "Profile not found")
		return
	}

	tweets, err := s.DB.GetTweetsByUserID(userID, session.User.ID)
	if err != nil {
		log.Printf("[WEB]: failed to load tweets for user %d: %v", userID, err)
		s.renderError(c, session, http.StatusInternalServerError, "Failed to load tweets")
		return
	}

	following, err := s.DB.IsFollowing(session.User.ID, userID)
	if err != nil {
		log.Printf("[WEB]: failed to check follow state: %v", err)
	}

	data := ProfilePageData{
		TemplateData: s.getBaseTemplateData(c, session, "@"+profile.Username),
		Profile:      profile,
		Tweets:       tweets,
		IsFollowing:  following,
		IsSelf:       session.User.ID == userID,
	}
	s.renderTemplate(c, "profile.html", data)
}

// profileSubmit handles the follow/unfollow button on a profile page
func (s *WebServer) profileSubmit(c *gin.Context) {
	session := s.getWebSession(c)
	if session == nil {
		s.redirectToLogin(c)
		return
	}

	userID, ok := parseIDParam(c)
	if !ok {
		s.renderError(c, session, http.StatusNotFound, "Profile not found")
		return
	}
	profile, err := s.DB.GetProfileByUserID(userID)
	if err != nil || profile == nil {
		s.renderError(c, session, http.StatusNotFound, "Profile not found")
		return
	}

	if userID != session.User.ID {
		switch c.PostForm("action") {
		case "follow":
			if err := s.DB.Follow(session.User.ID, userID); err != nil {
				log.Printf("[WEB]: failed to follow user %d: %v", userID, err)
			}
		case "unfollow":
			if err := s.DB.Unfollow(session.User.ID, userID); err != nil {
				log.Printf("[WEB]: failed to unfollow user %d: %v", userID, err)
			}
		}
	}

	c.Redirect(http.StatusSeeOther, "/profile/"+strconv.FormatInt(userID, 10)+"/")
}

// followersPage lists who follows a user. Only the owner may view it.
func (s *WebServer) followersPage(c *gin.Context) {
	s.followListPage(c, "Followers")
}

// followsPage lists who a user follows. Only the owner may view it.
func (s *WebServer) followsPage(c *gin.Context) {
	s.followListPage(c, "Follows")
}

func (s *WebServer) followListPage(c *gin.Context, heading string) {
	session := s.getWebSession(c)
	if session == nil {
		s.redirectToLogin(c)
		return
	}

	userID, ok := parseIDParam(c)
	if !ok {
		s.renderError(c, session, http.StatusNotFound, "Profile not found")
		return
	}
	if userID != session.User.ID {
		session.SetError("You can only view your own " + heading + " list.")
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	profile, err := s.DB.GetProfileByUserID(userID)
	if err != nil || profile == nil {
		s.renderError(c, session, http.StatusNotFound, "Profile not found")
		return
	}

	var profiles []*models.Profile
	if heading == "Followers" {
		profiles, err = s.DB.GetFollowers(userID)
	} else {
		profiles, err = s.DB.GetFollowing(userID)
	}
	if err != nil {
		log.Printf("[WEB]: failed to load %s list for user %d: %v", heading, userID, err)
		s.renderError(c, session, http.StatusInternalServerError, "Failed to load the list")
		return
	}

	data := FollowListPageData{
		TemplateData: s.getBaseTemplateData(c, session, heading),
		Profile:      profile,
		Profiles:     profiles,
		Heading:      heading,
	}
	s.renderTemplate(c, "follow_list.html", data)
}
