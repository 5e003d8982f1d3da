package web

import (
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/avdske/go-chirper/internal/config"
	"github.com/avdske/go-chirper/internal/database"
	"github.com/avdske/go-chirper/internal/models"
)

var testServer *WebServer

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "chirper-web-test-*")
	if err != nil {
		log.Fatalf("failed to create temp dir: %v", err)
	}

	dbcfg := database.DefaultDBConfig()
	dbcfg.DataDir = dir
	db, err := database.OpenDatabase(dbcfg)
	if err != nil {
		log.Fatalf("failed to open test database: %v", err)
	}

	webcfg := &config.WebConfig{
		ListenPort:  11990,
		StaticDir:   "../../web/static",
		TemplateDir: "../../web/templates",
	}
	testServer = NewServer(db, webcfg)

	code := m.Run()

	db.Shutdown()
	os.RemoveAll(dir)
	os.Exit(code)
}

func doRequest(t *testing.T, method, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	testServer.Router.ServeHTTP(w, req)
	return w
}

func responseCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	resp := http.Response{Header: w.Header()}
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName && c.Value != "" {
			return c
		}
	}
	return nil
}

// registerUser signs up a fresh account through the web layer and
// returns the session cookie plus the user row.
func registerUser(t *testing.T, username string) (*http.Cookie, *models.User) {
	t.Helper()
	form := url.Values{
		"username":  {username},
		"email":     {username + "@example.com"},
		"password":  {"secret1"},
		"password2": {"secret1"},
	}
	w := doRequest(t, http.MethodPost, "/register/", form, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("register %s: status = %d, want %d (body: %s)", username, w.Code, http.StatusSeeOther, w.Body.String())
	}
	cookie := responseCookie(t, w)
	if cookie == nil {
		t.Fatalf("register %s: no session cookie set", username)
	}
	user, err := testServer.DB.GetUserByUsername(username)
	if err != nil {
		t.Fatalf("register %s: user not in database: %v", username, err)
	}
	return cookie, user
}

func postTweet(t *testing.T, cookie *http.Cookie, content string) *models.Tweet {
	t.Helper()
	w := doRequest(t, http.MethodPost, "/", url.Values{"content": {content}}, cookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("post tweet: status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	tweets, err := testServer.DB.GetAllTweets(0)
	if err != nil || len(tweets) == 0 {
		t.Fatalf("tweet not stored: %v", err)
	}
	for _, tw := range tweets {
		if tw.Content == content {
			return tw
		}
	}
	t.Fatalf("tweet %q not found in feed", content)
	return nil
}

func TestRegisterAndSession(t *testing.T) {
	cookie, user := registerUser(t, "reg_alice")

	if len(cookie.Value) != database.SessionIDLength {
		t.Errorf("session cookie length = %d, want %d", len(cookie.Value), database.SessionIDLength)
	}
	if user.DisplayName != "reg_alice" {
		t.Errorf("display name defaults to username, got %q", user.DisplayName)
	}

	w := doRequest(t, http.MethodGet, "/", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("feed status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "reg_alice") {
		t.Error("feed should show the logged-in username")
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"bad email", url.Values{"username": {"reg_bad1"}, "email": {"nope"}, "password": {"secret1"}, "password2": {"secret1"}}},
		{"short password", url.Values{"username": {"reg_bad2"}, "email": {"b2@example.com"}, "password": {"abc"}, "password2": {"abc"}}},
		{"password mismatch", url.Values{"username": {"reg_bad3"}, "email": {"b3@example.com"}, "password": {"secret1"}, "password2": {"secret2"}}},
		{"bad username", url.Values{"username": {"no spaces!"}, "email": {"b4@example.com"}, "password": {"secret1"}, "password2": {"secret1"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, http.MethodPost, "/register/", tt.form, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
			if responseCookie(t, w) != nil {
				t.Error("failed registration must not create a session")
			}
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	registerUser(t, "reg_dup")
	form := url.Values{
		"username":  {"reg_dup"},
		"email":     {"other@example.com"},
		"password":  {"secret1"},
		"password2": {"secret1"},
	}
	w := doRequest(t, http.MethodPost, "/register/", form, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate register status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestLogin(t *testing.T) {
	registerUser(t, "login_bob")

	w := doRequest(t, http.MethodPost, "/login/", url.Values{"username": {"login_bob"}, "password": {"secret1"}}, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if responseCookie(t, w) == nil {
		t.Fatal("login should set a session cookie")
	}

	// Failures bounce back to the login page with a notice
	w = doRequest(t, http.MethodPost, "/login/", url.Values{"username": {"login_bob"}, "password": {"wrong"}}, nil)
	if w.Code != http.StatusSeeOther {
		t.Errorf("wrong password status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/login/?message=login_failed" {
		t.Errorf("wrong password redirect = %q", loc)
	}
	if responseCookie(t, w) != nil {
		t.Error("failed login must not create a session")
	}

	// Unknown user gets the same rejection as a wrong password
	w = doRequest(t, http.MethodPost, "/login/", url.Values{"username": {"login_nobody"}, "password": {"whatever"}}, nil)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login/?message=login_failed" {
		t.Errorf("unknown user: status = %d location = %q", w.Code, w.Header().Get("Location"))
	}

	// Following the redirect shows the error notice
	w = doRequest(t, http.MethodGet, "/login/?message=login_failed", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login page status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid username or password.") {
		t.Error("login page should show the failure notice")
	}
}

func TestLogout(t *testing.T) {
	cookie, _ := registerUser(t, "logout_carol")

	w := doRequest(t, http.MethodGet, "/logout/", nil, cookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("logout status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/?message=logged_out" {
		t.Errorf("logout redirect = %q", loc)
	}

	// The old cookie no longer works
	w = doRequest(t, http.MethodGet, "/update_user/", nil, cookie)
	if w.Code != http.StatusSeeOther {
		t.Errorf("stale session should redirect, got %d", w.Code)
	}
}

func TestAnonymousRedirects(t *testing.T) {
	paths := []string{
		"/profile_list/",
		"/profile/1/",
		"/profile/followers/1/",
		"/profile/follows/1/",
		"/update_user/",
		"/tweet_like/1/",
		"/follow/1/",
		"/unfollow/1/",
		"/delete_tweet/1/",
		"/edit_tweet/1/",
	}
	for _, path := range paths {
		w := doRequest(t, http.MethodGet, path, nil, nil)
		if w.Code != http.StatusSeeOther {
			t.Errorf("GET %s anonymous: status = %d, want %d", path, w.Code, http.StatusSeeOther)
			continue
		}
		if loc := w.Header().Get("Location"); loc != "/?message=login_required" {
			t.Errorf("GET %s anonymous: redirect = %q", path, loc)
		}
	}
}

func TestAnonymousTweetNotStored(t *testing.T) {
	before, err := testServer.DB.CountTweets()
	if err != nil {
		t.Fatal(err)
	}
	w := doRequest(t, http.MethodPost, "/", url.Values{"content": {"anonymous tweet"}}, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	after, err := testServer.DB.CountTweets()
	if err != nil {
		t.Fatal(err)
	}
	if after != before {
		t.Errorf("anonymous POST must not store a tweet (%d -> %d)", before, after)
	}
}

func TestPostTweetNewestFirst(t *testing.T) {
	cookie, _ := registerUser(t, "feed_dave")
	postTweet(t, cookie, "feed_dave tweet one")
	postTweet(t, cookie, "feed_dave tweet two")

	w := doRequest(t, http.MethodGet, "/", nil, cookie)
	body := w.Body.String()
	first := strings.Index(body, "feed_dave tweet two")
	second := strings.Index(body, "feed_dave tweet one")
	if first == -1 || second == -1 {
		t.Fatal("both tweets should appear on the feed")
	}
	if first > second {
		t.Error("newer tweet should appear before the older one")
	}
}

func TestPostTweetShowsNotice(t *testing.T) {
	cookie, _ := registerUser(t, "notice_ned")
	postTweet(t, cookie, "notice_ned's tweet")

	// The redirect target shows the one-shot notice, exactly once
	w := doRequest(t, http.MethodGet, "/", nil, cookie)
	if !strings.Contains(w.Body.String(), "Your tweet has been posted!") {
		t.Error("feed should show the posted notice after the redirect")
	}
	w = doRequest(t, http.MethodGet, "/", nil, cookie)
	if strings.Contains(w.Body.String(), "Your tweet has been posted!") {
		t.Error("notice should be consumed by the first render")
	}
}

func TestEmptyTweetRejected(t *testing.T) {
	cookie, _ := registerUser(t, "empty_erin")
	before, _ := testServer.DB.CountTweets()

	w := doRequest(t, http.MethodPost, "/", url.Values{"content": {"   "}}, cookie)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty tweet status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	after, _ := testServer.DB.CountTweets()
	if after != before {
		t.Error("empty tweet must not be stored")
	}
}

func TestLikeToggle(t *testing.T) {
	cookie, user := registerUser(t, "like_frank")
	tw := postTweet(t, cookie, "like_frank's tweet")

	path := fmt.Sprintf("/tweet_like/%d/", tw.ID)
	w := doRequest(t, http.MethodGet, path, nil, cookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("like status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	liked, _ := testServer.DB.HasLiked(user.ID, tw.ID)
	if !liked {
		t.Fatal("tweet should be liked after first toggle")
	}

	doRequest(t, http.MethodGet, path, nil, cookie)
	liked, _ = testServer.DB.HasLiked(user.ID, tw.ID)
	if liked {
		t.Error("second toggle should remove the like")
	}
}

func TestLikeMissingTweet(t *testing.T) {
	cookie, _ := registerUser(t, "like_gone")
	w := doRequest(t, http.MethodGet, "/tweet_like/999999/", nil, cookie)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing tweet status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestDeleteTweetOwnerOnly(t *testing.T) {
	ownerCookie, _ := registerUser(t, "del_owner")
	otherCookie, _ := registerUser(t, "del_other")
	tw := postTweet(t, ownerCookie, "del_owner's tweet")

	path := fmt.Sprintf("/delete_tweet/%d/", tw.ID)

	w := doRequest(t, http.MethodGet, path, nil, otherCookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("non-owner delete status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if _, err := testServer.DB.GetTweetByID(tw.ID); err != nil {
		t.Fatal("non-owner must not delete the tweet")
	}

	w = doRequest(t, http.MethodGet, path, nil, ownerCookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("owner delete status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if _, err := testServer.DB.GetTweetByID(tw.ID); err == nil {
		t.Error("owner delete should remove the tweet")
	}
}

func TestEditTweetOwnerOnly(t *testing.T) {
	ownerCookie, _ := registerUser(t, "edit_owner")
	otherCookie, _ := registerUser(t, "edit_other")
	tw := postTweet(t, ownerCookie, "original text")

	path := fmt.Sprintf("/edit_tweet/%d/", tw.ID)

	// Non-owner cannot even load the edit page
	w := doRequest(t, http.MethodGet, path, nil, otherCookie)
	if w.Code != http.StatusSeeOther {
		t.Errorf("non-owner edit page status = %d, want %d", w.Code, http.StatusSeeOther)
	}

	w = doRequest(t, http.MethodPost, path, url.Values{"content": {"hijacked"}}, otherCookie)
	if w.Code != http.StatusSeeOther {
		t.Errorf("non-owner edit status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	got, _ := testServer.DB.GetTweetByID(tw.ID)
	if got.Content != "original text" {
		t.Fatalf("non-owner edit changed content to %q", got.Content)
	}

	w = doRequest(t, http.MethodPost, path, url.Values{"content": {"edited text"}}, ownerCookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("owner edit status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	got, _ = testServer.DB.GetTweetByID(tw.ID)
	if got.Content != "edited text" {
		t.Errorf("content = %q, want %q", got.Content, "edited text")
	}
}

func TestFollowUnfollow(t *testing.T) {
	aliceCookie, alice := registerUser(t, "fol_alice")
	_, bob := registerUser(t, "fol_bob")

	followPath := fmt.Sprintf("/follow/%d/?next=/profile_list/", bob.ID)
	w := doRequest(t, http.MethodGet, followPath, nil, aliceCookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("follow status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/profile_list/" {
		t.Errorf("follow redirect = %q, want /profile_list/", loc)
	}
	following, _ := testServer.DB.IsFollowing(alice.ID, bob.ID)
	if !following {
		t.Fatal("alice should follow bob")
	}

	// Re-following keeps the state
	doRequest(t, http.MethodGet, followPath, nil, aliceCookie)
	following, _ = testServer.DB.IsFollowing(alice.ID, bob.ID)
	if !following {
		t.Fatal("repeated follow should be a no-op")
	}

	unfollowPath := fmt.Sprintf("/unfollow/%d/", bob.ID)
	w = doRequest(t, http.MethodGet, unfollowPath, nil, aliceCookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("unfollow status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	following, _ = testServer.DB.IsFollowing(alice.ID, bob.ID)
	if following {
		t.Error("unfollow should remove the edge")
	}

	// Unfollowing again is harmless
	doRequest(t, http.MethodGet, unfollowPath, nil, aliceCookie)
	following, _ = testServer.DB.IsFollowing(alice.ID, bob.ID)
	if following {
		t.Error("repeated unfollow should be a no-op")
	}
}

func TestFollowSelf(t *testing.T) {
	cookie, user := registerUser(t, "self_sam")
	w := doRequest(t, http.MethodGet, fmt.Sprintf("/follow/%d/", user.ID), nil, cookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("self-follow status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	following, _ := testServer.DB.IsFollowing(user.ID, user.ID)
	if following {
		t.Error("users must not follow themselves")
	}
}

func TestFollowMissingUser(t *testing.T) {
	cookie, _ := registerUser(t, "fol_missing")
	w := doRequest(t, http.MethodGet, "/follow/999999/", nil, cookie)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing user follow status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestProfileFollowButton(t *testing.T) {
	aliceCookie, alice := registerUser(t, "btn_alice")
	_, bob := registerUser(t, "btn_bob")

	path := fmt.Sprintf("/profile/%d/", bob.ID)

	w := doRequest(t, http.MethodPost, path, url.Values{"action": {"follow"}}, aliceCookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("profile follow status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != path {
		t.Errorf("profile follow redirect = %q, want %q", loc, path)
	}
	following, _ := testServer.DB.IsFollowing(alice.ID, bob.ID)
	if !following {
		t.Fatal("follow action should add the edge")
	}

	doRequest(t, http.MethodPost, path, url.Values{"action": {"unfollow"}}, aliceCookie)
	following, _ = testServer.DB.IsFollowing(alice.ID, bob.ID)
	if following {
		t.Error("unfollow action should remove the edge")
	}
}

func TestProfilePage(t *testing.T) {
	cookie, _ := registerUser(t, "prof_alice")
	_, bob := registerUser(t, "prof_bob")

	w := doRequest(t, http.MethodGet, fmt.Sprintf("/profile/%d/", bob.ID), nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("profile status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "@prof_bob") {
		t.Error("profile page should show the profile's username")
	}

	w = doRequest(t, http.MethodGet, "/profile/999999/", nil, cookie)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing profile status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestProfileList(t *testing.T) {
	cookie, _ := registerUser(t, "list_alice")
	registerUser(t, "list_bob")

	w := doRequest(t, http.MethodGet, "/profile_list/", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("profile list status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "list_bob") {
		t.Error("profile list should show other users")
	}
	if strings.Contains(body, `>@list_alice<`) {
		t.Error("profile list should not show the viewer's own profile")
	}
}

func TestFollowListsSelfOnly(t *testing.T) {
	aliceCookie, alice := registerUser(t, "fl_alice")
	_, bob := registerUser(t, "fl_bob")

	// Own lists render
	w := doRequest(t, http.MethodGet, fmt.Sprintf("/profile/followers/%d/", alice.ID), nil, aliceCookie)
	if w.Code != http.StatusOK {
		t.Errorf("own followers status = %d, want 200", w.Code)
	}
	w = doRequest(t, http.MethodGet, fmt.Sprintf("/profile/follows/%d/", alice.ID), nil, aliceCookie)
	if w.Code != http.StatusOK {
		t.Errorf("own follows status = %d, want 200", w.Code)
	}

	// Someone else's lists redirect away
	w = doRequest(t, http.MethodGet, fmt.Sprintf("/profile/followers/%d/", bob.ID), nil, aliceCookie)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Errorf("other's followers: status = %d location = %q", w.Code, w.Header().Get("Location"))
	}
	w = doRequest(t, http.MethodGet, fmt.Sprintf("/profile/follows/%d/", bob.ID), nil, aliceCookie)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Errorf("other's follows: status = %d location = %q", w.Code, w.Header().Get("Location"))
	}

	// A foreign id redirects the same way whether or not the user exists
	w = doRequest(t, http.MethodGet, "/profile/followers/999999/", nil, aliceCookie)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Errorf("nonexistent followers: status = %d location = %q", w.Code, w.Header().Get("Location"))
	}
	w = doRequest(t, http.MethodGet, "/profile/follows/999999/", nil, aliceCookie)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Errorf("nonexistent follows: status = %d location = %q", w.Code, w.Header().Get("Location"))
	}
}

func TestFollowerListContent(t *testing.T) {
	aliceCookie, alice := registerUser(t, "flc_alice")
	bobCookie, bob := registerUser(t, "flc_bob")

	// bob follows alice
	doRequest(t, http.MethodGet, fmt.Sprintf("/follow/%d/", alice.ID), nil, bobCookie)

	w := doRequest(t, http.MethodGet, fmt.Sprintf("/profile/followers/%d/", alice.ID), nil, aliceCookie)
	if w.Code != http.StatusOK {
		t.Fatalf("followers status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "flc_bob") {
		t.Error("alice's followers should list bob")
	}

	w = doRequest(t, http.MethodGet, fmt.Sprintf("/profile/follows/%d/", bob.ID), nil, bobCookie)
	if w.Code != http.StatusOK {
		t.Fatalf("follows status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "flc_alice") {
		t.Error("bob's follows should list alice")
	}
}

func TestUpdateUser(t *testing.T) {
	cookie, user := registerUser(t, "upd_alice")

	w := doRequest(t, http.MethodGet, "/update_user/", nil, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("settings page status = %d, want 200", w.Code)
	}

	form := url.Values{
		"email":        {"upd_alice_new@example.com"},
		"display_name": {"Alice Updated"},
		"picture_url":  {"https://example.com/alice.png"},
		"bio":          {"hello from the tests"},
	}
	w = doRequest(t, http.MethodPost, "/update_user/", form, cookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("settings save status = %d, want %d (body: %s)", w.Code, http.StatusSeeOther, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("settings save redirect = %q, want /", loc)
	}

	u, _ := testServer.DB.GetUserByID(user.ID)
	if u.Email != "upd_alice_new@example.com" || u.DisplayName != "Alice Updated" {
		t.Errorf("account not updated: %+v", u)
	}
	p, _ := testServer.DB.GetProfileByUserID(user.ID)
	if p.PictureURL != "https://example.com/alice.png" || p.Bio != "hello from the tests" {
		t.Errorf("profile not updated: %+v", p)
	}
}

func TestUpdateUserBothFormsMustValidate(t *testing.T) {
	cookie, user := registerUser(t, "upd_strict")

	// Valid profile part, broken account part: nothing is saved
	form := url.Values{
		"email":        {"not-an-email"},
		"display_name": {"Strict"},
		"picture_url":  {"https://example.com/s.png"},
		"bio":          {"should not be saved"},
	}
	w := doRequest(t, http.MethodPost, "/update_user/", form, cookie)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid settings status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	p, _ := testServer.DB.GetProfileByUserID(user.ID)
	if p.Bio == "should not be saved" {
		t.Error("profile must not be saved when the account form fails")
	}

	// Valid account part, broken profile part: nothing is saved either
	form = url.Values{
		"email":        {"upd_strict2@example.com"},
		"display_name": {"Strict"},
		"picture_url":  {"ftp://example.com/s.png"},
		"bio":          {"x"},
	}
	w = doRequest(t, http.MethodPost, "/update_user/", form, cookie)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid picture status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	u, _ := testServer.DB.GetUserByID(user.ID)
	if u.Email == "upd_strict2@example.com" {
		t.Error("account must not be saved when the profile form fails")
	}
}

func TestUpdateUserPasswordChange(t *testing.T) {
	cookie, _ := registerUser(t, "upd_pw")

	form := url.Values{
		"email":        {"upd_pw@example.com"},
		"display_name": {"upd_pw"},
		"password":     {"newsecret"},
		"password2":    {"newsecret"},
	}
	w := doRequest(t, http.MethodPost, "/update_user/", form, cookie)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("password change status = %d, want %d", w.Code, http.StatusSeeOther)
	}

	// Old password no longer works, the new one does
	w = doRequest(t, http.MethodPost, "/login/", url.Values{"username": {"upd_pw"}, "password": {"secret1"}}, nil)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login/?message=login_failed" {
		t.Errorf("old password: status = %d location = %q", w.Code, w.Header().Get("Location"))
	}
	w = doRequest(t, http.MethodPost, "/login/", url.Values{"username": {"upd_pw"}, "password": {"newsecret"}}, nil)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Errorf("new password: status = %d location = %q", w.Code, w.Header().Get("Location"))
	}
	if responseCookie(t, w) == nil {
		t.Error("login with the new password should set a session cookie")
	}
}

func TestNextParamRejectsOffsite(t *testing.T) {
	cookie, _ := registerUser(t, "next_nina")
	tw := postTweet(t, cookie, "next_nina's tweet")

	tests := []string{
		"https://evil.example/",
		"//evil.example/",
		"javascript://alert",
		"",
	}
	for _, next := range tests {
		path := fmt.Sprintf("/tweet_like/%d/?next=%s", tw.ID, url.QueryEscape(next))
		w := doRequest(t, http.MethodGet, path, nil, cookie)
		if w.Code != http.StatusSeeOther {
			t.Fatalf("like status = %d, want %d", w.Code, http.StatusSeeOther)
		}
		if loc := w.Header().Get("Location"); loc != "/" {
			t.Errorf("next=%q redirected to %q, want /", next, loc)
		}
	}

	// A local path is accepted
	w := doRequest(t, http.MethodGet, fmt.Sprintf("/tweet_like/%d/?next=/profile_list/", tw.ID), nil, cookie)
	if loc := w.Header().Get("Location"); loc != "/profile_list/" {
		t.Errorf("local next redirected to %q, want /profile_list/", loc)
	}
}

func TestInvalidIDParam(t *testing.T) {
	cookie, _ := registerUser(t, "badid_bea")
	for _, path := range []string{"/profile/abc/", "/tweet_like/-1/", "/edit_tweet/zero/"} {
		w := doRequest(t, http.MethodGet, path, nil, cookie)
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s: status = %d, want %d", path, w.Code, http.StatusNotFound)
		}
	}
}

func TestLoginLockoutViaWeb(t *testing.T) {
	registerUser(t, "lock_luke")

	for i := 0; i < database.MaxLoginAttempts; i++ {
		doRequest(t, http.MethodPost, "/login/", url.Values{"username": {"lock_luke"}, "password": {"wrong" + strconv.Itoa(i)}}, nil)
	}

	// Even the right password is rejected while locked out
	w := doRequest(t, http.MethodPost, "/login/", url.Values{"username": {"lock_luke"}, "password": {"secret1"}}, nil)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login/?message=login_locked" {
		t.Errorf("locked-out login: status = %d location = %q", w.Code, w.Header().Get("Location"))
	}
}
