package database

import (
	"database/sql"
	"fmt"

	"github.com/avdske/go-chirper/internal/models"
)

// --- User Queries ---

const query_InsertUser = `INSERT INTO users (username, email, password_hash, display_name) VALUES (?, ?, ?, ?)`
const query_InsertProfile = `INSERT INTO profiles (user_id) VALUES (?)`

// InsertUser creates a user row together with its profile row.
// Every user has exactly one profile, so both inserts happen in one
// transaction.
func (db *Database) InsertUser(u *models.User) error {
	return retryableTransactionExec(db.mainDB, func(tx *sql.Tx) error {
		res, err := tx.Exec(query_InsertUser, u.Username, u.Email, u.PasswordHash, u.DisplayName)
		if err != nil {
			return err
		}
		userID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(query_InsertProfile, userID); err != nil {
			return err
		}
		u.ID = userID
		return nil
	})
}

const query_GetUserByUsername = `SELECT id, username, email, password_hash, display_name, created_at FROM users WHERE username = ?`

func (db *Database) GetUserByUsername(username string) (*models.User, error) {
	row := db.mainDB.QueryRow(query_GetUserByUsername, username)
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

const query_GetUserByEmail = `SELECT id, username, email, password_hash, display_name, created_at FROM users WHERE email = ?`

func (db *Database) GetUserByEmail(email string) (*models.User, error) {
	row := db.mainDB.QueryRow(query_GetUserByEmail, email)
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

const query_GetUserByID = `SELECT id, username, email, password_hash, display_name, created_at FROM users WHERE id = ?`

func (db *Database) GetUserByID(id int64) (*models.User, error) {
	row := db.mainDB.QueryRow(query_GetUserByID, id)
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

const query_GetAllUsers = `SELECT id, username, email, password_hash, display_name, created_at FROM users ORDER BY id`

func (db *Database) GetAllUsers() ([]*models.User, error) {
	rows, err := db.mainDB.Query(query_GetAllUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

// UpdateUserAccount updates a user's email and display name
const query_UpdateUserAccount = `UPDATE users SET email = ?, display_name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

func (db *Database) UpdateUserAccount(userID int64, email, displayName string) error {
	_, err := retryableExec(db.mainDB, query_UpdateUserAccount, email, displayName, userID)
	return err
}

// UpdateUserPassword updates a user's password hash
const query_UpdateUserPassword = `UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

func (db *Database) UpdateUserPassword(userID int64, passwordHash string) error {
	_, err := retryableExec(db.mainDB, query_UpdateUserPassword, passwordHash, userID)
	return err
}

const query_DeleteUser = `DELETE FROM users WHERE id = ?`

func (db *Database) DeleteUser(userID int64) error {
	_, err := retryableExec(db.mainDB, query_DeleteUser, userID)
	return err
}

// --- Profile Queries ---

const query_GetProfileByUserID = `SELECT p.user_id, u.username, u.display_name, p.picture_url, p.bio, p.updated_at
	FROM profiles p JOIN users u ON u.id = p.user_id WHERE p.user_id = ?`

func (db *Database) GetProfileByUserID(userID int64) (*models.Profile, error) {
	row := db.mainDB.QueryRow(query_GetProfileByUserID, userID)
	var p models.Profile
	if err := row.Scan(&p.UserID, &p.Username, &p.DisplayName, &p.PictureURL, &p.Bio, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

const query_GetAllProfilesExcept = `SELECT p.user_id, u.username, u.display_name, p.picture_url, p.bio, p.updated_at
	FROM profiles p JOIN users u ON u.id = p.user_id WHERE p.user_id != ? ORDER BY u.username`

// GetAllProfilesExcept returns every profile except the given user's own
func (db *Database) GetAllProfilesExcept(userID int64) ([]*models.Profile, error) {
	rows, err := retryableQuery(db.mainDB, query_GetAllProfilesExcept, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProfiles(rows)
}

const query_UpdateProfile = `UPDATE profiles SET picture_url = ?, bio = ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ?`

func (db *Database) UpdateProfile(userID int64, pictureURL, bio string) error {
	_, err := retryableExec(db.mainDB, query_UpdateProfile, pictureURL, bio, userID)
	return err
}

func scanProfiles(rows *sql.Rows) ([]*models.Profile, error) {
	var out []*models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.UserID, &p.Username, &p.DisplayName, &p.PictureURL, &p.Bio, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// --- Follow Queries ---

const query_Follow = `INSERT OR IGNORE INTO follows (follower_id, followed_id) VALUES (?, ?)`

// Follow adds a follow edge. Adding an existing edge is a no-op.
func (db *Database) Follow(followerID, followedID int64) error {
	_, err := retryableExec(db.mainDB, query_Follow, followerID, followedID)
	return err
}

const query_Unfollow = `DELETE FROM follows WHERE follower_id = ? AND followed_id = ?`

// Unfollow removes a follow edge. Removing an absent edge is a no-op.
func (db *Database) Unfollow(followerID, followedID int64) error {
	_, err := retryableExec(db.mainDB, query_Unfollow, followerID, followedID)
	return err
}

const query_IsFollowing = `SELECT COUNT(*) FROM follows WHERE follower_id = ? AND followed_id = ?`

func (db *Database) IsFollowing(followerID, followedID int64) (bool, error) {
	var count int
	err := retryableQueryRowScan(db.mainDB, query_IsFollowing, []interface{}{followerID, followedID}, &count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

const query_GetFollowing = `SELECT p.user_id, u.username, u.display_name, p.picture_url, p.bio, p.updated_at
	FROM follows f
	JOIN profiles p ON p.user_id = f.followed_id
	JOIN users u ON u.id = p.user_id
	WHERE f.follower_id = ? ORDER BY u.username`

// GetFollowing returns the profiles the given user follows
func (db *Database) GetFollowing(userID int64) ([]*models.Profile, error) {
	rows, err := retryableQuery(db.mainDB, query_GetFollowing, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProfiles(rows)
}

const query_GetFollowers = `SELECT p.user_id, u.username, u.display_name, p.picture_url, p.bio, p.updated_at
	FROM follows f
	JOIN profiles p ON p.user_id = f.follower_id
	JOIN users u ON u.id = p.user_id
	WHERE f.followed_id = ? ORDER BY u.username`

// GetFollowers returns the profiles following the given user
func (db *Database) GetFollowers(userID int64) ([]*models.Profile, error) {
	rows, err := retryableQuery(db.mainDB, query_GetFollowers, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProfiles(rows)
}

// --- Tweet Queries ---

const query_InsertTweet = `INSERT INTO tweets (user_id, content) VALUES (?, ?)`

func (db *Database) InsertTweet(t *models.Tweet) error {
	res, err := retryableExec(db.mainDB, query_InsertTweet, t.UserID, t.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get tweet id: %w", err)
	}
	t.ID = id
	return nil
}

const query_GetTweetByID = `SELECT t.id, t.user_id, u.username, t.content, t.created_at, t.updated_at
	FROM tweets t JOIN users u ON u.id = t.user_id WHERE t.id = ?`

func (db *Database) GetTweetByID(id int64) (*models.Tweet, error) {
	row := db.mainDB.QueryRow(query_GetTweetByID, id)
	var t models.Tweet
	if err := row.Scan(&t.ID, &t.UserID, &t.Username, &t.Content, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

const query_GetAllTweets = `SELECT t.id, t.user_id, u.username, t.content, t.created_at, t.updated_at,
	(SELECT COUNT(*) FROM likes l WHERE l.tweet_id = t.id) AS like_count,
	EXISTS(SELECT 1 FROM likes l WHERE l.tweet_id = t.id AND l.user_id = ?) AS liked
	FROM tweets t JOIN users u ON u.id = t.user_id
	ORDER BY t.created_at DESC, t.id DESC`

// GetAllTweets returns every tweet, newest first. viewerID marks which
// tweets the viewing user liked; pass 0 for anonymous viewers.
func (db *Database) GetAllTweets(viewerID int64) ([]*models.Tweet, error) {
	rows, err := retryableQuery(db.mainDB, query_GetAllTweets, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTweets(rows)
}

const query_GetTweetsByUserID = `SELECT t.id, t.user_id, u.username, t.content, t.created_at, t.updated_at,
	(SELECT COUNT(*) FROM likes l WHERE l.tweet_id = t.id) AS like_count,
	EXISTS(SELECT 1 FROM likes l WHERE l.tweet_id = t.id AND l.user_id = ?) AS liked
	FROM tweets t JOIN users u ON u.id = t.user_id
	WHERE t.user_id = ?
	ORDER BY t.created_at DESC, t.id DESC`

// GetTweetsByUserID returns one user's tweets, newest first
func (db *Database) GetTweetsByUserID(userID, viewerID int64) ([]*models.Tweet, error) {
	rows, err := retryableQuery(db.mainDB, query_GetTweetsByUserID, viewerID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTweets(rows)
}

func scanTweets(rows *sql.Rows) ([]*models.Tweet, error) {
	var out []*models.Tweet
	for rows.Next() {
		var t models.Tweet
		if err := rows.Scan(&t.ID, &t.UserID, &t.Username, &t.Content, &t.CreatedAt, &t.UpdatedAt, &t.LikeCount, &t.Liked); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// UpdateTweetContent updates a tweet's content. The owner check is
// repeated on write, a non-owner update changes nothing.
const query_UpdateTweetContent = `UPDATE tweets SET content = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`

func (db *Database) UpdateTweetContent(tweetID, userID int64, content string) error {
	_, err := retryableExec(db.mainDB, query_UpdateTweetContent, content, tweetID, userID)
	return err
}

const query_DeleteTweet = `DELETE FROM tweets WHERE id = ?`

func (db *Database) DeleteTweet(tweetID int64) error {
	_, err := retryableExec(db.mainDB, query_DeleteTweet, tweetID)
	return err
}

const query_CountTweets = `SELECT COUNT(*) FROM tweets`

func (db *Database) CountTweets() (int, error) {
	var count int
	err := retryableQueryRowScan(db.mainDB, query_CountTweets, nil, &count)
	return count, err
}

// --- Like Queries ---

const query_HasLiked = `SELECT COUNT(*) FROM likes WHERE user_id = ? AND tweet_id = ?`

func (db *Database) HasLiked(userID, tweetID int64) (bool, error) {
	var count int
	err := retryableQueryRowScan(db.mainDB, query_HasLiked, []interface{}{userID, tweetID}, &count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

const query_LikeTweet = `INSERT OR IGNORE INTO likes (user_id, tweet_id) VALUES (?, ?)`

func (db *Database) LikeTweet(userID, tweetID int64) error {
	_, err := retryableExec(db.mainDB, query_LikeTweet, userID, tweetID)
	return err
}

const query_UnlikeTweet = `DELETE FROM likes WHERE user_id = ? AND tweet_id = ?`

func (db *Database) UnlikeTweet(userID, tweetID int64) error {
	_, err := retryableExec(db.mainDB, query_UnlikeTweet, userID, tweetID)
	return err
}

// ToggleLike flips membership of the user in the tweet's like set and
// reports whether the tweet is liked afterwards.
func (db *Database) ToggleLike(userID, tweetID int64) (bool, error) {
	liked, err := db.HasLiked(userID, tweetID)
	if err != nil {
		return false, err
	}
	if liked {
		return false, db.UnlikeTweet(userID, tweetID)
	}
	return true, db.LikeTweet(userID, tweetID)
}
