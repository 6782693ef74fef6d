package domain

import (
	"strings"
	"time"

	apperrors "github.com/pockettcg/tracker/internal/platform/errors"
)

// MinPasswordLength is the shortest accepted account password.
const MinPasswordLength = 8

// User is an account that owns a collection.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// ValidateUsername checks a username for registration.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return apperrors.New(apperrors.CodeUserUsernameEmpty, "username is required")
	}
	return nil
}

// ValidateEmail applies a minimal shape check on an email address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return apperrors.New(apperrors.CodeUserEmailInvalid, "email address is invalid")
	}
	return nil
}

// ValidatePassword checks password length for registration and changes.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperrors.New(apperrors.CodeUserPasswordTooShort, "password is too short")
	}
	return nil
}

// Profile carries visibility and the in-game friend code for a user.
type Profile struct {
	UserID     int64
	Public     bool
	FriendCode string
}

// UserCard records ownership of one card with a quantity.
type UserCard struct {
	UserID   int64
	CardID   int64
	Quantity int
}

// FriendRequest links two users; accepted requests make them friends.
type FriendRequest struct {
	ID         int64
	FromUserID int64
	ToUserID   int64
	CreatedAt  time.Time
	Accepted   bool
}

// ValidateFriendRequest rejects self-requests.
func ValidateFriendRequest(fromUserID, toUserID int64) error {
	if fromUserID == toUserID {
		return apperrors.New(apperrors.CodeFriendSelfRequest, "cannot befriend yourself")
	}
	return nil
}
