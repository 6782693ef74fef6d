package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/pockettcg/tracker/internal/platform/errors"
	"github.com/pockettcg/tracker/internal/storage"
	"github.com/pockettcg/tracker/internal/tracker/domain"
)

// CreateUser inserts a new account and its default private profile.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if err := domain.ValidateUsername(username); err != nil {
		return domain.User{}, err
	}
	createdAt := time.Now().UTC()

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, fmt.Errorf("begin create user: %w", err)
	}
	result, err := tx.ExecContext(
		ctx,
		`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		username,
		strings.TrimSpace(email),
		passwordHash,
		timeToUnixMillis(createdAt),
	)
	if err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			return domain.User{}, apperrors.New(apperrors.CodeUserUsernameTaken, "username is already taken")
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	userID, err := result.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return domain.User{}, fmt.Errorf("resolve user id: %w", err)
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO profiles (user_id, public, friend_code) VALUES (?, 0, '')`,
		userID,
	); err != nil {
		_ = tx.Rollback()
		return domain.User{}, fmt.Errorf("create profile: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.User{}, fmt.Errorf("commit create user: %w", err)
	}

	return domain.User{
		ID:           userID,
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}, nil
}

// UserByUsername loads an account by username, case-insensitively.
func (s *Store) UserByUsername(ctx context.Context, username string) (domain.User, bool, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?`,
		strings.TrimSpace(username),
	)
	return scanUser(row)
}

// UserByID loads an account by id.
func (s *Store) UserByID(ctx context.Context, userID int64) (domain.User, bool, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`,
		userID,
	)
	return scanUser(row)
}

func scanUser(row *sql.Row) (domain.User, bool, error) {
	var user domain.User
	var createdAt int64
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, fmt.Errorf("get user: %w", err)
	}
	user.CreatedAt = unixMillisToTime(createdAt)
	return user, true, nil
}

// UpdatePasswordHash replaces a user's password hash.
func (s *Store) UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error {
	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`,
		passwordHash,
		userID,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if affected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "user not found")
	}
	return nil
}

// DeleteUser removes an account. Collection rows, profile and friend
// requests cascade.
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// GetProfile loads a user's profile. Users created before profiles existed
// get the private default.
func (s *Store) GetProfile(ctx context.Context, userID int64) (domain.Profile, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT user_id, public, friend_code FROM profiles WHERE user_id = ?`,
		userID,
	)
	var profile domain.Profile
	var publicInt int64
	if err := row.Scan(&profile.UserID, &publicInt, &profile.FriendCode); err != nil {
		if err == sql.ErrNoRows {
			return domain.Profile{UserID: userID}, nil
		}
		return domain.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	profile.Public = publicInt != 0
	return profile, nil
}

// UpdateProfile upserts a user's profile settings.
func (s *Store) UpdateProfile(ctx context.Context, profile domain.Profile) error {
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO profiles (user_id, public, friend_code)
		 VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   public = excluded.public,
		   friend_code = excluded.friend_code`,
		profile.UserID,
		boolToInt(profile.Public),
		strings.TrimSpace(profile.FriendCode),
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// SearchPublicProfiles finds public users whose username contains the query,
// excluding the searching user.
func (s *Store) SearchPublicProfiles(ctx context.Context, query string, excludeUserID int64, limit int) ([]storage.PublicProfile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []storage.PublicProfile{}, nil
	}
	if limit < 1 {
		limit = 20
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT u.id, u.username, p.friend_code, p.public
		 FROM users u
		 JOIN profiles p ON p.user_id = u.id
		 WHERE p.public = 1 AND u.id <> ? AND u.username LIKE ?
		 ORDER BY u.username
		 LIMIT ?`,
		excludeUserID,
		"%"+query+"%",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}
	return collectPublicProfiles(rows)
}

// CreateFriendRequest records a pending friend request. Duplicate requests
// are no-ops.
func (s *Store) CreateFriendRequest(ctx context.Context, fromUserID, toUserID int64) error {
	if err := domain.ValidateFriendRequest(fromUserID, toUserID); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO friend_requests (from_user_id, to_user_id, created_at, accepted)
		 VALUES (?, ?, ?, 0)`,
		fromUserID,
		toUserID,
		timeToUnixMillis(time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("create friend request: %w", err)
	}
	return nil
}

// AcceptFriendRequest marks a request accepted. Only the addressee may
// accept it.
func (s *Store) AcceptFriendRequest(ctx context.Context, requestID, toUserID int64) error {
	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE friend_requests SET accepted = 1 WHERE id = ? AND to_user_id = ? AND accepted = 0`,
		requestID,
		toUserID,
	)
	if err != nil {
		return fmt.Errorf("accept friend request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("accept friend request: %w", err)
	}
	if affected == 0 {
		return apperrors.New(apperrors.CodeFriendRequestUnknown, "friend request not found")
	}
	return nil
}

// PendingRequests returns open requests addressed to a user, oldest first.
func (s *Store) PendingRequests(ctx context.Context, toUserID int64) ([]storage.PendingRequest, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT fr.id, fr.from_user_id, u.username
		 FROM friend_requests fr
		 JOIN users u ON u.id = fr.from_user_id
		 WHERE fr.to_user_id = ? AND fr.accepted = 0
		 ORDER BY fr.created_at`,
		toUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	requests := make([]storage.PendingRequest, 0)
	for rows.Next() {
		var request storage.PendingRequest
		if err := rows.Scan(&request.RequestID, &request.FromUserID, &request.FromUsername); err != nil {
			return nil, fmt.Errorf("scan pending request: %w", err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending requests: %w", err)
	}
	return requests, nil
}

// SentPendingUserIDs returns the user ids this user has open requests to.
func (s *Store) SentPendingUserIDs(ctx context.Context, fromUserID int64) (map[int64]bool, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT to_user_id FROM friend_requests WHERE from_user_id = ? AND accepted = 0`,
		fromUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sent requests: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	sent := make(map[int64]bool)
	for rows.Next() {
		var toUserID int64
		if err := rows.Scan(&toUserID); err != nil {
			return nil, fmt.Errorf("scan sent request: %w", err)
		}
		sent[toUserID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sent requests: %w", err)
	}
	return sent, nil
}

// Friends returns the users linked to userID by an accepted request in
// either direction.
func (s *Store) Friends(ctx context.Context, userID int64) ([]storage.PublicProfile, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT u.id, u.username, COALESCE(p.friend_code, ''), COALESCE(p.public, 0)
		 FROM friend_requests fr
		 JOIN users u ON u.id = CASE WHEN fr.from_user_id = ? THEN fr.to_user_id ELSE fr.from_user_id END
		 LEFT JOIN profiles p ON p.user_id = u.id
		 WHERE fr.accepted = 1 AND (fr.from_user_id = ? OR fr.to_user_id = ?)
		 ORDER BY u.username`,
		userID,
		userID,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return collectPublicProfiles(rows)
}

func collectPublicProfiles(rows *sql.Rows) ([]storage.PublicProfile, error) {
	defer func() {
		_ = rows.Close()
	}()
	profiles := make([]storage.PublicProfile, 0)
	for rows.Next() {
		var profile storage.PublicProfile
		var publicInt int64
		if err := rows.Scan(&profile.UserID, &profile.Username, &profile.FriendCode, &publicInt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profile.Public = publicInt != 0
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return profiles, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
