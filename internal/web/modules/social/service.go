package social

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/pockettcg/tracker/internal/platform/errors"
	"github.com/pockettcg/tracker/internal/storage"
	"github.com/pockettcg/tracker/internal/tracker/domain"
	webtemplates "github.com/pockettcg/tracker/internal/web/templates"
)

// Store is the persistence surface the social module depends on.
type Store interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (domain.User, error)
	UserByUsername(ctx context.Context, username string) (domain.User, bool, error)
	UserByID(ctx context.Context, userID int64) (domain.User, bool, error)
	UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error
	DeleteUser(ctx context.Context, userID int64) error
	GetProfile(ctx context.Context, userID int64) (domain.Profile, error)
	UpdateProfile(ctx context.Context, profile domain.Profile) error
	SearchPublicProfiles(ctx context.Context, query string, excludeUserID int64, limit int) ([]storage.PublicProfile, error)
	CreateFriendRequest(ctx context.Context, fromUserID, toUserID int64) error
	AcceptFriendRequest(ctx context.Context, requestID, toUserID int64) error
	PendingRequests(ctx context.Context, toUserID int64) ([]storage.PendingRequest, error)
	SentPendingUserIDs(ctx context.Context, fromUserID int64) (map[int64]bool, error)
	Friends(ctx context.Context, userID int64) ([]storage.PublicProfile, error)
	ListSets(ctx context.Context) ([]domain.Set, error)
	CardCountsBySet(ctx context.Context) ([]storage.SetCount, error)
	CollectedCountsBySet(ctx context.Context, userID int64) ([]storage.SetCount, error)
	LocalizedNames(ctx context.Context, entity, languageCode string) (map[int64]string, error)
}

const searchResultLimit = 25

type service struct {
	store Store
}

func newService(store Store) service {
	return service{store: store}
}

// register validates input, hashes the password, and creates the account.
func (s service) register(ctx context.Context, username, email, password, confirm string) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if err := domain.ValidateUsername(username); err != nil {
		return domain.User{}, err
	}
	if email != "" {
		if err := domain.ValidateEmail(email); err != nil {
			return domain.User{}, err
		}
	}
	if err := domain.ValidatePassword(password); err != nil {
		return domain.User{}, err
	}
	if password != confirm {
		return domain.User{}, apperrors.New(apperrors.CodeUserPasswordMismatch, "passwords do not match")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, apperrors.Wrap(apperrors.CodeUnknown, "hash password", err)
	}
	return s.store.CreateUser(ctx, username, email, string(hash))
}

// authenticate verifies credentials and returns the account.
func (s service) authenticate(ctx context.Context, username, password string) (domain.User, error) {
	user, found, err := s.store.UserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return domain.User{}, err
	}
	if !found {
		return domain.User{}, apperrors.New(apperrors.CodeUserCredentials, "unknown username")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.User{}, apperrors.New(apperrors.CodeUserCredentials, "wrong password")
		}
		return domain.User{}, apperrors.Wrap(apperrors.CodeUserCredentials, "compare password", err)
	}
	return user, nil
}

// changePassword verifies the current password and stores a new hash.
func (s service) changePassword(ctx context.Context, userID int64, current, next, confirm string) error {
	user, found, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.New(apperrors.CodeNotFound, "account not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return apperrors.New(apperrors.CodeUserCredentials, "current password is wrong")
	}
	if err := domain.ValidatePassword(next); err != nil {
		return err
	}
	if next != confirm {
		return apperrors.New(apperrors.CodeUserPasswordMismatch, "passwords do not match")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "hash password", err)
	}
	return s.store.UpdatePasswordHash(ctx, userID, string(hash))
}

// deleteAccount removes the user and everything that hangs off it.
func (s service) deleteAccount(ctx context.Context, userID int64) error {
	_, found, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.New(apperrors.CodeNotFound, "account not found")
	}
	return s.store.DeleteUser(ctx, userID)
}

// account loads the account page data for one user.
func (s service) account(ctx context.Context, userID int64) (webtemplates.AccountView, error) {
	user, found, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return webtemplates.AccountView{}, err
	}
	if !found {
		return webtemplates.AccountView{}, apperrors.New(apperrors.CodeNotFound, "account not found")
	}
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return webtemplates.AccountView{}, err
	}
	return webtemplates.AccountView{
		Username:   user.Username,
		Email:      user.Email,
		FriendCode: profile.FriendCode,
		Public:     profile.Public,
	}, nil
}

// updateProfile stores friend code and visibility.
func (s service) updateProfile(ctx context.Context, userID int64, friendCode string, public bool) error {
	return s.store.UpdateProfile(ctx, domain.Profile{
		UserID:     userID,
		FriendCode: strings.TrimSpace(friendCode),
		Public:     public,
	})
}

// publicProfile loads another user's visible collection summary. Private
// profiles are visible to their owner and accepted friends only.
func (s service) publicProfile(ctx context.Context, username string, viewerID int64, translationLang string) (webtemplates.PublicProfileView, bool, error) {
	user, found, err := s.store.UserByUsername(ctx, strings.TrimSpace(username))
	if err != nil || !found {
		return webtemplates.PublicProfileView{}, found, err
	}
	profile, err := s.store.GetProfile(ctx, user.ID)
	if err != nil {
		return webtemplates.PublicProfileView{}, true, err
	}
	if !profile.Public && user.ID != viewerID {
		isFriend, err := s.areFriends(ctx, user.ID, viewerID)
		if err != nil {
			return webtemplates.PublicProfileView{}, true, err
		}
		if !isFriend {
			return webtemplates.PublicProfileView{}, false, nil
		}
	}

	sets, err := s.collectionSummary(ctx, user.ID, translationLang)
	if err != nil {
		return webtemplates.PublicProfileView{}, true, err
	}
	return webtemplates.PublicProfileView{
		Username:   user.Username,
		FriendCode: profile.FriendCode,
		Sets:       sets,
	}, true, nil
}

func (s service) areFriends(ctx context.Context, userID, viewerID int64) (bool, error) {
	if viewerID <= 0 {
		return false, nil
	}
	friends, err := s.store.Friends(ctx, viewerID)
	if err != nil {
		return false, err
	}
	for _, friend := range friends {
		if friend.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// collectionSummary builds per-set progress for a user's profile page.
func (s service) collectionSummary(ctx context.Context, userID int64, translationLang string) ([]webtemplates.SetProgress, error) {
	sets, err := s.store.ListSets(ctx)
	if err != nil {
		return nil, err
	}
	setNames, err := s.store.LocalizedNames(ctx, storage.EntitySet, translationLang)
	if err != nil {
		return nil, err
	}
	totals, err := s.store.CardCountsBySet(ctx)
	if err != nil {
		return nil, err
	}
	collected, err := s.store.CollectedCountsBySet(ctx, userID)
	if err != nil {
		return nil, err
	}
	totalBySet := make(map[int64]int, len(totals))
	for _, count := range totals {
		totalBySet[count.SetID] = count.Count
	}
	collectedBySet := make(map[int64]int, len(collected))
	for _, count := range collected {
		collectedBySet[count.SetID] = count.Count
	}

	progress := make([]webtemplates.SetProgress, 0, len(sets))
	for _, set := range sets {
		name := set.Name
		if localized, ok := setNames[set.ID]; ok && localized != "" {
			name = localized
		}
		progress = append(progress, webtemplates.SetProgress{
			Code:      set.Code,
			Name:      name,
			Collected: collectedBySet[set.ID],
			Total:     totalBySet[set.ID],
		})
	}
	return progress, nil
}

// searchProfiles finds public profiles and marks already requested users.
func (s service) searchProfiles(ctx context.Context, query string, viewerID int64) ([]webtemplates.ProfileView, error) {
	results, err := s.store.SearchPublicProfiles(ctx, strings.TrimSpace(query), viewerID, searchResultLimit)
	if err != nil {
		return nil, err
	}
	requested := map[int64]bool{}
	if viewerID > 0 {
		requested, err = s.store.SentPendingUserIDs(ctx, viewerID)
		if err != nil {
			return nil, err
		}
	}
	views := make([]webtemplates.ProfileView, 0, len(results))
	for _, result := range results {
		views = append(views, webtemplates.ProfileView{
			UserID:     result.UserID,
			Username:   result.Username,
			FriendCode: result.FriendCode,
			Requested:  requested[result.UserID],
		})
	}
	return views, nil
}

// friends loads pending requests and the accepted friend list.
func (s service) friends(ctx context.Context, userID int64) (webtemplates.FriendsView, error) {
	pending, err := s.store.PendingRequests(ctx, userID)
	if err != nil {
		return webtemplates.FriendsView{}, err
	}
	accepted, err := s.store.Friends(ctx, userID)
	if err != nil {
		return webtemplates.FriendsView{}, err
	}

	view := webtemplates.FriendsView{}
	for _, request := range pending {
		view.Pending = append(view.Pending, webtemplates.ProfileView{
			UserID:      request.FromUserID,
			Username:    request.FromUsername,
			RequestID:   request.RequestID,
			FromRequest: true,
		})
	}
	for _, friend := range accepted {
		view.Friends = append(view.Friends, webtemplates.ProfileView{
			UserID:     friend.UserID,
			Username:   friend.Username,
			FriendCode: friend.FriendCode,
		})
	}
	return view, nil
}
