package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"coliseumAPI/internal/docstore"
	"coliseumAPI/internal/user"
	"coliseumAPI/utils"

	"go.uber.org/zap"
)

const (
	usersCollection = "users"

	// directoryPageSize is the page size when walking the whole directory.
	directoryPageSize = 500
	searchResultLimit = 20
)

type UserService struct {
	store docstore.Store
	log   *zap.SugaredLogger
	now   func() time.Time
}

func NewUserService(store docstore.Store, log *zap.SugaredLogger) *UserService {
	return &UserService{store: store, log: log, now: time.Now}
}

func decodeUser(snap docstore.Snapshot) (*user.User, error) {
	var u user.User
	if err := snap.DataTo(&u); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", snap.ID(), err)
	}
	u.ID = snap.ID()
	return &u, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*user.User, error) {
	snap, err := s.store.Get(ctx, usersCollection, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return decodeUser(snap)
}

// UpdateProfile merges the non-empty fields into the caller's document, creating it
// on first use. Email and phone are stored normalized so the matcher can query them.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *user.UpdateProfileRequest) (*user.User, error) {
	fields := map[string]any{"updatedAt": s.now()}

	if name := strings.TrimSpace(req.DisplayName); name != "" {
		fields["displayName"] = name
	}
	if req.Email != "" {
		email := utils.NormalizeEmail(req.Email)
		if email == "" {
			return nil, fmt.Errorf("invalid email %q", req.Email)
		}
		fields["email"] = email
	}
	if req.Phone != "" {
		fields["phone"] = utils.NormalizePhone(req.Phone)
		fields["phoneLast10"] = utils.PhoneLast10(req.Phone)
	}
	if req.ImageURL != "" {
		fields["imageUrl"] = req.ImageURL
	}

	existing, err := s.GetUser(ctx, userID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if existing == nil {
		fields["createdAt"] = s.now()
	}

	if err := s.store.Update(ctx, usersCollection, userID, fields); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.GetUser(ctx, userID)
}

// SearchUsers matches an exact email when the query looks like one, otherwise a
// case-insensitive display name prefix. The caller is never included.
func (s *UserService) SearchUsers(ctx context.Context, callerID, query string) ([]user.PublicProfile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []user.PublicProfile{}, nil
	}

	var candidates []user.User
	if email := utils.NormalizeEmail(query); email != "" {
		found, err := s.FindByEmails(ctx, []string{email})
		if err != nil {
			return nil, err
		}
		candidates = found
	} else {
		prefix := strings.ToLower(query)
		err := s.EachUser(ctx, func(u user.User) error {
			if strings.HasPrefix(strings.ToLower(u.DisplayName), prefix) {
				candidates = append(candidates, u)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return strings.ToLower(candidates[i].DisplayName) < strings.ToLower(candidates[j].DisplayName)
	})

	results := make([]user.PublicProfile, 0, len(candidates))
	for _, u := range candidates {
		if u.ID == callerID {
			continue
		}
		results = append(results, user.PublicProfile{ID: u.ID, DisplayName: u.Name(), ImageURL: u.ImageURL})
		if len(results) == searchResultLimit {
			break
		}
	}
	return results, nil
}

// FindByEmails runs one "in" query. Callers batch to docstore.MaxInValues.
func (s *UserService) FindByEmails(ctx context.Context, emails []string) ([]user.User, error) {
	return s.findIn(ctx, "email", emails)
}

// FindByPhones matches on the stored last 10 digits.
func (s *UserService) FindByPhones(ctx context.Context, last10 []string) ([]user.User, error) {
	return s.findIn(ctx, "phoneLast10", last10)
}

func (s *UserService) findIn(ctx context.Context, field string, values []string) ([]user.User, error) {
	if len(values) == 0 {
		return nil, nil
	}
	if len(values) > docstore.MaxInValues {
		return nil, fmt.Errorf("too many values for %s lookup: %d", field, len(values))
	}

	snaps, err := s.store.Query(ctx, docstore.Query{
		Collection: usersCollection,
		Filters:    []docstore.Filter{docstore.In(field, values)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query users by %s: %w", field, err)
	}
	return decodeUsers(snaps)
}

// EachUser walks the whole users collection page by page.
func (s *UserService) EachUser(ctx context.Context, fn func(user.User) error) error {
	err := docstore.Each(ctx, s.store, docstore.Query{Collection: usersCollection}, directoryPageSize, func(snap docstore.Snapshot) error {
		u, err := decodeUser(snap)
		if err != nil {
			return err
		}
		return fn(*u)
	})
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	return nil
}

func decodeUsers(snaps []docstore.Snapshot) ([]user.User, error) {
	users := make([]user.User, 0, len(snaps))
	for _, snap := range snaps {
		u, err := decodeUser(snap)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}
