package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chachabrian/ridelink-backend/internal/models"
)

// CreateUser registers a new identity. Usernames are unique, compared case-insensitively.
func (s *Store) CreateUser(username, password string, role models.Role, profile models.Profile) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.User{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if !role.Valid() {
		return models.User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	now := s.now()
	user := models.User{
		ID:        s.newID(),
		Username:  username,
		Role:      role,
		Profile:   profile,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if user.Profile.Rating == 0 {
		user.Profile.Rating = 4.5
	}
	if err := user.SetPassword(password); err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	key := strings.ToLower(username)
	if _, taken := s.usernames[key]; taken {
		return models.User{}, fmt.Errorf("%w: username %q already exists", ErrConflict, username)
	}
	s.users[user.ID] = &user
	s.usernames[key] = user.ID
	return user, nil
}

func (s *Store) GetUser(id string) (models.User, error) {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return *user, nil
}

func (s *Store) GetUserByUsername(username string) (models.User, error) {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()

	id, ok := s.usernames[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return models.User{}, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	return *s.users[id], nil
}

// UpdateUserProfile merges profile fields. Identity fields are immutable.
func (s *Store) UpdateUserProfile(id string, patch models.ProfilePatch) (models.User, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	patch.Apply(&user.Profile)
	user.UpdatedAt = s.now()
	return *user, nil
}

// ListUsers returns every user ordered by registration time.
func (s *Store) ListUsers() []models.User {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
