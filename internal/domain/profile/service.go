package profile

import (
	"sync"
	"time"
)

// Defaults for first-time users.
const (
	DefaultDisplayName = "User"
	DefaultTheme       = "light"
)

// UserProfile holds per-user display settings and free-form preferences.
type UserProfile struct {
	UserID      string         `json:"userId"`
	DisplayName string         `json:"displayName"`
	Email       string         `json:"email"`
	Theme       string         `json:"theme"`
	Preferences map[string]any `json:"preferences"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Service manages user profiles in memory.
type Service struct {
	mu       sync.Mutex
	profiles map[string]UserProfile
	now      func() time.Time
}

// NewService creates an empty profile service.
func NewService() *Service {
	return &Service{
		profiles: make(map[string]UserProfile),
		now:      time.Now,
	}
}

// GetOrCreate returns the user's profile, materializing a default one on first
// access so CreatedAt stays stable across reads.
func (s *Service) GetOrCreate(userID string) UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.profiles[userID]; ok {
		return existing
	}

	now := s.now()
	created := UserProfile{
		UserID:      userID,
		DisplayName: DefaultDisplayName,
		Theme:       DefaultTheme,
		Preferences: map[string]any{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.profiles[userID] = created
	return created
}

// Update replaces the profile wholesale. The user ID and original creation
// time are authoritative on the server side and survive the replacement.
func (s *Service) Update(userID string, updated UserProfile) UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	updated.UserID = userID
	updated.UpdatedAt = now
	if existing, ok := s.profiles[userID]; ok {
		updated.CreatedAt = existing.CreatedAt
	} else {
		updated.CreatedAt = now
	}
	if updated.Preferences == nil {
		updated.Preferences = map[string]any{}
	}

	s.profiles[userID] = updated
	return updated
}
