package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vampirenirmal/lumina/internal/manuscript"
	"github.com/vampirenirmal/lumina/internal/persist"
	"github.com/vampirenirmal/lumina/internal/storage"
)

// ErrInvalidProfile is returned by SignIn for a profile without a name or email.
var ErrInvalidProfile = errors.New("profile needs a name and an email")

// SignIn stores the user profile and credits the book to the user.
func (s *Session) SignIn(ctx context.Context, p persist.Profile) (persist.Profile, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	if p.Name == "" || p.Email == "" {
		return persist.Profile{}, ErrInvalidProfile
	}
	if p.ID == "" {
		p.ID = s.newID()
	}
	if p.Plan == "" {
		p.Plan = persist.PlanFree
	}

	if err := persist.SaveProfile(ctx, s.storage, p); err != nil {
		return persist.Profile{}, err
	}

	s.lock()
	defer s.unlock()
	s.profile = &p
	s.store.UpdateMetadata(manuscript.MetadataPatch{
		Author:          &p.Name,
		CopyrightHolder: &p.Name,
	})
	s.logger.Info("User signed in", "user_id", p.ID, "plan", p.Plan)
	return p, nil
}

// SignOut forgets the profile. The book is kept.
func (s *Session) SignOut(ctx context.Context) error {
	if err := s.storage.Delete(ctx, storage.UserProfileKey); err != nil {
		return fmt.Errorf("removing profile: %w", err)
	}
	s.lock()
	defer s.unlock()
	s.profile = nil
	return nil
}

// Profile returns the signed-in user, if any.
func (s *Session) Profile() (persist.Profile, bool) {
	s.lock()
	defer s.unlock()
	if s.profile == nil {
		return persist.Profile{}, false
	}
	return *s.profile, true
}
