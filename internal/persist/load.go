package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vampirenirmal/lumina/internal/manuscript"
	"github.com/vampirenirmal/lumina/internal/storage"
)

// LoadBook reads the active book. A missing record yields the template
// book. A record that fails to decode or validate is logged and also
// replaced by the template; only storage failures are returned.
func LoadBook(ctx context.Context, store storage.Store, now time.Time) (manuscript.Book, error) {
	logger := slog.Default().With("component", "autosave")

	data, err := store.Load(ctx, storage.ActiveBookKey)
	if errors.Is(err, storage.ErrNotFound) {
		logger.Info("No saved book, starting from template")
		return manuscript.DefaultBook(now), nil
	}
	if err != nil {
		return manuscript.Book{}, fmt.Errorf("loading active book: %w", err)
	}

	var book manuscript.Book
	if err := json.Unmarshal(data, &book); err != nil {
		logger.Warn("Saved book is malformed, starting from template", "error", err)
		return manuscript.DefaultBook(now), nil
	}
	if err := book.Validate(); err != nil {
		logger.Warn("Saved book is invalid, starting from template", "book_id", book.ID, "error", err)
		return manuscript.DefaultBook(now), nil
	}
	return book, nil
}

// Plan is the subscription tier of a user.
type Plan string

const (
	PlanFree  Plan = "free"
	PlanTrial Plan = "trial"
	PlanPro   Plan = "pro"
)

// Profile is the signed-in user record, stored apart from the book.
type Profile struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Plan        Plan       `json:"plan"`
	TrialEndsAt *time.Time `json:"trialEndsAt,omitempty"`
}

// SaveProfile writes the user profile record.
func SaveProfile(ctx context.Context, store storage.Store, p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	if err := store.Save(ctx, storage.UserProfileKey, data); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// LoadProfile reads the user profile record. The bool is false when no
// user has signed in.
func LoadProfile(ctx context.Context, store storage.Store) (Profile, bool, error) {
	data, err := store.Load(ctx, storage.UserProfileKey)
	if errors.Is(err, storage.ErrNotFound) {
		return Profile{}, false, nil
	}
	if err != nil {
		return Profile{}, false, fmt.Errorf("loading profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, false, fmt.Errorf("decoding profile: %w", err)
	}
	return p, true, nil
}
