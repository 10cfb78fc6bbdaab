package persist

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vampirenirmal/lumina/internal/manuscript"
	"github.com/vampirenirmal/lumina/internal/storage"
)

func TestLoadBook(t *testing.T) {
	saved := manuscript.DefaultBook(epoch)
	saved.ID = "saved"
	saved.Chapters[0].Content = "kept"
	valid, err := json.Marshal(saved)
	require.NoError(t, err)

	noChapters, err := json.Marshal(manuscript.Book{ID: "hollow"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		record []byte
		wantID string
	}{
		{"missing record", nil, "1"},
		{"valid record", valid, "saved"},
		{"malformed record", []byte("{not json"), "1"},
		{"record without chapters", noChapters, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := newMemStore()
			if tt.record != nil {
				mem.records[storage.ActiveBookKey] = tt.record
			}

			book, err := LoadBook(context.Background(), mem, epoch)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, book.ID)
			assert.NotEmpty(t, book.Chapters)
		})
	}
}

func TestLoadBookStorageFailure(t *testing.T) {
	mem := newMemStore()
	mem.loadErr = errors.New("io error")

	_, err := LoadBook(context.Background(), mem, epoch)
	assert.Error(t, err)
}

func TestProfileRoundTrip(t *testing.T) {
	mem := newMemStore()
	ctx := context.Background()

	_, ok, err := LoadProfile(ctx, mem)
	require.NoError(t, err)
	assert.False(t, ok)

	trialEnd := epoch.Add(14 * 24 * time.Hour)
	want := Profile{ID: "u1", Email: "ada@example.com", Name: "Ada", Plan: PlanTrial, TrialEndsAt: &trialEnd}
	require.NoError(t, SaveProfile(ctx, mem, want))

	got, ok, err := LoadProfile(ctx, mem)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Email, got.Email)
	assert.Equal(t, want.Plan, got.Plan)
	require.NotNil(t, got.TrialEndsAt)
	assert.True(t, got.TrialEndsAt.Equal(trialEnd))
}
