package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"photopost/internal/core/domain"
)

func strptr(s string) *string { return &s }

func TestReactionRepository_UpsertReplacesCountOnNaturalKey(t *testing.T) {
	nopLogger := zerolog.Nop()
	repo := NewReactionRepository(testDB, nopLogger)
	ctx := context.Background()

	sub := createTestSubmission(t)

	first := []domain.RemoteReaction{
		{Kind: domain.ReactionEmoji, Content: strptr("👍"), Count: 3},
		{Kind: domain.ReactionPaid, Count: 1},
	}
	if err := repo.Upsert(ctx, sub.ID, first); err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}

	// Same descriptors, new counts: rows must be replaced, not duplicated.
	second := []domain.RemoteReaction{
		{Kind: domain.ReactionEmoji, Content: strptr("👍"), Count: 7},
		{Kind: domain.ReactionPaid, Count: 2},
	}
	if err := repo.Upsert(ctx, sub.ID, second); err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}

	stored, err := repo.ListBySubmission(ctx, sub.ID)
	if err != nil {
		t.Fatalf("ListBySubmission failed: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("Expected 2 aggregates, got %d", len(stored))
	}

	counts := map[domain.ReactionKey]int64{}
	for _, agg := range stored {
		counts[agg.Key()] = agg.Count
	}
	if got := counts[domain.NewReactionKey(domain.ReactionEmoji, strptr("👍"))]; got != 7 {
		t.Errorf("Emoji count not replaced: got %d, want 7", got)
	}
	if got := counts[domain.NewReactionKey(domain.ReactionPaid, nil)]; got != 2 {
		t.Errorf("Paid count not replaced: got %d, want 2", got)
	}
}

func TestReactionRepository_DeleteByIDs(t *testing.T) {
	nopLogger := zerolog.Nop()
	repo := NewReactionRepository(testDB, nopLogger)
	ctx := context.Background()

	sub := createTestSubmission(t)

	reactions := []domain.RemoteReaction{
		{Kind: domain.ReactionEmoji, Content: strptr("🔥"), Count: 2},
		{Kind: domain.ReactionCustomEmoji, Content: strptr("5368324170671202286"), Count: 1},
	}
	if err := repo.Upsert(ctx, sub.ID, reactions); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	stored, err := repo.ListBySubmission(ctx, sub.ID)
	if err != nil || len(stored) != 2 {
		t.Fatalf("Expected 2 aggregates, got %d (err=%v)", len(stored), err)
	}

	if err := repo.DeleteByIDs(ctx, []uuid.UUID{stored[0].ID}); err != nil {
		t.Fatalf("DeleteByIDs failed: %v", err)
	}

	remaining, err := repo.ListBySubmission(ctx, sub.ID)
	if err != nil {
		t.Fatalf("ListBySubmission failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("Expected 1 aggregate after delete, got %d", len(remaining))
	}
	if remaining[0].ID == stored[0].ID {
		t.Error("Deleted aggregate is still stored")
	}
}
