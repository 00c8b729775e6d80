package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"photopost/internal/core/domain"
)

func TestWorkQueue_EnqueueLeaseComplete(t *testing.T) {
	nopLogger := zerolog.Nop()
	queue := NewWorkQueue(testDB, nopLogger)
	ctx := context.Background()

	reason := "blurry"
	msg := domain.QueueMessage{
		ID:        uuid.New(),
		Operation: domain.OperationDecline,
		Reason:    &reason,
	}

	if err := queue.Enqueue(ctx, msg); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	item, err := queue.Lease(ctx, time.Minute)
	if err != nil {
		t.Fatalf("Lease failed: %v", err)
	}
	if item == nil {
		t.Fatal("Lease returned nothing, but a job was enqueued")
	}
	if item.Message.ID != msg.ID {
		t.Errorf("Leased wrong job: got %s, want %s", item.Message.ID, msg.ID)
	}
	if item.Message.Operation != domain.OperationDecline {
		t.Errorf("Operation mismatch: got %s", item.Message.Operation)
	}
	if item.Message.Reason == nil || *item.Message.Reason != reason {
		t.Errorf("Reason did not round-trip: got %v", item.Message.Reason)
	}

	// The job is claimed: a second lease must not see it.
	second, err := queue.Lease(ctx, time.Minute)
	if err != nil {
		t.Fatalf("Second lease failed: %v", err)
	}
	if second != nil && second.ID == item.ID {
		t.Error("Second lease claimed a job that is still leased")
	}
	if second != nil {
		_ = queue.Complete(ctx, second.ID)
	}

	if err := queue.Complete(ctx, item.ID); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
}

func TestWorkQueue_ExpiredLeaseIsReclaimable(t *testing.T) {
	nopLogger := zerolog.Nop()
	queue := NewWorkQueue(testDB, nopLogger)
	ctx := context.Background()

	msg := domain.QueueMessage{ID: uuid.New(), Operation: domain.OperationApprove}
	if err := queue.Enqueue(ctx, msg); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	item, err := queue.Lease(ctx, 50*time.Millisecond)
	if err != nil || item == nil {
		t.Fatalf("First lease failed: item=%v err=%v", item, err)
	}

	// Simulated crash: the consumer never completes. After the lease
	// expires the job must be claimable again.
	time.Sleep(100 * time.Millisecond)

	reclaimed, err := queue.Lease(ctx, time.Minute)
	if err != nil {
		t.Fatalf("Re-lease failed: %v", err)
	}
	if reclaimed == nil {
		t.Fatal("Expired lease was not reclaimable")
	}
	if reclaimed.ID != item.ID {
		t.Errorf("Reclaimed a different job: got %s, want %s", reclaimed.ID, item.ID)
	}

	if err := queue.Complete(ctx, reclaimed.ID); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
}

func TestWorkQueue_DeadLetterRecordsCause(t *testing.T) {
	nopLogger := zerolog.Nop()
	queue := NewWorkQueue(testDB, nopLogger)
	ctx := context.Background()

	msg := domain.QueueMessage{ID: uuid.New(), Operation: domain.OperationApprove}
	if err := queue.Enqueue(ctx, msg); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	item, err := queue.Lease(ctx, time.Minute)
	if err != nil || item == nil {
		t.Fatalf("Lease failed: item=%v err=%v", item, err)
	}

	if err := queue.DeadLetter(ctx, item, errors.New("conversion kept failing")); err != nil {
		t.Fatalf("DeadLetter failed: %v", err)
	}
	if err := queue.Complete(ctx, item.ID); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	var cause string
	err = testDB.pool.QueryRow(ctx, "SELECT error FROM queue_dead WHERE id = $1", item.ID).Scan(&cause)
	if err != nil {
		t.Fatalf("Dead-letter row missing: %v", err)
	}
	if cause != "conversion kept failing" {
		t.Errorf("Cause mismatch: got %q", cause)
	}

	_, _ = testDB.pool.Exec(ctx, "DELETE FROM queue_dead WHERE id = $1", item.ID)
}
