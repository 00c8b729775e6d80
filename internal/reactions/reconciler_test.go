package reactions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"photopost/internal/core/domain"
	"photopost/internal/core/ports"
)

type MockSubmissionRepo struct {
	mock.Mock
}

func (m *MockSubmissionRepo) Create(ctx context.Context, sub *domain.Submission) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *MockSubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	args := m.Called(ctx, id)
	var sub *domain.Submission
	if args.Get(0) != nil {
		sub = args.Get(0).(*domain.Submission)
	}
	return sub, args.Error(1)
}

func (m *MockSubmissionRepo) GetByChannelMsgID(ctx context.Context, msgID int64) (*domain.Submission, error) {
	args := m.Called(ctx, msgID)
	var sub *domain.Submission
	if args.Get(0) != nil {
		sub = args.Get(0).(*domain.Submission)
	}
	return sub, args.Error(1)
}

func (m *MockSubmissionRepo) SetModerationMsgID(ctx context.Context, id uuid.UUID, msgID int64) error {
	return m.Called(ctx, id, msgID).Error(0)
}

func (m *MockSubmissionRepo) MarkPublished(ctx context.Context, id uuid.UUID, channelMsgID int64, postedAt time.Time) error {
	return m.Called(ctx, id, channelMsgID, postedAt).Error(0)
}

type MockReactionRepo struct {
	mock.Mock
}

func (m *MockReactionRepo) ListBySubmission(ctx context.Context, submissionID uuid.UUID) ([]domain.ReactionAggregate, error) {
	args := m.Called(ctx, submissionID)
	var aggs []domain.ReactionAggregate
	if args.Get(0) != nil {
		aggs = args.Get(0).([]domain.ReactionAggregate)
	}
	return aggs, args.Error(1)
}

func (m *MockReactionRepo) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *MockReactionRepo) Upsert(ctx context.Context, submissionID uuid.UUID, reactions []domain.RemoteReaction) error {
	return m.Called(ctx, submissionID, reactions).Error(0)
}

func strPtr(s string) *string { return &s }

const channelID = int64(-100500)

func newReconcilerForTest(subs *MockSubmissionRepo, reacts *MockReactionRepo) *Reconciler {
	return NewReconciler(subs, reacts, channelID, zerolog.Nop())
}

func TestReconciler_DeletesStaleAndUpsertsRemote(t *testing.T) {
	subs := new(MockSubmissionRepo)
	reacts := new(MockReactionRepo)
	r := newReconcilerForTest(subs, reacts)

	sub := &domain.Submission{ID: uuid.New()}
	staleID := uuid.New()
	stored := []domain.ReactionAggregate{
		{ID: staleID, SubmissionID: sub.ID, Kind: domain.ReactionEmoji, Content: strPtr("\U0001F44D"), Count: 3},
		{ID: uuid.New(), SubmissionID: sub.ID, Kind: domain.ReactionPaid, Count: 1},
	}

	subs.On("GetByChannelMsgID", mock.Anything, int64(1001)).Return(sub, nil)
	reacts.On("ListBySubmission", mock.Anything, sub.ID).Return(stored, nil)
	reacts.On("DeleteByIDs", mock.Anything, []uuid.UUID{staleID}).Return(nil)
	reacts.On("Upsert", mock.Anything, sub.ID, mock.AnythingOfType("[]domain.RemoteReaction")).Return(nil)

	err := r.HandleReactions(context.Background(), channelID, 1001, []ports.ReactionDescriptor{
		{Type: "paid", Count: 2},
		{Type: "emoji", Emoji: "❤", Count: 5},
	})

	require.NoError(t, err)
	reacts.AssertExpectations(t)
}

func TestReconciler_EmptySnapshotClearsEverything(t *testing.T) {
	subs := new(MockSubmissionRepo)
	reacts := new(MockReactionRepo)
	r := newReconcilerForTest(subs, reacts)

	sub := &domain.Submission{ID: uuid.New()}
	aID, bID := uuid.New(), uuid.New()
	stored := []domain.ReactionAggregate{
		{ID: aID, SubmissionID: sub.ID, Kind: domain.ReactionEmoji, Content: strPtr("\U0001F44D"), Count: 3},
		{ID: bID, SubmissionID: sub.ID, Kind: domain.ReactionPaid, Count: 1},
	}

	subs.On("GetByChannelMsgID", mock.Anything, int64(1001)).Return(sub, nil)
	reacts.On("ListBySubmission", mock.Anything, sub.ID).Return(stored, nil)
	reacts.On("DeleteByIDs", mock.Anything, []uuid.UUID{aID, bID}).Return(nil)

	err := r.HandleReactions(context.Background(), channelID, 1001, nil)

	require.NoError(t, err)
	reacts.AssertExpectations(t)
	reacts.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciler_UntrackedMessageIsIgnored(t *testing.T) {
	subs := new(MockSubmissionRepo)
	reacts := new(MockReactionRepo)
	r := newReconcilerForTest(subs, reacts)

	subs.On("GetByChannelMsgID", mock.Anything, int64(999)).Return(nil, nil)

	err := r.HandleReactions(context.Background(), channelID, 999, []ports.ReactionDescriptor{
		{Type: "emoji", Emoji: "\U0001F44D", Count: 1},
	})

	require.NoError(t, err)
	reacts.AssertNotCalled(t, "ListBySubmission", mock.Anything, mock.Anything)
}

func TestReconciler_ForeignChatIsIgnored(t *testing.T) {
	subs := new(MockSubmissionRepo)
	reacts := new(MockReactionRepo)
	r := newReconcilerForTest(subs, reacts)

	err := r.HandleReactions(context.Background(), 123, 1001, []ports.ReactionDescriptor{
		{Type: "emoji", Emoji: "\U0001F44D", Count: 1},
	})

	require.NoError(t, err)
	subs.AssertNotCalled(t, "GetByChannelMsgID", mock.Anything, mock.Anything)
}

func TestReconciler_MatchingSnapshotDeletesNothing(t *testing.T) {
	subs := new(MockSubmissionRepo)
	reacts := new(MockReactionRepo)
	r := newReconcilerForTest(subs, reacts)

	sub := &domain.Submission{ID: uuid.New()}
	stored := []domain.ReactionAggregate{
		{ID: uuid.New(), SubmissionID: sub.ID, Kind: domain.ReactionEmoji, Content: strPtr("\U0001F44D"), Count: 3},
	}

	subs.On("GetByChannelMsgID", mock.Anything, int64(1001)).Return(sub, nil)
	reacts.On("ListBySubmission", mock.Anything, sub.ID).Return(stored, nil)
	reacts.On("Upsert", mock.Anything, sub.ID, mock.AnythingOfType("[]domain.RemoteReaction")).Return(nil)

	err := r.HandleReactions(context.Background(), channelID, 1001, []ports.ReactionDescriptor{
		{Type: "emoji", Emoji: "\U0001F44D", Count: 9},
	})

	require.NoError(t, err)
	reacts.AssertExpectations(t)
	reacts.AssertNotCalled(t, "DeleteByIDs", mock.Anything, mock.Anything)
}
