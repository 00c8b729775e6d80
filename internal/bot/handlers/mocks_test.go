package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"photopost/internal/core/domain"
	"photopost/internal/core/ports"
)

type MockBotClient struct {
	mock.Mock
}

func (m *MockBotClient) SendMessage(ctx context.Context, params ports.SendMessageParams) (int, error) {
	args := m.Called(ctx, params)
	return args.Int(0), args.Error(1)
}

func (m *MockBotClient) SendPhoto(ctx context.Context, params ports.SendPhotoParams) (int, error) {
	args := m.Called(ctx, params)
	return args.Int(0), args.Error(1)
}

func (m *MockBotClient) SendDocument(ctx context.Context, params ports.SendDocumentParams) (int, error) {
	args := m.Called(ctx, params)
	return args.Int(0), args.Error(1)
}

func (m *MockBotClient) SendMediaGroup(ctx context.Context, params ports.SendMediaGroupParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *MockBotClient) AnswerCallbackQuery(ctx context.Context, params ports.AnswerCallbackParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *MockBotClient) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	return m.Called(ctx, chatID, messageID).Error(0)
}

func (m *MockBotClient) DownloadFile(ctx context.Context, fileID string, destPath string) error {
	return m.Called(ctx, fileID, destPath).Error(0)
}

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

type MockBanRepo struct {
	mock.Mock
}

func (m *MockBanRepo) Add(ctx context.Context, userID int64, reason *string) error {
	return m.Called(ctx, userID, reason).Error(0)
}

func (m *MockBanRepo) Exists(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type MockWorkQueue struct {
	mock.Mock
}

func (m *MockWorkQueue) Enqueue(ctx context.Context, msg domain.QueueMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockWorkQueue) Lease(ctx context.Context, leaseFor time.Duration) (*ports.QueueItem, error) {
	args := m.Called(ctx, leaseFor)
	var item *ports.QueueItem
	if args.Get(0) != nil {
		item = args.Get(0).(*ports.QueueItem)
	}
	return item, args.Error(1)
}

func (m *MockWorkQueue) Complete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockWorkQueue) DeadLetter(ctx context.Context, item *ports.QueueItem, cause error) error {
	return m.Called(ctx, item, cause).Error(0)
}

// memoryDialogueStore backs the real dialogue machine in handler tests.
type memoryDialogueStore struct {
	states map[string]domain.DialogueState
}

func newMemoryDialogueStore() *memoryDialogueStore {
	return &memoryDialogueStore{states: make(map[string]domain.DialogueState)}
}

func dialogueKey(userID int64, namespace string) string {
	return fmt.Sprintf("%s/%d", namespace, userID)
}

func (s *memoryDialogueStore) Get(_ context.Context, userID int64, namespace string) (domain.DialogueState, error) {
	return s.states[dialogueKey(userID, namespace)], nil
}

func (s *memoryDialogueStore) Set(_ context.Context, userID int64, namespace string, state domain.DialogueState) error {
	s.states[dialogueKey(userID, namespace)] = state
	return nil
}

func (s *memoryDialogueStore) Clear(_ context.Context, userID int64, namespace string) error {
	delete(s.states, dialogueKey(userID, namespace))
	return nil
}

func strPtr(s string) *string { return &s }
