package telegram

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"photopost/internal/core/domain"
	"photopost/internal/core/ports"
)

// --- Mocks ---

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Upsert(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	args := m.Called(ctx, telegramID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
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

type MockCommandHandler struct {
	mock.Mock
	command string
}

func (m *MockCommandHandler) Command() string { return m.command }

func (m *MockCommandHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	return m.Called(ctx, update).Error(0)
}

type MockMessageHandler struct {
	mock.Mock
}

func (m *MockMessageHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	return m.Called(ctx, update).Error(0)
}

type MockCallbackHandler struct {
	mock.Mock
}

func (m *MockCallbackHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	return m.Called(ctx, update).Error(0)
}

type MockReactionHandler struct {
	mock.Mock
}

func (m *MockReactionHandler) HandleReactions(ctx context.Context, chatID int64, messageID int64, reactions []ports.ReactionDescriptor) error {
	return m.Called(ctx, chatID, messageID, reactions).Error(0)
}

// --- Helpers ---

func newRouterForTest(users *MockUserRepo, bans *MockBanRepo) *Router {
	return NewRouter(users, bans, zerolog.Nop())
}

func messageUpdate(userID int64, text string) *Update {
	entities := []tgbotapi.MessageEntity{}
	if len(text) > 0 && text[0] == '/' {
		entities = append(entities, tgbotapi.MessageEntity{Type: "bot_command", Offset: 0, Length: len(text)})
	}
	return &Update{
		Update: tgbotapi.Update{
			Message: &tgbotapi.Message{
				MessageID: 10,
				Chat:      &tgbotapi.Chat{ID: userID},
				From:      &tgbotapi.User{ID: userID, UserName: "someone", FirstName: "Some"},
				Text:      text,
				Entities:  entities,
			},
		},
	}
}

// --- Tests ---

func TestRouter_RoutesCommand(t *testing.T) {
	users := new(MockUserRepo)
	bans := new(MockBanRepo)
	router := newRouterForTest(users, bans)

	handler := &MockCommandHandler{command: "start"}
	router.RegisterCommandHandler(handler)

	bans.On("Exists", mock.Anything, int64(42)).Return(false, nil)
	users.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	handler.On("Handle", mock.Anything, mock.MatchedBy(func(u *ports.BotUpdate) bool {
		return u.Command == "start" && u.UserID == 42
	})).Return(nil)

	router.HandleUpdate(context.Background(), messageUpdate(42, "/start"))

	handler.AssertExpectations(t)
}

func TestRouter_DropsBannedUser(t *testing.T) {
	users := new(MockUserRepo)
	bans := new(MockBanRepo)
	router := newRouterForTest(users, bans)

	msgHandler := new(MockMessageHandler)
	router.SetMessageHandler(msgHandler)

	bans.On("Exists", mock.Anything, int64(42)).Return(true, nil)

	router.HandleUpdate(context.Background(), messageUpdate(42, "hello"))

	msgHandler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestRouter_RoutesPlainMessage(t *testing.T) {
	users := new(MockUserRepo)
	bans := new(MockBanRepo)
	router := newRouterForTest(users, bans)

	msgHandler := new(MockMessageHandler)
	router.SetMessageHandler(msgHandler)

	bans.On("Exists", mock.Anything, int64(42)).Return(false, nil)
	users.On("Upsert", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.TelegramID == 42 && u.Username != nil && *u.Username == "someone"
	})).Return(nil)
	msgHandler.On("Handle", mock.Anything, mock.MatchedBy(func(u *ports.BotUpdate) bool {
		return u.Text == "hello" && u.Command == ""
	})).Return(nil)

	router.HandleUpdate(context.Background(), messageUpdate(42, "hello"))

	msgHandler.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestRouter_RoutesCallback(t *testing.T) {
	users := new(MockUserRepo)
	bans := new(MockBanRepo)
	router := newRouterForTest(users, bans)

	cbHandler := new(MockCallbackHandler)
	router.SetCallbackHandler(cbHandler)

	bans.On("Exists", mock.Anything, int64(42)).Return(false, nil)
	cbHandler.On("Handle", mock.Anything, mock.MatchedBy(func(u *ports.BotUpdate) bool {
		return u.CallbackID == "cb-1" && u.CallbackData != nil && *u.CallbackData == "payload"
	})).Return(nil)

	router.HandleUpdate(context.Background(), &Update{
		Update: tgbotapi.Update{
			CallbackQuery: &tgbotapi.CallbackQuery{
				ID:      "cb-1",
				From:    &tgbotapi.User{ID: 42},
				Data:    "payload",
				Message: &tgbotapi.Message{MessageID: 5, Chat: &tgbotapi.Chat{ID: 99}},
			},
		},
	})

	cbHandler.AssertExpectations(t)
}

func TestRouter_RoutesReactionSnapshot(t *testing.T) {
	users := new(MockUserRepo)
	bans := new(MockBanRepo)
	router := newRouterForTest(users, bans)

	reactions := new(MockReactionHandler)
	router.SetReactionHandler(reactions)

	reactions.On("HandleReactions", mock.Anything, int64(-100500), int64(1001), mock.MatchedBy(func(ds []ports.ReactionDescriptor) bool {
		return len(ds) == 2 && ds[0].Type == "emoji" && ds[0].Emoji == "\U0001F44D" && ds[0].Count == 3 &&
			ds[1].Type == "paid" && ds[1].Count == 1
	})).Return(nil)

	router.HandleUpdate(context.Background(), &Update{
		MessageReactionCount: &MessageReactionCountUpdated{
			Chat:      tgbotapi.Chat{ID: -100500},
			MessageID: 1001,
			Reactions: []ReactionCount{
				{Type: ReactionType{Type: "emoji", Emoji: "\U0001F44D"}, TotalCount: 3},
				{Type: ReactionType{Type: "paid"}, TotalCount: 1},
			},
		},
	})

	reactions.AssertExpectations(t)
	// Snapshots never touch the per-user paths.
	bans.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
}

func TestRouter_UnknownCommandIsIgnored(t *testing.T) {
	users := new(MockUserRepo)
	bans := new(MockBanRepo)
	router := newRouterForTest(users, bans)

	msgHandler := new(MockMessageHandler)
	router.SetMessageHandler(msgHandler)

	bans.On("Exists", mock.Anything, int64(42)).Return(false, nil)
	users.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	router.HandleUpdate(context.Background(), messageUpdate(42, "/frobnicate"))

	msgHandler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}
