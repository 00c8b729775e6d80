package telegram

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const (
	longPollTimeout = 30 * time.Second
	updateQueueSize = 100
)

// allowedUpdates names every update type the bot consumes. Asking Telegram
// for exactly these is what turns reaction-count delivery on.
var allowedUpdates = []string{"message", "callback_query", "message_reaction_count"}

// BotServer runs the long-polling loop and fans updates out to a worker pool.
// The library's own polling channel cannot be used here: it drops the
// reaction-count updates it does not know about.
type BotServer struct {
	api     *tgbotapi.BotAPI
	router  *Router
	workers int
	log     zerolog.Logger
}

// NewBotServer creates a new server instance
func NewBotServer(
	api *tgbotapi.BotAPI,
	router *Router,
	workers int,
	baseLogger zerolog.Logger,
) *BotServer {
	if workers < 1 {
		workers = 1
	}
	return &BotServer{
		api:     api,
		router:  router,
		workers: workers,
		log:     baseLogger.With().Str("component", "bot_server").Logger(),
	}
}

// Start begins long polling and blocks until the context is cancelled.
func (s *BotServer) Start(ctx context.Context) error {
	s.log.Info().Int("workers", s.workers).Msg("Starting bot in POLLING mode")

	// Polling and an active webhook are mutually exclusive.
	deleteWebhookConfig := tgbotapi.DeleteWebhookConfig{DropPendingUpdates: false}
	if _, err := s.api.Request(deleteWebhookConfig); err != nil {
		s.log.Warn().Err(err).Msg("Failed to delete webhook (continuing anyway)")
	}

	jobs := make(chan Update, updateQueueSize)

	var wg sync.WaitGroup
	for w := 1; w <= s.workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			log := s.router.log.With().Int("worker_id", id).Logger()
			log.Info().Msg("Starting polling worker")
			for {
				select {
				case <-ctx.Done():
					log.Info().Msg("Stopping polling worker (context done)")
					return
				case job, ok := <-jobs:
					if !ok {
						log.Info().Msg("Stopping polling worker (channel closed)")
						return
					}
					s.router.HandleUpdate(context.Background(), &job)
				}
			}
		}(w)
	}

	s.log.Info().Msg("Polling update listener started")

	offset := 0
	for {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			s.log.Info().Msg("Polling stopped gracefully")
			return nil
		default:
		}

		updates, err := s.fetchUpdates(offset)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			s.log.Error().Err(err).Msg("getUpdates failed, backing off")
			select {
			case <-ctx.Done():
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			jobs <- update
		}
	}
}

// fetchUpdates performs one getUpdates call with the extended update type.
func (s *BotServer) fetchUpdates(offset int) ([]Update, error) {
	allowed, err := json.Marshal(allowedUpdates)
	if err != nil {
		return nil, err
	}

	params := tgbotapi.Params{}
	params.AddNonZero("offset", offset)
	params.AddNonZero("timeout", int(longPollTimeout.Seconds()))
	params["allowed_updates"] = string(allowed)

	resp, err := s.api.MakeRequest("getUpdates", params)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(resp.Result, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}
