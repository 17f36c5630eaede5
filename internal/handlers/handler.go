// Package handlers is the Telegram side of the bot: it long-polls updates,
// routes them to the dialogue and renders prompts as Telegram messages.
package handlers

import (
	"context"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// botAPI is the part of *tgbotapi.BotAPI the handler uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Dialogue consumes chat input.
type Dialogue interface {
	Start(ctx context.Context, chatID int64) error
	Handle(ctx context.Context, chatID int64, text string) error
}

type Handler struct {
	bot botAPI
	log *slog.Logger

	mu     sync.Mutex
	queues map[int64][]*tgbotapi.Message // a key exists while that chat's worker runs
	wg     sync.WaitGroup
}

func New(bot botAPI, logger *slog.Logger) *Handler {
	return &Handler{
		bot:    bot,
		log:    logger.With("component", "telegram"),
		queues: make(map[int64][]*tgbotapi.Message),
	}
}

// Run long-polls updates until ctx is done, then waits for in-flight messages.
// Messages of one chat are handled in arrival order; chats run concurrently.
func (h *Handler) Run(ctx context.Context, d Dialogue, pollTimeout int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := h.bot.GetUpdatesChan(u)

	h.log.Info("listening for updates")
	defer h.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			h.bot.StopReceivingUpdates()
			h.log.Info("stopped listening for updates")
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			switch {
			case upd.Message != nil:
				h.dispatch(ctx, d, upd.Message)
			case upd.CallbackQuery != nil:
				h.log.Debug("callback query ignored", "update_id", upd.UpdateID)
			}
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, d Dialogue, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	h.mu.Lock()
	defer h.mu.Unlock()
	_, running := h.queues[chatID]
	h.queues[chatID] = append(h.queues[chatID], msg)
	if !running {
		h.wg.Add(1)
		go h.drain(ctx, d, chatID)
	}
}

// drain handles the queued messages of chatID and exits once the queue is empty.
func (h *Handler) drain(ctx context.Context, d Dialogue, chatID int64) {
	defer h.wg.Done()
	for {
		h.mu.Lock()
		q := h.queues[chatID]
		if len(q) == 0 {
			delete(h.queues, chatID)
			h.mu.Unlock()
			return
		}
		msg := q[0]
		h.queues[chatID] = q[1:]
		h.mu.Unlock()

		h.HandleMessage(ctx, d, msg)
	}
}
