package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"roofbot/internal/models"
)

const cmdStart = "start"

// HandleMessage routes one incoming message. /start (re)opens the
// conversation; any other text, unknown commands included, is an answer.
func (h *Handler) HandleMessage(ctx context.Context, d Dialogue, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	log := h.log.With("chat_id", chatID)

	var err error
	switch {
	case msg.IsCommand() && msg.Command() == cmdStart:
		log.Debug("conversation started")
		err = d.Start(ctx, chatID)
	case msg.Text != "":
		err = d.Handle(ctx, chatID, msg.Text)
	default:
		log.Debug("non-text message ignored", "message_id", msg.MessageID)
		return
	}
	if err != nil {
		log.Error("handle message", "error", err)
	}
}

// SendPrompt renders p as a Telegram message with a one-time reply keyboard.
func (h *Handler) SendPrompt(_ context.Context, chatID int64, p models.Prompt) error {
	msg := tgbotapi.NewMessage(chatID, p.Text)
	if p.Format == models.FormatMarkdownV2 {
		msg.ParseMode = tgbotapi.ModeMarkdownV2
	}
	if kb, ok := buildKeyboard(p.Keyboard); ok {
		msg.ReplyMarkup = kb
	}
	_, err := h.bot.Send(msg)
	return err
}

func buildKeyboard(rows [][]string) (tgbotapi.ReplyKeyboardMarkup, bool) {
	var buttons [][]tgbotapi.KeyboardButton
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		var line []tgbotapi.KeyboardButton
		for _, label := range row {
			line = append(line, tgbotapi.NewKeyboardButton(label))
		}
		buttons = append(buttons, tgbotapi.NewKeyboardButtonRow(line...))
	}
	if len(buttons) == 0 {
		return tgbotapi.ReplyKeyboardMarkup{}, false
	}
	kb := tgbotapi.NewOneTimeReplyKeyboard(buttons...)
	kb.ResizeKeyboard = true
	return kb, true
}
