package telegram

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/review-relay/internal/moderation"
	"github.com/getsentry/sentry-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	answerMalformed = "Unknown action"
	answerFailed    = "Could not apply the decision, try again"
)

// Decider applies a moderation decision. It is satisfied by
// services.ModerationService.
type Decider interface {
	Decide(ctx context.Context, action moderation.Action) (moderation.Outcome, error)
}

// Updater is the long-polling part of *tgbotapi.BotAPI.
type Updater interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Listener consumes callback queries from the moderation chat one at a time.
type Listener struct {
	updates     Updater
	client      *Client
	decider     Decider
	pollTimeout time.Duration
}

func NewListener(updates Updater, client *Client, decider Decider, pollTimeout time.Duration) *Listener {
	return &Listener{
		updates:     updates,
		client:      client,
		decider:     decider,
		pollTimeout: pollTimeout,
	}
}

// Run polls for updates until ctx is cancelled or the update channel closes.
func (l *Listener) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = int(l.pollTimeout / time.Second)
	cfg.AllowedUpdates = []string{"callback_query"}

	updates := l.updates.GetUpdatesChan(cfg)
	defer l.updates.StopReceivingUpdates()

	slog.Info("moderation listener started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("moderation listener stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.CallbackQuery != nil {
				l.HandleCallback(ctx, update.CallbackQuery)
			}
		}
	}
}

// HandleCallback decodes the callback data, applies the decision, edits the
// originating message and always answers the callback. Failures are logged.
func (l *Listener) HandleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	action, err := moderation.ParseAction(query.Data)
	if err != nil {
		slog.Warn("ignoring malformed moderation callback", "data", query.Data, "error", err)
		l.answer(query.ID, answerMalformed)
		return
	}

	outcome, err := l.decider.Decide(ctx, action)
	if err != nil {
		slog.Error("moderation decision failed", "review_id", action.ReviewID, "action", string(action.Kind), "error", err.Error())
		if !errors.Is(err, context.Canceled) {
			sentry.CaptureException(err)
		}
		l.answer(query.ID, answerFailed)
		return
	}

	if msg := query.Message; msg != nil && msg.Chat != nil {
		if err := l.client.EditMessage(msg.Chat.ID, msg.MessageID, OutcomeText(outcome)); err != nil {
			slog.Error("failed to edit moderation message", "review_id", action.ReviewID, "action", "edit_message", "error", err.Error())
		}
	}
	l.answer(query.ID, "")

	slog.Info("moderation callback handled", "review_id", action.ReviewID, "decision", string(action.Kind), "outcome", outcome.String())
}

func (l *Listener) answer(callbackID, text string) {
	if err := l.client.AnswerCallback(callbackID, text); err != nil {
		slog.Error("failed to answer callback", "action", "answer_callback", "error", err.Error())
	}
}
