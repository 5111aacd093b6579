// Package telegram delivers notifications to the moderation chat and turns
// inline-keyboard callbacks into moderation decisions.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/review-relay/internal/dto"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the subset of *tgbotapi.BotAPI used to talk to Telegram.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// NewBot authenticates the token against the Bot API.
func NewBot(token string, debug bool) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}
	bot.Debug = debug
	slog.Info("telegram bot authorized", "username", bot.Self.UserName)
	return bot, nil
}

type chatTarget struct {
	id      int64
	channel string
}

// parseChatTarget accepts a numeric chat id or an @channel username.
func parseChatTarget(raw string) (chatTarget, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "@") && len(raw) > 1 {
		return chatTarget{channel: raw}, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return chatTarget{}, fmt.Errorf("invalid CHAT_ID %q: must be a numeric id or @channel", raw)
	}
	return chatTarget{id: id}, nil
}

// Client sends messages to the configured moderation chat. It implements
// services.Notifier.
type Client struct {
	api  Sender
	chat chatTarget
}

func NewClient(api Sender, chatID string) (*Client, error) {
	target, err := parseChatTarget(chatID)
	if err != nil {
		return nil, err
	}
	return &Client{api: api, chat: target}, nil
}

func (c *Client) newMessage(text string) tgbotapi.MessageConfig {
	var msg tgbotapi.MessageConfig
	if c.chat.channel != "" {
		msg = tgbotapi.NewMessageToChannel(c.chat.channel, text)
	} else {
		msg = tgbotapi.NewMessage(c.chat.id, text)
	}
	msg.ParseMode = tgbotapi.ModeMarkdown
	return msg
}

func (c *Client) NotifyForm(ctx context.Context, form *dto.FormRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.api.Send(c.newMessage(FormMessage(form))); err != nil {
		return fmt.Errorf("send form message: %w", err)
	}
	return nil
}

// NotifyReview posts the review with approve/reject buttons keyed by its id.
func (c *Client) NotifyReview(ctx context.Context, review *models.Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := c.newMessage(ReviewMessage(review))
	msg.ReplyMarkup = ReviewKeyboard(review.ID)
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("send review %d prompt: %w", review.ID, err)
	}
	return nil
}

// EditMessage replaces the text of a message, dropping its keyboard.
func (c *Client) EditMessage(chatID int64, messageID int, text string) error {
	if _, err := c.api.Request(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		return fmt.Errorf("edit message %d: %w", messageID, err)
	}
	return nil
}

// AnswerCallback acknowledges a callback query so the client stops its
// loading indicator. text may be empty.
func (c *Client) AnswerCallback(callbackID, text string) error {
	if _, err := c.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("answer callback %s: %w", callbackID, err)
	}
	return nil
}
