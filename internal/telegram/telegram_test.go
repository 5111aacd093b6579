package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/review-relay/internal/dto"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/models"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/moderation"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	err      error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) snapshot() ([]tgbotapi.Chattable, []tgbotapi.Chattable) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), f.sent...), append([]tgbotapi.Chattable(nil), f.requests...)
}

type fakeDecider struct {
	mu      sync.Mutex
	actions []moderation.Action
	outcome moderation.Outcome
	err     error
}

func (f *fakeDecider) Decide(_ context.Context, action moderation.Action) (moderation.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
	return f.outcome, f.err
}

type fakeUpdater struct {
	ch      chan tgbotapi.Update
	config  tgbotapi.UpdateConfig
	stopped chan struct{}
}

func (f *fakeUpdater) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	f.config = cfg
	return f.ch
}

func (f *fakeUpdater) StopReceivingUpdates() { close(f.stopped) }

func newTestClient(t *testing.T, sender *fakeSender) *Client {
	t.Helper()
	client, err := NewClient(sender, "-100123")
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return client
}

func callback(data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		Data: data,
		Message: &tgbotapi.Message{
			MessageID: 77,
			Chat:      &tgbotapi.Chat{ID: -100123},
		},
	}
}

func TestParseChatTarget(t *testing.T) {
	if target, err := parseChatTarget("-100123"); err != nil || target.id != -100123 {
		t.Fatalf("numeric id: %+v %v", target, err)
	}
	if target, err := parseChatTarget("@moderators"); err != nil || target.channel != "@moderators" {
		t.Fatalf("channel: %+v %v", target, err)
	}
	for _, bad := range []string{"", "@", "moderators"} {
		if _, err := parseChatTarget(bad); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}

func TestNotifyReviewSendsKeyboard(t *testing.T) {
	sender := &fakeSender{}
	client := newTestClient(t, sender)

	review := &models.Review{ID: 42, Name: "Ann", Text: "Great", Rating: 5}
	if err := client.NotifyReview(context.Background(), review); err != nil {
		t.Fatalf("notify: %v", err)
	}
	sent, _ := sender.snapshot()
	if len(sent) != 1 {
		t.Fatalf("expected one message, got %d", len(sent))
	}
	msg, ok := sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("unexpected chattable %T", sent[0])
	}
	if msg.ChatID != -100123 || msg.ParseMode != tgbotapi.ModeMarkdown {
		t.Fatalf("unexpected message target: %+v", msg)
	}
	if !strings.Contains(msg.Text, "Ann") || !strings.Contains(msg.Text, "Great") || !strings.Contains(msg.Text, "5") {
		t.Fatalf("message missing review fields: %q", msg.Text)
	}
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok || len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != 2 {
		t.Fatalf("unexpected keyboard: %#v", msg.ReplyMarkup)
	}
	if got := *kb.InlineKeyboard[0][0].CallbackData; got != "approve_42" {
		t.Fatalf("approve button data: %q", got)
	}
	if got := *kb.InlineKeyboard[0][1].CallbackData; got != "reject_42" {
		t.Fatalf("reject button data: %q", got)
	}
}

func TestNotifyFormToChannel(t *testing.T) {
	sender := &fakeSender{}
	client, err := NewClient(sender, "@leads")
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := client.NotifyForm(context.Background(), &dto.FormRequest{Name: "Ann", Phone: "123"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	sent, _ := sender.snapshot()
	msg := sent[0].(tgbotapi.MessageConfig)
	if msg.ChannelUsername != "@leads" {
		t.Fatalf("expected channel target, got %+v", msg.BaseChat)
	}
	if !strings.Contains(msg.Text, "Message: none") {
		t.Fatalf("missing message placeholder: %q", msg.Text)
	}
}

func TestNotifyPropagatesSendError(t *testing.T) {
	boom := errors.New("telegram down")
	client := newTestClient(t, &fakeSender{err: boom})
	err := client.NotifyReview(context.Background(), &models.Review{ID: 1, Name: "a", Text: "b", Rating: 1})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}

func TestFormMessageEscapesMarkdown(t *testing.T) {
	text := FormMessage(&dto.FormRequest{Name: "*bold*_name", Phone: "1", Message: "[link]"})
	if strings.Contains(text, "*bold*") {
		t.Fatalf("user text must be escaped: %q", text)
	}
}

func TestHandleCallbackApprove(t *testing.T) {
	sender := &fakeSender{}
	decider := &fakeDecider{outcome: moderation.OutcomeApproved}
	l := NewListener(nil, newTestClient(t, sender), decider, time.Minute)

	l.HandleCallback(context.Background(), callback("approve_42"))

	if len(decider.actions) != 1 || decider.actions[0] != moderation.Approve(42) {
		t.Fatalf("unexpected decisions: %+v", decider.actions)
	}
	_, reqs := sender.snapshot()
	if len(reqs) != 2 {
		t.Fatalf("expected edit + answer, got %d requests", len(reqs))
	}
	edit, ok := reqs[0].(tgbotapi.EditMessageTextConfig)
	if !ok {
		t.Fatalf("first request should be an edit, got %T", reqs[0])
	}
	if edit.ChatID != -100123 || edit.MessageID != 77 || edit.Text != OutcomeText(moderation.OutcomeApproved) {
		t.Fatalf("unexpected edit: %+v", edit)
	}
	answer, ok := reqs[1].(tgbotapi.CallbackConfig)
	if !ok || answer.CallbackQueryID != "cb-1" {
		t.Fatalf("second request should answer the callback, got %#v", reqs[1])
	}
}

func TestHandleCallbackNoOpOutcome(t *testing.T) {
	sender := &fakeSender{}
	l := NewListener(nil, newTestClient(t, sender), &fakeDecider{outcome: moderation.OutcomeNotFound}, time.Minute)

	l.HandleCallback(context.Background(), callback("reject_5"))

	_, reqs := sender.snapshot()
	edit := reqs[0].(tgbotapi.EditMessageTextConfig)
	if edit.Text != OutcomeText(moderation.OutcomeNotFound) {
		t.Fatalf("unexpected edit text %q", edit.Text)
	}
}

func TestHandleCallbackMalformedFailsClosed(t *testing.T) {
	sender := &fakeSender{}
	decider := &fakeDecider{outcome: moderation.OutcomeApproved}
	l := NewListener(nil, newTestClient(t, sender), decider, time.Minute)

	l.HandleCallback(context.Background(), callback("approve_abc"))

	if len(decider.actions) != 0 {
		t.Fatalf("malformed data must not reach the store")
	}
	_, reqs := sender.snapshot()
	if len(reqs) != 1 {
		t.Fatalf("expected only an answer, got %d requests", len(reqs))
	}
	answer := reqs[0].(tgbotapi.CallbackConfig)
	if answer.Text != answerMalformed {
		t.Fatalf("unexpected answer %q", answer.Text)
	}
}

func TestHandleCallbackDecisionError(t *testing.T) {
	sender := &fakeSender{}
	l := NewListener(nil, newTestClient(t, sender), &fakeDecider{err: errors.New("db gone")}, time.Minute)

	l.HandleCallback(context.Background(), callback("approve_1"))

	_, reqs := sender.snapshot()
	if len(reqs) != 1 {
		t.Fatalf("expected only an answer, got %d requests", len(reqs))
	}
	if answer := reqs[0].(tgbotapi.CallbackConfig); answer.Text != answerFailed {
		t.Fatalf("unexpected answer %q", answer.Text)
	}
}

func TestRunDispatchesUntilCancelled(t *testing.T) {
	sender := &fakeSender{}
	decider := &fakeDecider{outcome: moderation.OutcomeRejected}
	updater := &fakeUpdater{ch: make(chan tgbotapi.Update, 2), stopped: make(chan struct{})}
	l := NewListener(updater, newTestClient(t, sender), decider, 30*time.Second)

	updater.ch <- tgbotapi.Update{UpdateID: 1, Message: &tgbotapi.Message{Text: "hi"}}
	updater.ch <- tgbotapi.Update{UpdateID: 2, CallbackQuery: callback("reject_9")}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for {
		decider.mu.Lock()
		n := len(decider.actions)
		decider.mu.Unlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("callback was not dispatched")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("listener did not stop")
	}
	select {
	case <-updater.stopped:
	default:
		t.Fatalf("polling should be stopped on exit")
	}
	if updater.config.Timeout != 30 || len(updater.config.AllowedUpdates) != 1 || updater.config.AllowedUpdates[0] != "callback_query" {
		t.Fatalf("unexpected update config: %+v", updater.config)
	}
}
