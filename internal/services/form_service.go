package services

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/review-relay/internal/dto"
	"github.com/getsentry/sentry-go"
)

const msgFormFieldsRequired = "name and phone are required"

// FormService relays contact form submissions to the chat. Submissions are
// not persisted.
type FormService struct {
	notifier Notifier
}

func NewFormService(notifier Notifier) *FormService {
	return &FormService{notifier: notifier}
}

// Submit forwards the form. Since delivery is the only effect, a failed
// delivery is returned as a NotificationError.
func (s *FormService) Submit(ctx context.Context, req *dto.FormRequest) error {
	if err := req.Validate(); err != nil {
		return &ValidationError{Message: msgFormFieldsRequired}
	}

	if err := s.notifier.NotifyForm(ctx, req); err != nil {
		nerr := &NotificationError{Op: "form", Err: err}
		slog.Error("form notification failed", "action", "notify_form", "error", nerr.Error())
		sentry.CaptureException(nerr)
		return nerr
	}
	return nil
}
