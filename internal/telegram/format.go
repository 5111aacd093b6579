package telegram

import (
	"fmt"

	"github.com/ahmetcoskunkizilkaya/review-relay/internal/dto"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/models"
	"github.com/ahmetcoskunkizilkaya/review-relay/internal/moderation"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func FormMessage(form *dto.FormRequest) string {
	message := form.Message
	if message == "" {
		message = "none"
	}
	return fmt.Sprintf("📩 *New request from the website*\n👤 Name: %s\n📞 Phone: %s\n💬 Message: %s",
		escape(form.Name), escape(form.Phone), escape(message))
}

func ReviewMessage(review *models.Review) string {
	return fmt.Sprintf("📝 *New review*\n👤 %s\n⭐ %d\n💬 %s",
		escape(review.Name), review.Rating, escape(review.Text))
}

func ReviewKeyboard(reviewID uint) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", moderation.Approve(reviewID).Token()),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", moderation.Reject(reviewID).Token()),
		),
	)
}

// OutcomeText is what the moderation message is edited to once decided.
func OutcomeText(outcome moderation.Outcome) string {
	switch outcome {
	case moderation.OutcomeApproved:
		return "✅ Review approved"
	case moderation.OutcomeRejected:
		return "❌ Review rejected"
	case moderation.OutcomeAlreadyApproved:
		return "ℹ️ Review was already approved"
	case moderation.OutcomeNotFound:
		return "ℹ️ Review no longer exists"
	default:
		return "ℹ️ Decision recorded"
	}
}
