package bot

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ivanoskov/premium_access_bot/internal/model"
)

const (
	welcomeFlatText = "Welcome to the Premium Channel Access Bot 💎\n\n" +
		"Choose a subscription plan below or upload a payment receipt 👇"
	welcomeTwoStepText = "Welcome to the Premium Channel Access Bot 💎\n\n" +
		"How would you like to pay? 👇"
	choosePlanText    = "Choose a subscription plan 👇"
	receiptPromptText = "📸 Please upload your GIFT CARD & PAYMENT RECEIPT image/file below.\n\n" +
		"Once received, it will be sent to the admin for verification."
	receiptSentText        = "✅ Your receipt has been sent for review. Please wait for admin approval."
	restartText            = "This menu has expired. Send /start to begin again."
	unknownOptionText      = "❌ Unknown option. Send /start to see the plans."
	textHintText           = "Send /start to see the subscription plans."
	paymentLinkText        = "🎉 Here’s your private access link:"
	approvedUserText       = "🎉 Your payment has been verified!\nHere’s your private channel link:"
	disapprovedUserText    = "❌ Your payment was not approved. Please check your details and try again."

	paymentUnmatchedText = "⚠️ We received your payment but could not match it to an invoice. " +
		"The admin has been notified and will contact you."
	paymentDuplicateText   = "✅ This payment was already processed. Your invite link was sent earlier."
	preCheckoutRejectText  = "This invoice is no longer valid. Please send /start and choose a plan again."
	inviteLinkFailedText   = "⚠️ Your payment was received but the invite link could not be created. The admin has been notified."
	notAuthorizedText      = "⛔ You are not authorized."
	unauthorizedText       = "⛔ Unauthorized."
	approvalNotFoundText   = "❌ No pending approval found."
	noConfirmationsText    = "No gift card confirmations yet."
	trackerHeaderText      = "📊 Gift Card Confirmation Tracker:\n\n"
	timeLayout             = "2006-01-02 15:04:05"
	maxMessageLength       = 4096
	inviteLinkRetryPattern = "⚠️ Could not create an invite link for user %d: %v"
)

func paymentStartedText(planName string) string {
	return fmt.Sprintf("✅ Payment for %s successful! Generating your invite link...", planName)
}


func approvedAdminText(userID int64) string {
	return fmt.Sprintf("✅ Approved user %d ✅", userID)
}

func disapprovedAdminText(userID int64) string {
	return fmt.Sprintf("🚫 Disapproved user %d.", userID)
}

func usageText(command string) string {
	return fmt.Sprintf("Usage: /%s <user_id>", command)
}

func pendingDigestText(n int) string {
	return fmt.Sprintf("⏳ %d gift card receipt(s) awaiting review.\nUse /tracker to see them.", n)
}

func receiptCaption(user *tgbotapi.User, at time.Time) string {
	username := user.UserName
	if username == "" {
		username = "N/A"
	}
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	return fmt.Sprintf(
		"🧾 New Payment Receipt:\n"+
			"👤 Name: %s\n"+
			"🔗 Username: @%s\n"+
			"🆔 User ID: %d\n"+
			"🕒 Time: %s\n\n"+
			"To approve: /approve %d\n"+
			"To disapprove: /disapprove %d",
		name, username, user.ID, at.Format(timeLayout), user.ID, user.ID)
}

func paymentUnmatchedAdminText(user *tgbotapi.User, payment *tgbotapi.SuccessfulPayment) string {
	return fmt.Sprintf(
		"⚠️ Unmatched Stars payment\n"+
			"🆔 User ID: %d (@%s)\n"+
			"💫 Amount: %d %s\n"+
			"📦 Payload: %s\n"+
			"🧾 Charge ID: %s",
		user.ID, user.UserName, payment.TotalAmount, payment.Currency,
		payment.InvoicePayload, payment.TelegramPaymentChargeID)
}

func statsCaption(pending, approved, disapproved, payments int) string {
	return fmt.Sprintf("⏳ Pending: %d\n✅ Approved: %d\n🚫 Disapproved: %d\n💫 Stars payments: %d",
		pending, approved, disapproved, payments)
}

// formatTracker строит отчет по журналу, по одной строке на пользователя
func formatTracker(records []model.ApprovalRecord) string {
	var sb strings.Builder
	sb.WriteString(trackerHeaderText)
	for _, rec := range records {
		fmt.Fprintf(&sb, "👤 %d - %s (%s)\n", rec.UserID, rec.Status.Label(), rec.CreatedAt.Format(timeLayout))
	}
	return sb.String()
}

// splitMessage режет длинный текст по строкам, чтобы уложиться в лимит Telegram
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var (
		chunks  []string
		current strings.Builder
	)
	for _, line := range strings.SplitAfter(text, "\n") {
		if current.Len()+len(line) > limit && current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		for len(line) > limit {
			chunks = append(chunks, line[:limit])
			line = line[limit:]
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
