package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ivanoskov/premium_access_bot/internal/service"
	"github.com/ivanoskov/premium_access_bot/internal/translate"
)

const starsCurrency = "XTR"

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	switch message.Command() {
	case "start":
		return b.handleStart(ctx, message)
	case "approve":
		return b.handleApprove(ctx, message)
	case "disapprove":
		return b.handleDisapprove(ctx, message)
	case "tracker":
		return b.handleTracker(ctx, message)
	case "stats":
		return b.handleStats(ctx, message)
	case "export":
		return b.handleExport(ctx, message)
	}
	return nil
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) error {
	lang := b.detectLanguage(ctx, message)
	b.service.Start(message.From.ID, lang)

	text, keyboard := b.mainMenu()
	return b.reply(ctx, message.Chat.ID, message.From.ID, text, keyboard)
}

// detectLanguage: язык клиента Telegram, затем определение по тексту, затем язык по умолчанию
func (b *Bot) detectLanguage(ctx context.Context, message *tgbotapi.Message) string {
	if code := message.From.LanguageCode; code != "" {
		return translate.Normalize(code)
	}
	if args := message.CommandArguments(); args != "" {
		if lang, ok := b.translator.Detect(ctx, args); ok {
			return lang
		}
	}
	return b.defaultLanguage
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	b.answerCallback(callback.ID)
	if callback.From == nil || callback.Message == nil || callback.Message.Chat == nil {
		return nil
	}

	chatID := callback.Message.Chat.ID
	userID := callback.From.ID

	switch callback.Data {
	case callbackManual, callbackGiftCard:
		return b.handleManualPayment(ctx, chatID, userID)
	case callbackStars:
		return b.reply(ctx, chatID, userID, choosePlanText, b.getPlansKeyboard())
	case callbackMainMenu:
		text, keyboard := b.mainMenu()
		return b.reply(ctx, chatID, userID, text, keyboard)
	default:
		return b.handlePlanSelected(ctx, chatID, userID, callback.Data)
	}
}

func (b *Bot) handleManualPayment(ctx context.Context, chatID, userID int64) error {
	if err := b.service.ChooseManual(userID); err != nil {
		b.logger.Info("manual payment not available", "user_id", userID, "error", err)
		return b.reply(ctx, chatID, userID, restartText, nil)
	}
	return b.reply(ctx, chatID, userID, receiptPromptText, nil)
}

func (b *Bot) handlePlanSelected(ctx context.Context, chatID, userID int64, planID string) error {
	invoice, quote, err := b.service.IssueInvoice(ctx, userID, planID)
	switch {
	case errors.Is(err, service.ErrUnknownPlan):
		b.logger.Warn("unknown callback data", "user_id", userID, "data", planID)
		return b.reply(ctx, chatID, userID, unknownOptionText, nil)
	case errors.Is(err, service.ErrPlanNotAvailable):
		return b.reply(ctx, chatID, userID, restartText, nil)
	case err != nil:
		return err
	}

	cfg := tgbotapi.NewInvoice(
		chatID,
		quote.Name+" Subscription",
		fmt.Sprintf("Access to the private channel for %s.", quote.Name),
		invoice.Payload(),
		"",
		"",
		starsCurrency,
		[]tgbotapi.LabeledPrice{{Label: quote.Name + " Plan", Amount: quote.Stars}},
	)
	// Без этого поле уходит как null и Telegram отклоняет счет
	cfg.SuggestedTipAmounts = []int{}

	if _, err := b.api.Send(cfg); err != nil {
		return fmt.Errorf("failed to send invoice: %w", err)
	}
	return nil
}

func isReceipt(message *tgbotapi.Message) bool {
	if len(message.Photo) > 0 {
		return true
	}
	return message.Document != nil && strings.HasPrefix(message.Document.MimeType, "image/")
}

// handleReceipt пересылает чек администратору и создает запись pending
func (b *Bot) handleReceipt(ctx context.Context, message *tgbotapi.Message) error {
	user := message.From
	adminID := b.service.AdminID()
	if _, err := b.api.Send(tgbotapi.NewForward(adminID, message.Chat.ID, message.MessageID)); err != nil {
		return fmt.Errorf("failed to forward receipt: %w", err)
	}

	rec := b.service.SubmitReceipt(ctx, user.ID)
	if err := b.sendPlain(adminID, receiptCaption(user, rec.CreatedAt)); err != nil {
		return err
	}
	return b.reply(ctx, message.Chat.ID, user.ID, receiptSentText, nil)
}

func (b *Bot) handlePreCheckout(ctx context.Context, query *tgbotapi.PreCheckoutQuery) error {
	cfg := tgbotapi.PreCheckoutConfig{PreCheckoutQueryID: query.ID, OK: true}

	var userID int64
	if query.From != nil {
		userID = query.From.ID
	}
	if err := b.service.CheckPreCheckout(userID, query.InvoicePayload); err != nil {
		b.logger.Warn("pre-checkout rejected", "user_id", userID, "payload", query.InvoicePayload, "error", err)
		cfg.OK = false
		cfg.ErrorMessage = b.translator.Translate(ctx, preCheckoutRejectText, b.languageOf(userID)).Text
	}

	if _, err := b.api.Request(cfg); err != nil {
		return fmt.Errorf("failed to answer pre-checkout query: %w", err)
	}
	return nil
}

func (b *Bot) handleSuccessfulPayment(ctx context.Context, message *tgbotapi.Message) error {
	user := message.From
	payment := message.SuccessfulPayment

	settlement, err := b.service.SettlePayment(ctx, user.ID, service.SuccessfulPayment{
		Payload:          payment.InvoicePayload,
		Currency:         payment.Currency,
		TotalAmount:      payment.TotalAmount,
		TelegramChargeID: payment.TelegramPaymentChargeID,
	})
	if errors.Is(err, service.ErrUnknownInvoice) {
		b.logger.Error("unmatched payment", "user_id", user.ID, "payload", payment.InvoicePayload, "error", err)
		if err := b.sendPlain(b.service.AdminID(), paymentUnmatchedAdminText(user, payment)); err != nil {
			b.logger.Error("failed to alert admin", "error", err)
		}
		return b.reply(ctx, message.Chat.ID, user.ID, paymentUnmatchedText, nil)
	}
	if err != nil {
		return err
	}
	if settlement.Duplicate {
		return b.reply(ctx, message.Chat.ID, user.ID, paymentDuplicateText, nil)
	}

	if err := b.reply(ctx, message.Chat.ID, user.ID, paymentStartedText(settlement.Plan.Name), nil); err != nil {
		return err
	}

	link, err := b.createInviteLink()
	if err != nil {
		if alertErr := b.sendPlain(b.service.AdminID(), fmt.Sprintf(inviteLinkRetryPattern, user.ID, err)); alertErr != nil {
			b.logger.Error("failed to alert admin", "error", alertErr)
		}
		if replyErr := b.reply(ctx, message.Chat.ID, user.ID, inviteLinkFailedText, nil); replyErr != nil {
			b.logger.Error("failed to notify user", "user_id", user.ID, "error", replyErr)
		}
		return err
	}
	return b.replyWithLink(ctx, message.Chat.ID, user.ID, paymentLinkText, link)
}

func (b *Bot) languageOf(userID int64) string {
	if lang, ok := b.service.Language(userID); ok {
		return lang
	}
	return b.defaultLanguage
}
