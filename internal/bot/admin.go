package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ivanoskov/premium_access_bot/internal/charts"
	"github.com/ivanoskov/premium_access_bot/internal/export"
	"github.com/ivanoskov/premium_access_bot/internal/service"
)

func parseTarget(args string) (int64, bool) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// reviewTarget проверяет права и аргумент команды. ok == false, если ответ уже отправлен.
func (b *Bot) reviewTarget(message *tgbotapi.Message) (int64, bool, error) {
	chatID := message.Chat.ID
	if !b.service.IsAdmin(message.From.ID) {
		return 0, false, b.sendPlain(chatID, notAuthorizedText)
	}
	target, ok := parseTarget(message.CommandArguments())
	if !ok {
		return 0, false, b.sendPlain(chatID, usageText(message.Command()))
	}

	_, err := b.service.Review(message.From.ID, target)
	switch {
	case errors.Is(err, service.ErrApprovalNotFound):
		return 0, false, b.sendPlain(chatID, approvalNotFoundText)
	case errors.Is(err, service.ErrUnauthorized):
		return 0, false, b.sendPlain(chatID, notAuthorizedText)
	case err != nil:
		return 0, false, err
	}
	return target, true, nil
}

// handleApprove выдает ссылку и только после этого меняет статус записи
func (b *Bot) handleApprove(ctx context.Context, message *tgbotapi.Message) error {
	target, ok, err := b.reviewTarget(message)
	if !ok {
		return err
	}

	link, err := b.createInviteLink()
	if err != nil {
		b.logger.Error("invite link for approval failed", "user_id", target, "error", err)
		return b.sendPlain(message.Chat.ID, fmt.Sprintf(inviteLinkRetryPattern, target, err))
	}
	if err := b.replyWithLink(ctx, target, target, approvedUserText, link); err != nil {
		b.logger.Error("failed to deliver invite link", "user_id", target, "error", err)
		return b.sendPlain(message.Chat.ID, fmt.Sprintf("⚠️ Could not message user %d: %v", target, err))
	}

	if _, err := b.service.Approve(ctx, message.From.ID, target); err != nil {
		return err
	}
	return b.sendPlain(message.Chat.ID, approvedAdminText(target))
}

func (b *Bot) handleDisapprove(ctx context.Context, message *tgbotapi.Message) error {
	target, ok, err := b.reviewTarget(message)
	if !ok {
		return err
	}

	if _, err := b.service.Disapprove(ctx, message.From.ID, target); err != nil {
		return err
	}
	if err := b.reply(ctx, target, target, disapprovedUserText, nil); err != nil {
		b.logger.Warn("failed to notify disapproved user", "user_id", target, "error", err)
	}
	return b.sendPlain(message.Chat.ID, disapprovedAdminText(target))
}

func (b *Bot) handleTracker(ctx context.Context, message *tgbotapi.Message) error {
	records, err := b.service.Tracker(message.From.ID)
	if errors.Is(err, service.ErrUnauthorized) {
		return b.sendPlain(message.Chat.ID, unauthorizedText)
	}
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return b.sendPlain(message.Chat.ID, noConfirmationsText)
	}
	return b.sendPlain(message.Chat.ID, formatTracker(records))
}

func (b *Bot) handleStats(ctx context.Context, message *tgbotapi.Message) error {
	if !b.service.IsAdmin(message.From.ID) {
		return b.sendPlain(message.Chat.ID, unauthorizedText)
	}

	stats := b.service.Stats()
	png, err := b.charts.GenerateStatusChart(stats)
	if errors.Is(err, charts.ErrNoData) {
		return b.sendPlain(message.Chat.ID, noConfirmationsText)
	}
	if err != nil {
		return fmt.Errorf("failed to render stats chart: %w", err)
	}

	photo := tgbotapi.NewPhoto(message.Chat.ID, tgbotapi.FileBytes{Name: "stats.png", Bytes: png})
	photo.Caption = statsCaption(stats.Pending, stats.Approved, stats.Disapproved, stats.Payments)
	if _, err := b.api.Send(photo); err != nil {
		return fmt.Errorf("failed to send stats chart: %w", err)
	}
	return nil
}

func (b *Bot) handleExport(ctx context.Context, message *tgbotapi.Message) error {
	records, err := b.service.Tracker(message.From.ID)
	if errors.Is(err, service.ErrUnauthorized) {
		return b.sendPlain(message.Chat.ID, unauthorizedText)
	}
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return b.sendPlain(message.Chat.ID, noConfirmationsText)
	}

	buf, err := export.TrackerWorkbook(records)
	if err != nil {
		return fmt.Errorf("failed to build tracker workbook: %w", err)
	}
	doc := tgbotapi.NewDocument(message.Chat.ID, tgbotapi.FileBytes{
		Name:  export.FileName(time.Now()),
		Bytes: buf.Bytes(),
	})
	if _, err := b.api.Send(doc); err != nil {
		return fmt.Errorf("failed to send tracker workbook: %w", err)
	}
	return nil
}
