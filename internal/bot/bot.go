package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ivanoskov/premium_access_bot/internal/charts"
	"github.com/ivanoskov/premium_access_bot/internal/service"
	"github.com/ivanoskov/premium_access_bot/internal/translate"
)

// Раскладки стартового меню
const (
	LayoutFlat    = "flat"
	LayoutTwoStep = "two_step"
)

// Client - часть tgbotapi.BotAPI, которой пользуется бот
type Client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Options struct {
	GroupID         int64
	Layout          string
	DefaultLanguage string
}

type Bot struct {
	api             Client
	service         *service.Subscriptions
	translator      *translate.Translator
	charts          *charts.ChartGenerator
	logger          *slog.Logger
	groupID         int64
	layout          string
	defaultLanguage string
}

func NewBot(api Client, svc *service.Subscriptions, translator *translate.Translator, chartGen *charts.ChartGenerator, logger *slog.Logger, opts Options) *Bot {
	layout := opts.Layout
	if layout != LayoutTwoStep {
		layout = LayoutFlat
	}
	lang := opts.DefaultLanguage
	if lang == "" {
		lang = translate.SourceLanguage
	}
	return &Bot{
		api:             api,
		service:         svc,
		translator:      translator,
		charts:          chartGen,
		logger:          logger,
		groupID:         opts.GroupID,
		layout:          layout,
		defaultLanguage: lang,
	}
}

// HandleUpdate передает обновление ровно одному обработчику
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.PreCheckoutQuery != nil:
		return b.handlePreCheckout(ctx, update.PreCheckoutQuery)
	case update.CallbackQuery != nil:
		return b.handleCallback(ctx, update.CallbackQuery)
	case update.Message == nil || update.Message.From == nil || update.Message.Chat == nil:
		return nil
	}

	message := update.Message
	switch {
	case message.SuccessfulPayment != nil:
		return b.handleSuccessfulPayment(ctx, message)
	case message.IsCommand():
		return b.handleCommand(ctx, message)
	case isReceipt(message):
		return b.handleReceipt(ctx, message)
	case message.Text != "" && message.Chat.IsPrivate():
		return b.reply(ctx, message.Chat.ID, message.From.ID, textHintText, nil)
	}
	return nil
}

// Start запускает бота в режиме long polling и блокируется до отмены ctx
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("long polling started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.process(ctx, update)
		}
	}
}

func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}

// HandleWebhook - точка входа для обработки входящих webhook-обновлений
func (b *Bot) HandleWebhook(ctx context.Context, body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("failed to decode update: %w", err)
	}
	b.process(ctx, update)
	return nil
}

// process изолирует сбой обработки одного обновления от остальных
func (b *Bot) process(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic while handling update", "update_id", update.UpdateID, "panic", r)
		}
	}()
	if err := b.HandleUpdate(ctx, update); err != nil {
		b.logger.Error("error handling update", "update_id", update.UpdateID, "error", err)
	}
}

// NotifyPendingDigest напоминает администратору о непроверенных чеках
func (b *Bot) NotifyPendingDigest(ctx context.Context) error {
	n := b.service.PendingCount()
	if n == 0 {
		return nil
	}
	return b.sendPlain(b.service.AdminID(), pendingDigestText(n))
}

// reply отправляет пользователю текст на его языке
func (b *Bot) reply(ctx context.Context, chatID, userID int64, text string, markup any) error {
	return b.send(chatID, b.localize(ctx, userID, text), markup)
}

// replyWithLink переводит только текст, ссылка добавляется после перевода без изменений
func (b *Bot) replyWithLink(ctx context.Context, chatID, userID int64, text, link string) error {
	return b.send(chatID, b.localize(ctx, userID, text)+"\n"+link, nil)
}

func (b *Bot) localize(ctx context.Context, userID int64, text string) string {
	return b.translator.Translate(ctx, text, b.languageOf(userID)).Render()
}

func (b *Bot) send(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message to %d: %w", chatID, err)
	}
	return nil
}

// sendPlain отправляет текст без перевода, для администратора
func (b *Bot) sendPlain(chatID int64, text string) error {
	for _, chunk := range splitMessage(text, maxMessageLength) {
		if _, err := b.api.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			return fmt.Errorf("failed to send message to %d: %w", chatID, err)
		}
	}
	return nil
}

func (b *Bot) answerCallback(id string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, "")); err != nil {
		b.logger.Warn("failed to answer callback", "callback_id", id, "error", err)
	}
}

// createInviteLink создает одноразовую ссылку в закрытую группу
func (b *Bot) createInviteLink() (string, error) {
	resp, err := b.api.Request(tgbotapi.CreateChatInviteLinkConfig{
		ChatConfig:  tgbotapi.ChatConfig{ChatID: b.groupID},
		MemberLimit: 1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create invite link: %w", err)
	}

	var link tgbotapi.ChatInviteLink
	if err := json.Unmarshal(resp.Result, &link); err != nil {
		return "", fmt.Errorf("failed to decode invite link: %w", err)
	}
	if link.InviteLink == "" {
		return "", errors.New("failed to create invite link: empty link")
	}
	return link.InviteLink, nil
}
