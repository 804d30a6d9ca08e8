package bot

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ivanoskov/premium_access_bot/internal/service"
)

// Данные callback-кнопок, кроме кнопок тарифов: у них в данных ID тарифа
const (
	callbackManual   = "manual_payment"
	callbackStars    = "pay_stars"
	callbackGiftCard = "pay_giftcard"
	callbackMainMenu = "menu_main"
)

const (
	uploadReceiptLabel = "🧾 Upload Gift Card & Receipt"
	payStarsLabel      = "⭐ Pay with Telegram Stars"
	payGiftCardLabel   = "🎁 Pay with Gift Card"
	backLabel          = "⬅️ Back"
)

func planLabel(q service.Quote) string {
	usd := strconv.FormatFloat(q.PriceUSD, 'f', -1, 64)
	return fmt.Sprintf("💫 %s - $%s (~%d⭐)", q.Name, usd, q.Stars)
}

// getFlatKeyboard - тарифы и загрузка чека в одном меню
func (b *Bot) getFlatKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := b.planRows()
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(uploadReceiptLabel, callbackManual),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// getPaymentMethodKeyboard - первый шаг двухшагового меню
func (b *Bot) getPaymentMethodKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(payStarsLabel, callbackStars),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(payGiftCardLabel, callbackGiftCard),
		),
	)
}

func (b *Bot) getPlansKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := b.planRows()
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(backLabel, callbackMainMenu),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) planRows() [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, q := range b.service.Plans() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(planLabel(q), q.ID),
		))
	}
	return rows
}

// mainMenu возвращает текст и клавиатуру стартового меню для текущей раскладки
func (b *Bot) mainMenu() (string, tgbotapi.InlineKeyboardMarkup) {
	if b.layout == LayoutTwoStep {
		return welcomeTwoStepText, b.getPaymentMethodKeyboard()
	}
	return welcomeFlatText, b.getFlatKeyboard()
}
