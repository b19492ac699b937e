package services

import (
	"context"
	"fmt"
	"html"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskboard/internal/models"
	"taskboard/internal/repositories"
)

// TelegramService pings users about tasks assigned to them. The whole
// pipeline is best effort: missing token, unlinked chat or API failure end
// in a console diagnostic, never in the caller's error path.
type TelegramService struct {
	bot   *tgbotapi.BotAPI
	users repositories.UserRepository
}

func NewTelegramService(botToken string, users repositories.UserRepository) *TelegramService {
	if botToken == "" {
		return &TelegramService{users: users}
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Printf("[tg][init][err] %v", err)
		return &TelegramService{users: users}
	}
	log.Printf("[tg][init] authorized as @%s", bot.Self.UserName)
	return &TelegramService{bot: bot, users: users}
}

func (t *TelegramService) NotifyAssigned(ctx context.Context, userID int64, task *models.Task) {
	if t == nil || t.bot == nil || task == nil {
		return
	}
	chatID, notify, err := t.users.GetTelegramSettings(ctx, userID)
	if err != nil {
		log.Printf("[tg][skip] get settings user=%d: %v", userID, err)
		return
	}
	if !notify || chatID == 0 {
		return
	}

	text := fmt.Sprintf(
		"You have been assigned a task\n• <b>%s</b>\n• Status: <code>%s</code>\n• Priority: <code>%s</code>",
		html.EscapeString(task.Title), task.Status, task.Priority,
	)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("[tg][send][err] chat=%d: %v", chatID, err)
	}
}
