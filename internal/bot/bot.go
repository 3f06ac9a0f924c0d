package bot

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/artquizbot/internal/catalog"
	"github.com/example/artquizbot/internal/database"
	"github.com/example/artquizbot/internal/engine"
	"github.com/example/artquizbot/internal/scheduler"
	"github.com/example/artquizbot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot represents the Telegram quiz bot application
type Bot struct {
	api     *tgbotapi.BotAPI
	token   string
	engine  *engine.Engine
	catalog *catalog.Index
	config  *BotConfig

	users   *database.UserRepository
	stats   *database.StatsRepository
	notices *database.NoticeRepository

	scheduler        *scheduler.Scheduler
	schedulerEnabled bool

	adminUserIDs       map[int64]bool
	awaitingFileUpload map[int64]bool
}

// New creates a new bot instance
func New(eng *engine.Engine, idx *catalog.Index, config *BotConfig) (*Bot, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	if database.DB == nil {
		return nil, fmt.Errorf("database connection is not established")
	}

	bot := &Bot{
		token:              token,
		engine:             eng,
		catalog:            idx,
		config:             config,
		users:              database.NewUserRepository(),
		stats:              database.NewStatsRepository(),
		notices:            database.NewNoticeRepository(),
		schedulerEnabled:   os.Getenv("ENABLE_SCHEDULER") != "false",
		adminUserIDs:       make(map[int64]bool),
		awaitingFileUpload: make(map[int64]bool),
	}

	adminIDs := os.Getenv("ADMIN_USER_IDS")
	if adminIDs != "" {
		for _, idStr := range strings.Split(adminIDs, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
			if err != nil {
				log.Printf("Warning: Invalid admin user ID: %s", idStr)
				continue
			}
			bot.adminUserIDs[id] = true
		}
	}

	return bot, nil
}

// Start initializes and starts the bot
func (b *Bot) Start() error {
	botAPI, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %v", err)
	}

	b.api = botAPI
	log.Printf("Authorized on account %s", botAPI.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)

	if b.schedulerEnabled {
		b.scheduler = scheduler.New(b, b.config.Location)
		b.scheduler.Start()
		log.Println("Notice sweep started")
	}

	// One lightweight task per inbound event; a single user's events arrive
	// one at a time from Telegram
	for update := range updates {
		go b.handleUpdate(update)
	}

	return nil
}

// Stop gracefully stops the bot
func (b *Bot) Stop() {
	if b.scheduler != nil {
		b.scheduler.Stop()
	}
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}
	log.Println("Bot stopped")
}

// isAdmin checks if a user is an admin
func (b *Bot) isAdmin(userID int64) bool {
	return b.adminUserIDs[userID]
}

// ensureUser registers the sender on any contact
func (b *Bot) ensureUser(from *tgbotapi.User) {
	if from == nil {
		return
	}
	err := b.users.Ensure(&models.User{
		ID:        from.ID,
		Username:  from.UserName,
		FirstName: from.FirstName,
		LastName:  from.LastName,
	})
	if err != nil {
		log.Printf("Error ensuring user %d: %v", from.ID, err)
	}
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message != nil {
		b.ensureUser(update.Message.From)

		if update.Message.IsCommand() {
			switch update.Message.Command() {
			case "start":
				b.handleStartCommand(update.Message)
			case "play":
				b.handlePlay(update.Message.Chat.ID, update.Message.From.ID)
			case "stats":
				b.handleStatsCommand(update.Message.Chat.ID, update.Message.From.ID)
			case "top":
				b.handleTopCommand(update.Message.Chat.ID)
			case "import":
				// Admin-only command
				if b.isAdmin(update.Message.From.ID) {
					b.handleImportCommand(update.Message)
				} else {
					msg := tgbotapi.NewMessage(update.Message.Chat.ID, "Эта команда доступна только администраторам.")
					b.api.Send(msg)
				}
			default:
				msg := tgbotapi.NewMessage(update.Message.Chat.ID, "Неизвестная команда. Доступны: /play, /stats, /top")
				b.api.Send(msg)
			}
		} else if b.awaitingFileUpload[update.Message.From.ID] && update.Message.Document != nil {
			b.processCatalogUpload(update.Message)
		}
	} else if update.CallbackQuery != nil {
		b.ensureUser(update.CallbackQuery.From)
		b.handleCallbackQuery(update.CallbackQuery)
	}
}

// SendDailySummary implements the scheduler.Notifier interface: the deferred
// "come back" notice sent the day after a user exhausted the quota
func (b *Bot) SendDailySummary(userID int64) error {
	text := "Новый день — новые картины! 🖼\nНажмите /play, чтобы продолжить викторину."

	stats, err := b.users.GetStats(userID)
	if err == nil && stats != nil && stats.Total > 0 {
		acc := float64(stats.Correct) / float64(stats.Total) * 100
		text += fmt.Sprintf("\n\nВаш счёт: %d/%d (%.1f%%)", stats.Correct, stats.Total, acc)
	}

	msg := tgbotapi.NewMessage(userID, text)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send daily summary: %v", err)
	}
	return nil
}

// scheduleComeback enqueues the next-day summary once per user per day
func (b *Bot) scheduleComeback(userID int64, now time.Time) {
	local := now.In(b.config.Location)
	next := local.AddDate(0, 0, 1)
	notBefore := time.Date(next.Year(), next.Month(), next.Day(), b.config.SummaryHour, 0, 0, 0, b.config.Location)
	day := next.Format("20060102")

	if err := b.notices.EnqueueIfAbsent(userID, day, notBefore); err != nil {
		log.Printf("Error scheduling comeback notice for user %d: %v", userID, err)
	}
}
