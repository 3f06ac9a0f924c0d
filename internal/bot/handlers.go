package bot

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/artquizbot/internal/excel"
	"github.com/example/artquizbot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// answerKeyboard offers the two museum choices for the current painting
func answerKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("1) Русский музей", "ans:"+models.MuseumRussian),
			tgbotapi.NewInlineKeyboardButtonData("2) Третьяковская галерея", "ans:"+models.MuseumTretyakov),
		),
	)
}

// nextKeyboard offers the button that requests the following painting
func nextKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Дальше ▶️", "next"),
		),
	)
}

// handleStartCommand handles the /start command
func (b *Bot) handleStartCommand(message *tgbotapi.Message) {
	text := "Привет! Это викторина «Третьяковка vs Русский музей».\n\n" +
		"Нажмите /play — я покажу картину, а вы угадайте, из какого она музея.\n" +
		"Команды: /play, /stats, /top"
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	b.api.Send(msg)
}

// handlePlay runs one round: quota gate, then peek/deliver with the bounded
// skip-and-retry protocol. Progress state moves only after a confirmed
// delivery, so a Telegram failure can never credit an unseen painting.
func (b *Bot) handlePlay(chatID int64, userID int64) {
	now := time.Now()
	day := b.engine.DayKey(now)

	used, err := b.engine.QuotaUsed(userID, day)
	if err != nil {
		log.Printf("Error getting quota for user %d: %v", userID, err)
		b.sendText(chatID, "Что-то пошло не так, попробуйте позже.")
		return
	}
	if used >= b.config.DailyLimit {
		b.handleStatsCommand(chatID, userID)
		b.sendText(chatID, "На сегодня всё. Приходите завтра!")
		b.scheduleComeback(userID, now)
		return
	}

	for attempt := 0; attempt <= b.config.DeliveryRetries; attempt++ {
		candidate, err := b.engine.Peek(userID, now)
		if err != nil {
			log.Printf("Error peeking candidate for user %d: %v", userID, err)
			b.sendText(chatID, "Что-то пошло не так, попробуйте позже.")
			return
		}
		if candidate == nil {
			b.sendText(chatID, "Сегодня больше нечего показать. Возвращайтесь завтра!")
			return
		}

		painting, ok := b.catalog.Get(candidate.ItemID)
		if !ok {
			// Slot points outside the catalog, drop it like a failed delivery
			if err := b.engine.Skip(candidate); err != nil {
				log.Printf("Error skipping candidate for user %d: %v", userID, err)
				return
			}
			continue
		}

		if err := b.deliver(chatID, painting); err != nil {
			log.Printf("Delivery of %s to user %d failed: %v", painting.ID, userID, err)
			if err := b.engine.Skip(candidate); err != nil {
				log.Printf("Error skipping candidate for user %d: %v", userID, err)
				return
			}
			continue
		}

		if err := b.engine.Commit(candidate, now); err != nil {
			log.Printf("Error committing candidate for user %d: %v", userID, err)
		}
		return
	}

	b.sendText(chatID, "Не удалось показать картину, попробуйте позже.")
}

// deliver sends the painting photo with the answer keyboard. One attempt;
// the caller decides what a failure means.
func (b *Bot) deliver(chatID int64, p models.Painting) error {
	caption := fmt.Sprintf("🖼 <b>%s</b>\n%s, %s\n\n<i>Из какого музея эта работа?</i>",
		p.Title, p.Artist, p.Year)

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(p.ImageURL))
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	photo.ReplyMarkup = answerKeyboard()

	_, err := b.api.Send(photo)
	return err
}

// handleCallbackQuery handles callback queries from buttons
func (b *Bot) handleCallbackQuery(callback *tgbotapi.CallbackQuery) {
	b.api.Request(tgbotapi.NewCallback(callback.ID, ""))

	userID := callback.From.ID
	chatID := callback.Message.Chat.ID
	data := callback.Data

	if data == "next" {
		b.handlePlay(chatID, userID)
		return
	}

	if !strings.HasPrefix(data, "ans:") {
		return
	}
	chosen := strings.TrimPrefix(data, "ans:")

	session, err := b.engine.Session(userID)
	if err != nil {
		log.Printf("Error getting session for user %d: %v", userID, err)
		return
	}
	if session == nil {
		edit := tgbotapi.NewEditMessageCaption(chatID, callback.Message.MessageID, "Сессия не найдена. Нажмите /play")
		b.api.Send(edit)
		b.handlePlay(chatID, userID)
		return
	}

	correct, err := b.engine.RecordAnswer(userID, chosen, session, time.Now())
	if err != nil {
		log.Printf("Error recording answer for user %d: %v", userID, err)
		b.sendText(chatID, "Не удалось сохранить ответ, попробуйте ещё раз.")
		return
	}

	verdict := "✅ Правильно!"
	if !correct {
		verdict = fmt.Sprintf("❌ Неверно. Правильный ответ: <b>%s</b>.", session.Museum)
	}
	caption := fmt.Sprintf("🖼 <b>%s</b>\n%s, %s\n\n%s", session.Title, session.Artist, session.Year, verdict)
	if session.Note != "" {
		caption += " " + session.Note
	}

	edit := tgbotapi.NewEditMessageCaption(chatID, callback.Message.MessageID, caption)
	edit.ParseMode = tgbotapi.ModeHTML
	kb := nextKeyboard()
	edit.ReplyMarkup = &kb
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Error editing verdict for user %d: %v", userID, err)
	}
}

// handleStatsCommand shows the user's running totals
func (b *Bot) handleStatsCommand(chatID int64, userID int64) {
	stats, err := b.users.GetStats(userID)
	if err != nil {
		log.Printf("Error getting stats for user %d: %v", userID, err)
		return
	}
	if stats == nil || stats.Total == 0 {
		b.sendText(chatID, "Статистика пока пустая. Нажмите /play, чтобы начать.")
		return
	}

	acc := float64(stats.Correct) / float64(stats.Total) * 100
	b.sendText(chatID, fmt.Sprintf(
		"Ваша статистика:\nПравильных ответов: %d/%d (%.1f%%)\nСерия подряд: %d",
		stats.Correct, stats.Total, acc, stats.Streak))
}

// handleTopCommand shows the 7-day leaderboard
func (b *Bot) handleTopCommand(chatID int64) {
	rows, err := b.stats.Leaderboard(time.Now().AddDate(0, 0, -7), 10)
	if err != nil {
		log.Printf("Error getting leaderboard: %v", err)
		return
	}
	if len(rows) == 0 {
		b.sendText(chatID, "Пока нет результатов за последние 7 дней.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏆 Топ за 7 дней:")
	for i, row := range rows {
		user := models.User{ID: row.UserID, Username: row.Username, FirstName: row.FirstName, LastName: row.LastName}
		name := user.DisplayName()
		if name == "" {
			name = fmt.Sprintf("ID %d", row.UserID)
		}
		rate := float64(row.Correct) / float64(row.Total) * 100
		sb.WriteString(fmt.Sprintf("\n%d. %s: %d/%d (%.1f%%)", i+1, name, row.Correct, row.Total, rate))
	}
	b.sendText(chatID, sb.String())
}

// handleImportCommand asks the admin for a catalog file
func (b *Bot) handleImportCommand(message *tgbotapi.Message) {
	b.awaitingFileUpload[message.From.ID] = true
	b.sendText(message.Chat.ID,
		"Пришлите файл каталога (.xlsx или .csv) со столбцами:\n"+
			"A: id, B: название, C: художник, D: год, E: музей, F: ссылка на изображение, G: примечание.\n"+
			"Новые картины попадут в игру после перезапуска.")
}

// processCatalogUpload downloads the admin's file and appends its rows to
// the catalog JSON
func (b *Bot) processCatalogUpload(message *tgbotapi.Message) {
	delete(b.awaitingFileUpload, message.From.ID)

	url, err := b.api.GetFileDirectURL(message.Document.FileID)
	if err != nil {
		log.Printf("Error getting file URL: %v", err)
		b.sendText(message.Chat.ID, "Не удалось получить файл.")
		return
	}

	tmpPath, err := downloadToTemp(url, message.Document.FileName)
	if err != nil {
		log.Printf("Error downloading catalog file: %v", err)
		b.sendText(message.Chat.ID, "Не удалось скачать файл.")
		return
	}
	defer os.Remove(tmpPath)

	config := excel.DefaultImportConfig()
	config.FilePath = tmpPath
	config.CatalogPath = os.Getenv("DATA_PATH")
	if config.CatalogPath == "" {
		config.CatalogPath = filepath.Join("data", "paintings.json")
	}

	result, err := excel.ImportPaintings(config)
	if err != nil {
		log.Printf("Error importing catalog: %v", err)
		b.sendText(message.Chat.ID, "Ошибка импорта: "+err.Error())
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ Обработано строк: %d\nДобавлено: %d\nПропущено: %d",
		result.TotalProcessed, result.Added, result.Skipped))
	if len(result.Errors) > 0 {
		sb.WriteString(fmt.Sprintf("\n\n❌ Ошибки (%d):", len(result.Errors)))
		for _, e := range result.Errors {
			sb.WriteString("\n- " + e)
		}
	}
	b.sendText(message.Chat.ID, sb.String())
}

func downloadToTemp(url, name string) (string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download file: %v", err)
	}
	defer resp.Body.Close()

	f, err := os.CreateTemp("", "catalog-*"+filepath.Ext(name))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to save file: %v", err)
	}
	return f.Name(), nil
}

func (b *Bot) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message to chat %d: %v", chatID, err)
	}
}
