package telegram

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"voc-balancer/internal/domain/entity"
	"voc-balancer/internal/domain/port"
)

const (
	msgHeaderOK     = "✅ Балансировка набора данных завершена"
	msgHeaderFailed = "⚠️ Балансировка завершена с ошибками"
	msgAugmented    = "🖼 Новых изображений: %d"
	msgBefore       = "📊 До:"
	msgAfter        = "📈 После:"
	msgFailed       = "❌ Не удалось добрать:"
)

// sender часть tgbotapi.BotAPI, которая нужна уведомителю
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier отправляет итог балансировки в Telegram-чат
type Notifier struct {
	api    sender
	chatID int64
}

// NewNotifier авторизуется в Telegram и создаёт уведомитель
func NewNotifier(token string, chatID int64) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "telegram auth")
	}
	return &Notifier{api: api, chatID: chatID}, nil
}

// Notify отправляет сводку запуска
func (n *Notifier) Notify(ctx context.Context, result *entity.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, FormatSummary(result))
	if _, err := n.api.Send(msg); err != nil {
		return errors.Wrap(err, "send summary")
	}
	return nil
}

// FormatSummary собирает текст сводки
func FormatSummary(result *entity.Result) string {
	var b strings.Builder

	if result.OK() {
		b.WriteString(msgHeaderOK)
	} else {
		b.WriteString(msgHeaderFailed)
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, msgAugmented, result.Augmented)
	b.WriteString("\n\n")

	writeHistogram(&b, msgBefore, result.Before)
	writeHistogram(&b, msgAfter, result.After)

	if !result.OK() {
		b.WriteString(msgFailed)
		b.WriteString("\n")
		for _, label := range result.FailedLabels() {
			fmt.Fprintf(&b, "• %s: %v\n", label, result.Failed[label])
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeHistogram(b *strings.Builder, title string, h entity.Histogram) {
	b.WriteString(title)
	b.WriteString("\n")

	labels := make([]string, 0, len(h))
	for label := range h {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		fmt.Fprintf(b, "• %s — %d\n", label, h[label])
	}
	b.WriteString("\n")
}

// Проверка реализации интерфейса
var _ port.Notifier = (*Notifier)(nil)
