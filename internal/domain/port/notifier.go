package port

import (
	"context"

	"voc-balancer/internal/domain/entity"
)

// Notifier отправляет итог запуска во внешний канал
type Notifier interface {
	Notify(ctx context.Context, result *entity.Result) error
}
