package port

import "voc-balancer/internal/domain/entity"

// Reporter получает события балансировки
type Reporter interface {
	// Histogram сообщает состояние гистограммы на этапе stage
	Histogram(stage string, h entity.Histogram)

	// SampleAugmented записана новая пара изображение/разметка
	SampleAugmented(d *entity.DerivedSample)

	// ObjectDropped объект не пережил преобразование (не ошибка)
	ObjectDropped(source *entity.Sample, obj entity.Object)

	// AugmentFailed аугментация изображения не удалась, итерация не засчитана
	AugmentFailed(source *entity.Sample, err error)

	// LabelFailed метку не удалось добрать до минимума
	LabelFailed(label string, err error)

	// LabelDone метка добрана
	LabelDone(label string, count int)
}
