package port

import (
	"context"
	"image"

	"voc-balancer/internal/domain/entity"
)

// Slot зарезервированный номер _augN для одной производной пары файлов
type Slot struct {
	Index          int
	ImagePath      string
	AnnotationPath string
}

// SampleStore интерфейс хранилища размеченного набора данных
type SampleStore interface {
	// LoadSamples читает разметку; includeAugmented=false отбрасывает сгенерированные изображения
	LoadSamples(ctx context.Context, includeAugmented bool) ([]*entity.Sample, []string, error)

	// ReadImage декодирует изображение и возвращает его формат
	ReadImage(ctx context.Context, path string) (image.Image, string, error)

	// Reserve находит и занимает свободный номер аугментации для изображения
	Reserve(ctx context.Context, sample *entity.Sample) (Slot, error)

	// Release освобождает неиспользованный слот
	Release(ctx context.Context, slot Slot) error

	// WriteImage сохраняет изображение в слот
	WriteImage(ctx context.Context, slot Slot, img image.Image, format string) error

	// WriteAnnotation сохраняет разметку производного изображения
	WriteAnnotation(ctx context.Context, derived *entity.DerivedSample) error
}
