package storage

import (
	"context"
	"image"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"voc-balancer/internal/domain/entity"
	"voc-balancer/internal/domain/port"
)

// MemorySampleStore in-memory хранилище набора данных
type MemorySampleStore struct {
	mu          sync.RWMutex
	samples     []*entity.Sample
	images      map[string]image.Image
	annotations map[string]*entity.DerivedSample
	derived     []*entity.DerivedSample

	// Ошибки, которые вернут операции записи (для проверки обработки сбоев)
	WriteImageErr      error
	WriteAnnotationErr error
}

// NewMemorySampleStore создаёт новое in-memory хранилище
func NewMemorySampleStore() *MemorySampleStore {
	return &MemorySampleStore{
		images:      make(map[string]image.Image),
		annotations: make(map[string]*entity.DerivedSample),
	}
}

// Add добавляет исходное изображение с разметкой
func (s *MemorySampleStore) Add(sample *entity.Sample, img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples = append(s.samples, sample)
	if img != nil {
		s.images[sample.ImagePath] = img
	}
}

// Derived возвращает записанные производные изображения в порядке записи
func (s *MemorySampleStore) Derived() []*entity.DerivedSample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.DerivedSample, len(s.derived))
	copy(out, s.derived)
	return out
}

// HasImage сообщает, занят ли путь изображения
func (s *MemorySampleStore) HasImage(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.images[path]
	return ok
}

// LoadSamples возвращает исходные и, при includeAugmented, записанные производные изображения
func (s *MemorySampleStore) LoadSamples(ctx context.Context, includeAugmented bool) ([]*entity.Sample, []string, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.Sample, 0, len(s.samples)+len(s.derived))
	out = append(out, s.samples...)
	if includeAugmented {
		for _, d := range s.derived {
			out = append(out, &entity.Sample{
				ImagePath:      d.ImagePath,
				AnnotationPath: d.AnnotationPath,
				Width:          d.Width,
				Height:         d.Height,
				Objects:        d.Objects,
				Augmented:      true,
			})
		}
	}

	seen := make(map[string]struct{})
	for _, sample := range out {
		for _, obj := range sample.Objects {
			seen[obj.Label] = struct{}{}
		}
	}
	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	return out, labels, nil
}

// ReadImage возвращает изображение по пути
func (s *MemorySampleStore) ReadImage(ctx context.Context, path string) (image.Image, string, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	img, ok := s.images[path]
	if !ok || img == nil {
		return nil, "", &entity.IOError{Op: "open", Path: path, Err: errors.New("image not found")}
	}
	return img, "png", nil
}

// Reserve занимает первый свободный номер _augN
func (s *MemorySampleStore) Reserve(ctx context.Context, sample *entity.Sample) (port.Slot, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; ; i++ {
		slot := port.Slot{
			Index:          i,
			ImagePath:      AugmentedPath(sample.ImagePath, i),
			AnnotationPath: AugmentedPath(sample.AnnotationPath, i),
		}
		if _, taken := s.images[slot.ImagePath]; taken {
			continue
		}
		if _, taken := s.annotations[slot.AnnotationPath]; taken {
			continue
		}
		s.images[slot.ImagePath] = nil
		return slot, nil
	}
}

// Release освобождает слот
func (s *MemorySampleStore) Release(ctx context.Context, slot port.Slot) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.images, slot.ImagePath)
	return nil
}

// WriteImage сохраняет изображение
func (s *MemorySampleStore) WriteImage(ctx context.Context, slot port.Slot, img image.Image, format string) error {
	_ = ctx
	_ = format
	if s.WriteImageErr != nil {
		return &entity.IOError{Op: "write", Path: slot.ImagePath, Err: s.WriteImageErr}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[slot.ImagePath] = img
	return nil
}

// WriteAnnotation сохраняет производную разметку
func (s *MemorySampleStore) WriteAnnotation(ctx context.Context, derived *entity.DerivedSample) error {
	_ = ctx
	if s.WriteAnnotationErr != nil {
		return &entity.IOError{Op: "write", Path: derived.AnnotationPath, Err: s.WriteAnnotationErr}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.annotations[derived.AnnotationPath] = derived
	s.derived = append(s.derived, derived)
	return nil
}

// Проверка реализации интерфейса
var _ port.SampleStore = (*MemorySampleStore)(nil)
