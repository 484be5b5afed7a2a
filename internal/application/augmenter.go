package app

import (
	"context"

	"github.com/pkg/errors"

	"voc-balancer/internal/domain/entity"
	"voc-balancer/internal/domain/port"
)

// SampleAugmenter строит одну производную пару изображение/разметка
type SampleAugmenter struct {
	store    port.SampleStore
	engine   port.AugmentationEngine
	reporter port.Reporter
}

// NewSampleAugmenter создаёт сервис аугментации одного изображения
func NewSampleAugmenter(store port.SampleStore, engine port.AugmentationEngine, reporter port.Reporter) *SampleAugmenter {
	return &SampleAugmenter{
		store:    store,
		engine:   engine,
		reporter: reporter,
	}
}

// Augment преобразует изображение, сохраняет его под свободным именем _augN
// и записывает разметку с тем же номером.
func (a *SampleAugmenter) Augment(ctx context.Context, sample *entity.Sample) (*entity.DerivedSample, error) {
	img, format, err := a.store.ReadImage(ctx, sample.ImagePath)
	if err != nil {
		return nil, err
	}

	newImg, newBoxes, newLabels, err := a.engine.Apply(ctx, img, sample.Boxes(), sample.Labels())
	if err != nil {
		return nil, errors.Wrapf(err, "augment %s", sample.ImagePath)
	}
	if len(newBoxes) != len(newLabels) {
		return nil, errors.Wrapf(entity.ErrEngineMismatch, "augment %s", sample.ImagePath)
	}

	bounds := newImg.Bounds()
	derived := matchObjects(sample, newBoxes, newLabels)
	derived.Width, derived.Height = bounds.Dx(), bounds.Dy()
	for _, obj := range derived.Objects {
		if !obj.Box.Within(derived.Width, derived.Height) {
			return nil, errors.Wrapf(entity.ErrBoxOutOfFrame, "augment %s: %s %v in %dx%d",
				sample.ImagePath, obj.Label, obj.Box, derived.Width, derived.Height)
		}
	}

	slot, err := a.store.Reserve(ctx, sample)
	if err != nil {
		return nil, err
	}
	derived.Index = slot.Index
	derived.ImagePath = slot.ImagePath
	derived.AnnotationPath = slot.AnnotationPath

	if err := a.store.WriteImage(ctx, slot, newImg, format); err != nil {
		if relErr := a.store.Release(ctx, slot); relErr != nil {
			return nil, errors.Wrapf(err, "release failed: %v", relErr)
		}
		return nil, err
	}

	if err := a.store.WriteAnnotation(ctx, derived); err != nil {
		// Изображение уже записано: сообщаем о рассогласовании, файл не удаляем.
		return nil, &entity.IOError{
			Op:   "write annotation for",
			Path: derived.ImagePath,
			Err:  err,
		}
	}

	for _, obj := range derived.Dropped {
		a.reporter.ObjectDropped(sample, obj)
	}
	a.reporter.SampleAugmented(derived)

	return derived, nil
}

// matchObjects сопоставляет исходные объекты с выжившими метками по имени.
// Для каждого объекта берётся первое ещё не занятое совпадение; при нескольких
// объектах одного класса соответствие рамок не гарантируется.
func matchObjects(sample *entity.Sample, newBoxes []entity.Box, newLabels []string) *entity.DerivedSample {
	derived := &entity.DerivedSample{Source: sample}
	used := make([]bool, len(newLabels))

	for _, obj := range sample.Objects {
		match := -1
		for i, label := range newLabels {
			if !used[i] && label == obj.Label {
				match = i
				break
			}
		}
		if match < 0 {
			derived.Dropped = append(derived.Dropped, obj)
			continue
		}
		used[match] = true
		derived.Objects = append(derived.Objects, entity.Object{
			Label: obj.Label,
			Box:   newBoxes[match],
			Index: obj.Index,
		})
	}

	return derived
}
