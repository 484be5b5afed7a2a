package app

import (
	"context"
	"fmt"
	"image"
	"sync"

	"voc-balancer/internal/domain/entity"
	"voc-balancer/internal/infrastructure/storage"
)

// scriptedEngine возвращает рамки и метки, оставляя только разрешённые keep
type scriptedEngine struct {
	keep  func(label string) bool
	shift int
	size  image.Rectangle
	calls int
}

func (e *scriptedEngine) Apply(ctx context.Context, img image.Image, boxes []entity.Box, labels []string) (image.Image, []entity.Box, []string, error) {
	_ = ctx
	e.calls++
	out := img
	if !e.size.Empty() {
		out = image.NewRGBA(e.size)
	}

	var newBoxes []entity.Box
	var newLabels []string
	for i, label := range labels {
		if e.keep != nil && !e.keep(label) {
			continue
		}
		b := boxes[i]
		newBoxes = append(newBoxes, entity.Box{XMin: b.XMin + e.shift, YMin: b.YMin, XMax: b.XMax + e.shift, YMax: b.YMax})
		newLabels = append(newLabels, label)
	}
	return out, newBoxes, newLabels, nil
}

type recordedDrop struct {
	source string
	label  string
}

type recordingReporter struct {
	mu         sync.Mutex
	histograms map[string]entity.Histogram
	augmented  []*entity.DerivedSample
	dropped    []recordedDrop
	failed     []error
	labelFails map[string]error
	done       map[string]int
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{
		histograms: make(map[string]entity.Histogram),
		labelFails: make(map[string]error),
		done:       make(map[string]int),
	}
}

func (r *recordingReporter) Histogram(stage string, h entity.Histogram) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.histograms[stage] = h.Clone()
}

func (r *recordingReporter) SampleAugmented(d *entity.DerivedSample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.augmented = append(r.augmented, d)
}

func (r *recordingReporter) ObjectDropped(source *entity.Sample, obj entity.Object) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped = append(r.dropped, recordedDrop{source: source.ImagePath, label: obj.Label})
}

func (r *recordingReporter) AugmentFailed(source *entity.Sample, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, err)
}

func (r *recordingReporter) LabelFailed(label string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labelFails[label] = err
}

func (r *recordingReporter) LabelDone(label string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done[label] = count
}

// newSample строит изображение 100x100 с объектами заданных меток
func newSample(name string, labels ...string) *entity.Sample {
	s := &entity.Sample{
		ImagePath:      fmt.Sprintf("/images/%s.png", name),
		AnnotationPath: fmt.Sprintf("/labels/%s.xml", name),
		Width:          100,
		Height:         100,
	}
	for i, label := range labels {
		x := i % 90
		s.Objects = append(s.Objects, entity.Object{
			Label: label,
			Box:   entity.Box{XMin: x, YMin: 10, XMax: x + 5, YMax: 20},
			Index: i,
		})
	}
	return s
}

func repeat(label string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = label
	}
	return out
}

func newStoreWith(samples ...*entity.Sample) *storage.MemorySampleStore {
	store := storage.NewMemorySampleStore()
	for _, s := range samples {
		store.Add(s, image.NewRGBA(image.Rect(0, 0, s.Width, s.Height)))
	}
	return store
}
