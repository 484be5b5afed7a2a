package vision

import (
	"context"
	"image"
	"math/rand"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"voc-balancer/internal/domain/entity"
	"voc-balancer/internal/domain/port"
)

// AffineEngine движок аугментации на чистом Go (golang.org/x/image/draw)
type AffineEngine struct {
	Params       Params
	Interpolator draw.Interpolator

	mu  sync.Mutex
	rng *rand.Rand
}

// NewAffineEngine создаёт движок с заданным зерном генератора
func NewAffineEngine(seed int64) *AffineEngine {
	return &AffineEngine{
		Params:       DefaultParams(),
		Interpolator: draw.BiLinear,
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// Apply применяет случайное преобразование к изображению и рамкам
func (e *AffineEngine) Apply(ctx context.Context, img image.Image, boxes []entity.Box, labels []string) (image.Image, []entity.Box, []string, error) {
	_ = ctx
	if len(boxes) != len(labels) {
		return nil, nil, nil, errors.Wrapf(entity.ErrEngineMismatch, "%d boxes, %d labels", len(boxes), len(labels))
	}
	if img.Bounds().Empty() {
		return nil, nil, nil, errors.New("empty image")
	}

	e.mu.Lock()
	t := e.Params.sample(e.rng, img.Bounds())
	e.mu.Unlock()

	dst := image.NewRGBA(image.Rect(0, 0, t.width, t.height))
	e.Interpolator.Transform(dst, t.m, img, img.Bounds(), draw.Src, nil)

	newBoxes, newLabels := remapBoxes(t, e.Params.MinVisible, boxes, labels)
	return dst, newBoxes, newLabels, nil
}

// Проверка реализации интерфейса
var _ port.AugmentationEngine = (*AffineEngine)(nil)
