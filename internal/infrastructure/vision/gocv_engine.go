//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"image"
	"math/rand"
	"sync"

	"gocv.io/x/gocv"

	"voc-balancer/internal/domain/entity"
	"voc-balancer/internal/domain/port"
)

// GoCVEngine движок аугментации на OpenCV
type GoCVEngine struct {
	Params Params

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGoCVEngine создаёт движок OpenCV с заданным зерном генератора
func NewGoCVEngine(seed int64) (*GoCVEngine, error) {
	return &GoCVEngine{
		Params: DefaultParams(),
		rng:    rand.New(rand.NewSource(seed)),
	}, nil
}

// Apply применяет случайное преобразование через gocv.WarpAffine
func (e *GoCVEngine) Apply(ctx context.Context, img image.Image, boxes []entity.Box, labels []string) (image.Image, []entity.Box, []string, error) {
	_ = ctx
	if len(boxes) != len(labels) {
		return nil, nil, nil, entity.ErrEngineMismatch
	}

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, nil, nil, err
	}
	defer src.Close()
	if src.Empty() {
		return nil, nil, nil, errors.New("empty image")
	}

	// Mat всегда начинается с (0,0), поэтому преобразование строим от нулевого начала.
	e.mu.Lock()
	t := e.Params.sample(e.rng, image.Rect(0, 0, src.Cols(), src.Rows()))
	e.mu.Unlock()

	m := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	defer m.Close()
	for i, v := range t.m {
		m.SetDoubleAt(i/3, i%3, v)
	}

	warped := gocv.NewMat()
	defer warped.Close()
	gocv.WarpAffine(src, &warped, m, image.Pt(t.width, t.height))

	out, err := warped.ToImage()
	if err != nil {
		return nil, nil, nil, err
	}

	shifted := make([]entity.Box, len(boxes))
	origin := img.Bounds().Min
	for i, b := range boxes {
		shifted[i] = entity.Box{
			XMin: b.XMin - origin.X,
			YMin: b.YMin - origin.Y,
			XMax: b.XMax - origin.X,
			YMax: b.YMax - origin.Y,
		}
	}
	newBoxes, newLabels := remapBoxes(t, e.Params.MinVisible, shifted, labels)
	return out, newBoxes, newLabels, nil
}

// Проверка реализации интерфейса
var _ port.AugmentationEngine = (*GoCVEngine)(nil)
