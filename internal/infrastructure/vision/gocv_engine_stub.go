//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"
	"image"

	"voc-balancer/internal/domain/entity"
)

var errNoGoCV = errors.New("gocv build tag is not enabled")

// GoCVEngine заглушка движка OpenCV (сборка без тега gocv)
type GoCVEngine struct {
	Params Params
}

// NewGoCVEngine возвращает ошибку, если сборка без тега gocv
func NewGoCVEngine(seed int64) (*GoCVEngine, error) {
	_ = seed
	return nil, errNoGoCV
}

// Apply возвращает ошибку, если сборка без тега gocv
func (e *GoCVEngine) Apply(ctx context.Context, img image.Image, boxes []entity.Box, labels []string) (image.Image, []entity.Box, []string, error) {
	_ = ctx
	_ = img
	_ = boxes
	_ = labels
	return nil, nil, nil, errNoGoCV
}
