package port

import (
	"context"
	"image"

	"voc-balancer/internal/domain/entity"
)

// AugmentationEngine интерфейс движка геометрических преобразований.
// Возвращённые рамки и метки выровнены по индексу и могут быть короче входных:
// объекты, покинувшие кадр, отбрасываются из обоих списков.
type AugmentationEngine interface {
	Apply(ctx context.Context, img image.Image, boxes []entity.Box, labels []string) (image.Image, []entity.Box, []string, error)
}
