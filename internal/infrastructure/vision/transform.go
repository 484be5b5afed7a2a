package vision

import (
	"image"
	"math"
	"math/rand"

	"golang.org/x/image/math/f64"

	"voc-balancer/internal/domain/entity"
)

// Params границы случайных преобразований
type Params struct {
	FlipProb     float64 // вероятность горизонтального отражения
	MaxScale     float64 // масштаб в пределах [1-MaxScale, 1+MaxScale]
	MaxTranslate float64 // сдвиг в долях стороны
	MaxRotate    float64 // поворот в градусах
	CropProb     float64 // вероятность случайной обрезки
	MinCrop      float64 // минимальная доля стороны после обрезки
	MinVisible   float64 // минимальная видимая доля рамки, иначе объект отбрасывается
}

// DefaultParams параметры по умолчанию
func DefaultParams() Params {
	return Params{
		FlipProb:     0.5,
		MaxScale:     0.2,
		MaxTranslate: 0.2,
		MaxRotate:    10,
		CropProb:     0.3,
		MinCrop:      0.8,
		MinVisible:   0.25,
	}
}

// transform аффинное отображение исходных координат в координаты результата
type transform struct {
	m      f64.Aff3
	width  int
	height int
}

func identity() f64.Aff3 {
	return f64.Aff3{1, 0, 0, 0, 1, 0}
}

func translate(dx, dy float64) f64.Aff3 {
	return f64.Aff3{1, 0, dx, 0, 1, dy}
}

func scale(sx, sy float64) f64.Aff3 {
	return f64.Aff3{sx, 0, 0, 0, sy, 0}
}

func rotate(rad float64) f64.Aff3 {
	sin, cos := math.Sincos(rad)
	return f64.Aff3{cos, -sin, 0, sin, cos, 0}
}

// then возвращает композицию: сначала a, затем b
func then(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		b[0]*a[0] + b[1]*a[3],
		b[0]*a[1] + b[1]*a[4],
		b[0]*a[2] + b[1]*a[5] + b[2],
		b[3]*a[0] + b[4]*a[3],
		b[3]*a[1] + b[4]*a[4],
		b[3]*a[2] + b[4]*a[5] + b[5],
	}
}

func apply(m f64.Aff3, x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// sample выбирает случайное преобразование для изображения с границами b
func (p Params) sample(rng *rand.Rand, b image.Rectangle) transform {
	w, h := float64(b.Dx()), float64(b.Dy())
	cx, cy := w/2, h/2

	m := translate(-float64(b.Min.X)-cx, -float64(b.Min.Y)-cy)
	if rng.Float64() < p.FlipProb {
		m = then(m, scale(-1, 1))
	}
	s := uniform(rng, 1-p.MaxScale, 1+p.MaxScale)
	m = then(m, scale(s, s))
	m = then(m, rotate(uniform(rng, -p.MaxRotate, p.MaxRotate)*math.Pi/180))
	tx := uniform(rng, -p.MaxTranslate, p.MaxTranslate) * w
	ty := uniform(rng, -p.MaxTranslate, p.MaxTranslate) * h
	m = then(m, translate(cx+tx, cy+ty))

	t := transform{m: m, width: b.Dx(), height: b.Dy()}
	if p.CropProb > 0 && rng.Float64() < p.CropProb {
		cw := maxInt(1, int(w*uniform(rng, p.MinCrop, 1)))
		ch := maxInt(1, int(h*uniform(rng, p.MinCrop, 1)))
		x0 := rng.Intn(b.Dx() - cw + 1)
		y0 := rng.Intn(b.Dy() - ch + 1)
		t.m = then(t.m, translate(-float64(x0), -float64(y0)))
		t.width, t.height = cw, ch
	}
	return t
}

// remapBoxes переносит рамки через преобразование. Рамка отбрасывается вместе с меткой,
// если после обрезки по кадру она вырождена или видна меньше чем на minVisible.
func remapBoxes(t transform, minVisible float64, boxes []entity.Box, labels []string) ([]entity.Box, []string) {
	outBoxes := make([]entity.Box, 0, len(boxes))
	outLabels := make([]string, 0, len(labels))

	maxX, maxY := float64(t.width-1), float64(t.height-1)
	for i, b := range boxes {
		x0, y0, x1, y1 := hull(t.m, b)
		full := (x1 - x0) * (y1 - y0)
		if full <= 0 {
			continue
		}

		cx0, cy0 := clamp(x0, 0, maxX), clamp(y0, 0, maxY)
		cx1, cy1 := clamp(x1, 0, maxX), clamp(y1, 0, maxY)
		if (cx1-cx0)*(cy1-cy0)/full < minVisible {
			continue
		}

		nb := entity.Box{
			XMin: int(math.Round(cx0)),
			YMin: int(math.Round(cy0)),
			XMax: int(math.Round(cx1)),
			YMax: int(math.Round(cy1)),
		}
		if !nb.Within(t.width, t.height) {
			continue
		}
		outBoxes = append(outBoxes, nb)
		outLabels = append(outLabels, labels[i])
	}
	return outBoxes, outLabels
}

// hull ограничивающий прямоугольник четырёх углов рамки после преобразования
func hull(m f64.Aff3, b entity.Box) (float64, float64, float64, float64) {
	xs := [4]float64{}
	ys := [4]float64{}
	xs[0], ys[0] = apply(m, float64(b.XMin), float64(b.YMin))
	xs[1], ys[1] = apply(m, float64(b.XMax), float64(b.YMin))
	xs[2], ys[2] = apply(m, float64(b.XMin), float64(b.YMax))
	xs[3], ys[3] = apply(m, float64(b.XMax), float64(b.YMax))

	x0, y0, x1, y1 := xs[0], ys[0], xs[0], ys[0]
	for i := 1; i < 4; i++ {
		x0, x1 = math.Min(x0, xs[i]), math.Max(x1, xs[i])
		y0, y1 = math.Min(y0, ys[i]), math.Max(y1, ys[i])
	}
	return x0, y0, x1, y1
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
