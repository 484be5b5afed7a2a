package entity

import "image"

// Box ограничивающая рамка объекта в пикселях
type Box struct {
	XMin int // левая граница
	YMin int // верхняя граница
	XMax int // правая граница
	YMax int // нижняя граница
}

// Valid проверяет, что рамка не вырождена
func (b Box) Valid() bool {
	return b.XMin < b.XMax && b.YMin < b.YMax
}

// Within проверяет, что рамка целиком лежит в [0,w) x [0,h)
func (b Box) Within(width, height int) bool {
	return b.Valid() &&
		b.XMin >= 0 && b.YMin >= 0 &&
		b.XMax < width && b.YMax < height
}

// Area возвращает площадь рамки
func (b Box) Area() int {
	if !b.Valid() {
		return 0
	}
	return (b.XMax - b.XMin) * (b.YMax - b.YMin)
}

// Rect переводит рамку в image.Rectangle
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.XMin, b.YMin, b.XMax, b.YMax)
}

// Object размеченный объект на изображении
type Object struct {
	Label string // класс объекта
	Box   Box    // рамка
	Index int    // позиция элемента <object> в исходной разметке
}

// Sample изображение вместе с разметкой.
// После загрузки не изменяется: аугментация порождает новый DerivedSample.
type Sample struct {
	ImagePath      string
	AnnotationPath string
	Width          int
	Height         int
	Objects        []Object
	Augmented      bool // сгенерирован предыдущими запусками
}

// Labels возвращает метки объектов в порядке разметки
func (s *Sample) Labels() []string {
	labels := make([]string, len(s.Objects))
	for i, obj := range s.Objects {
		labels[i] = obj.Label
	}
	return labels
}

// Boxes возвращает рамки объектов, выровненные по индексу с Labels
func (s *Sample) Boxes() []Box {
	boxes := make([]Box, len(s.Objects))
	for i, obj := range s.Objects {
		boxes[i] = obj.Box
	}
	return boxes
}

// CountOf считает объекты с заданной меткой
func (s *Sample) CountOf(label string) int {
	n := 0
	for _, obj := range s.Objects {
		if obj.Label == label {
			n++
		}
	}
	return n
}

// Has сообщает, есть ли на изображении объект с меткой
func (s *Sample) Has(label string) bool {
	return s.CountOf(label) > 0
}

// DerivedSample результат аугментации одного Sample
type DerivedSample struct {
	Source         *Sample
	ImagePath      string
	AnnotationPath string
	Index          int // номер N в суффиксе _augN
	Width          int
	Height         int
	Objects        []Object // сохранившиеся объекты с новыми рамками, Index указывает на исходный элемент
	Dropped        []Object // объекты, потерянные при преобразовании
}

// Labels возвращает метки сохранившихся объектов
func (d *DerivedSample) Labels() []string {
	labels := make([]string, len(d.Objects))
	for i, obj := range d.Objects {
		labels[i] = obj.Label
	}
	return labels
}

// Has сообщает, пережил ли аугментацию хотя бы один объект с меткой
func (d *DerivedSample) Has(label string) bool {
	for _, obj := range d.Objects {
		if obj.Label == label {
			return true
		}
	}
	return false
}
