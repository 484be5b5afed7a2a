package entity

import (
	"fmt"
	"sort"
	"strings"
)

// Histogram количество объектов каждого класса в наборе изображений
type Histogram map[string]int

// NewHistogram создаёт гистограмму с нулями для всех меток словаря
func NewHistogram(vocabulary []string) Histogram {
	h := make(Histogram, len(vocabulary))
	for _, label := range vocabulary {
		h[label] = 0
	}
	return h
}

// Add увеличивает счётчики для каждой метки из списка
func (h Histogram) Add(labels []string) {
	for _, label := range labels {
		h[label]++
	}
}

// AddSample учитывает все объекты изображения
func (h Histogram) AddSample(s *Sample) {
	h.Add(s.Labels())
}

// Get возвращает счётчик метки (0 для неизвестной)
func (h Histogram) Get(label string) int {
	return h[label]
}

// Total сумма по всем меткам
func (h Histogram) Total() int {
	total := 0
	for _, n := range h {
		total += n
	}
	return total
}

// Clone возвращает независимую копию
func (h Histogram) Clone() Histogram {
	c := make(Histogram, len(h))
	for k, v := range h {
		c[k] = v
	}
	return c
}

// Deficient возвращает метки словаря, у которых меньше min объектов, в порядке словаря
func (h Histogram) Deficient(vocabulary []string, min int) []string {
	var out []string
	for _, label := range vocabulary {
		if h[label] < min {
			out = append(out, label)
		}
	}
	return out
}

// BuildHistogram считает объекты по всем изображениям
func BuildHistogram(vocabulary []string, samples []*Sample) Histogram {
	h := NewHistogram(vocabulary)
	for _, s := range samples {
		h.AddSample(s)
	}
	return h
}

// String выводит пары label=count в алфавитном порядке
func (h Histogram) String() string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, h[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
