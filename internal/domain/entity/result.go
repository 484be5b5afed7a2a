package entity

import "sort"

// Result итог одного запуска балансировки
type Result struct {
	NonAugmented Histogram        // только исходные изображения
	Before       Histogram        // все изображения до запуска
	After        Histogram        // все изображения после запуска
	Augmented    int              // сколько новых пар записано
	Failed       map[string]error // метки, которые не удалось добрать
}

// NewResult создаёт пустой результат
func NewResult() *Result {
	return &Result{
		Failed: make(map[string]error),
	}
}

// FailedLabels возвращает отсортированный список проблемных меток
func (r *Result) FailedLabels() []string {
	labels := make([]string, 0, len(r.Failed))
	for label := range r.Failed {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// OK true, если все метки добраны
func (r *Result) OK() bool {
	return len(r.Failed) == 0
}
