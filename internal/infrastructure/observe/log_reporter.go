package observe

import (
	"github.com/sirupsen/logrus"

	"voc-balancer/internal/domain/entity"
	"voc-balancer/internal/domain/port"
)

// LogReporter пишет события балансировки в logrus
type LogReporter struct {
	log logrus.FieldLogger
}

// NewLogReporter создаёт репортер поверх логгера
func NewLogReporter(log logrus.FieldLogger) *LogReporter {
	return &LogReporter{log: log}
}

func (r *LogReporter) Histogram(stage string, h entity.Histogram) {
	r.log.WithFields(logrus.Fields{
		"stage":  stage,
		"total":  h.Total(),
		"counts": h.String(),
	}).Info("label histogram")
}

func (r *LogReporter) SampleAugmented(d *entity.DerivedSample) {
	r.log.WithFields(logrus.Fields{
		"source":  d.Source.ImagePath,
		"image":   d.ImagePath,
		"objects": len(d.Objects),
		"dropped": len(d.Dropped),
	}).Debug("sample augmented")
}

func (r *LogReporter) ObjectDropped(source *entity.Sample, obj entity.Object) {
	r.log.WithFields(logrus.Fields{
		"source": source.ImagePath,
		"label":  obj.Label,
		"index":  obj.Index,
	}).Warn("a bounding box disappeared upon augmentation")
}

func (r *LogReporter) AugmentFailed(source *entity.Sample, err error) {
	r.log.WithError(err).WithField("source", source.ImagePath).Error("augmentation failed, skipping")
}

func (r *LogReporter) LabelFailed(label string, err error) {
	r.log.WithError(err).WithField("label", label).Error("label could not be balanced")
}

func (r *LogReporter) LabelDone(label string, count int) {
	r.log.WithFields(logrus.Fields{
		"label": label,
		"count": count,
	}).Info("label balanced")
}

// Nop репортер, игнорирующий события
type Nop struct{}

func (Nop) Histogram(string, entity.Histogram) {}
func (Nop) SampleAugmented(*entity.DerivedSample) {}
func (Nop) ObjectDropped(*entity.Sample, entity.Object) {}
func (Nop) AugmentFailed(*entity.Sample, error) {}
func (Nop) LabelFailed(string, error) {}
func (Nop) LabelDone(string, int) {}

// Проверка реализации интерфейса
var (
	_ port.Reporter = (*LogReporter)(nil)
	_ port.Reporter = Nop{}
)
