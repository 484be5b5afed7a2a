package app

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"voc-balancer/internal/domain/entity"
	"voc-balancer/internal/domain/port"
)

// Этапы, о которых Balancer сообщает гистограммой
const (
	StageNonAugmented = "non_augmented"
	StageBefore       = "before"
	StageAfter        = "after"
)

// Augmenter строит производную пару для одного изображения
type Augmenter interface {
	Augment(ctx context.Context, sample *entity.Sample) (*entity.DerivedSample, error)
}

// BalanceOptions параметры балансировки
type BalanceOptions struct {
	Vocabulary  []string // словарь меток в порядке обработки
	MinCount    int      // минимальное число объектов каждого класса
	StallCycles int      // сколько полных проходов по кандидатам без прогресса допускается
}

// Balancer добирает редкие классы аугментацией, пока каждый не достигнет MinCount
type Balancer struct {
	store     port.SampleStore
	augmenter Augmenter
	reporter  port.Reporter
	opts      BalanceOptions
}

// NewBalancer создаёт балансировщик
func NewBalancer(store port.SampleStore, augmenter Augmenter, reporter port.Reporter, opts BalanceOptions) *Balancer {
	if opts.StallCycles <= 0 {
		opts.StallCycles = 3
	}
	return &Balancer{
		store:     store,
		augmenter: augmenter,
		reporter:  reporter,
		opts:      opts,
	}
}

// Stats считает гистограммы исходных и всех изображений без аугментации
func (b *Balancer) Stats(ctx context.Context) (nonAug, all entity.Histogram, err error) {
	nonAugSamples, _, err := b.store.LoadSamples(ctx, false)
	if err != nil {
		return nil, nil, err
	}
	allSamples, _, err := b.store.LoadSamples(ctx, true)
	if err != nil {
		return nil, nil, err
	}
	return entity.BuildHistogram(b.opts.Vocabulary, nonAugSamples),
		entity.BuildHistogram(b.opts.Vocabulary, allSamples), nil
}

// Rebalance выполняет балансировку. Ошибки разбора и чтения каталогов прерывают запуск,
// ошибки отдельных меток собираются в Result.Failed.
func (b *Balancer) Rebalance(ctx context.Context) (*entity.Result, error) {
	nonAugSamples, _, err := b.store.LoadSamples(ctx, false)
	if err != nil {
		return nil, err
	}
	allSamples, _, err := b.store.LoadSamples(ctx, true)
	if err != nil {
		return nil, err
	}

	result := entity.NewResult()
	result.NonAugmented = entity.BuildHistogram(b.opts.Vocabulary, nonAugSamples)
	result.Before = entity.BuildHistogram(b.opts.Vocabulary, allSamples)
	result.After = result.Before.Clone()

	b.reporter.Histogram(StageBefore, result.Before)
	b.reporter.Histogram(StageNonAugmented, result.NonAugmented)

	for _, label := range b.opts.Vocabulary {
		if result.After.Get(label) >= b.opts.MinCount {
			continue
		}

		count, err := b.balanceLabel(ctx, label, nonAugSamples, result)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if entity.IsParseError(err) {
				return nil, err
			}
			result.Failed[label] = err
			b.reporter.LabelFailed(label, err)
			continue
		}
		b.reporter.LabelDone(label, count)
	}

	b.reporter.Histogram(StageAfter, result.After)
	return result, nil
}

// balanceLabel аугментирует кандидатов по кругу, пока счётчик метки не достигнет MinCount.
// Счётчик стартует с числа объектов метки на исходных изображениях.
func (b *Balancer) balanceLabel(ctx context.Context, label string, samples []*entity.Sample, result *entity.Result) (int, error) {
	candidates := Candidates(label, samples)
	if len(candidates) == 0 {
		return 0, errors.Wrapf(entity.ErrNoCandidates, "label %q", label)
	}

	count := result.NonAugmented.Get(label)
	stallLimit := b.opts.StallCycles * len(candidates)
	idle := 0

	for attempt := 0; count < b.opts.MinCount; attempt++ {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		candidate := candidates[attempt%len(candidates)]
		derived, err := b.augmenter.Augment(ctx, candidate)
		if err != nil {
			if entity.IsParseError(err) {
				return count, err
			}
			b.reporter.AugmentFailed(candidate, err)
			idle++
		} else {
			result.Augmented++
			result.After.Add(derived.Labels())
			if derived.Has(label) {
				count++
				idle = 0
			} else {
				idle++
			}
		}

		if idle >= stallLimit {
			return count, errors.Wrapf(entity.ErrStalled, "label %q after %d attempts at %d/%d",
				label, attempt+1, count, b.opts.MinCount)
		}
	}

	return count, nil
}

// Candidates возвращает изображения с меткой label, упорядоченные по возрастанию
// общего числа объектов. При равенстве сохраняется порядок сканирования.
func Candidates(label string, samples []*entity.Sample) []*entity.Sample {
	var out []*entity.Sample
	for _, s := range samples {
		if s.Has(label) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Objects) < len(out[j].Objects)
	})
	return out
}
