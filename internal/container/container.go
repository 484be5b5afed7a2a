package container

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"voc-balancer/config"
	telegram "voc-balancer/internal/api"
	app "voc-balancer/internal/application"
	"voc-balancer/internal/domain/port"
	"voc-balancer/internal/infrastructure/observe"
	"voc-balancer/internal/infrastructure/storage"
	"voc-balancer/internal/infrastructure/vision"
)

type Container struct {
	Store     *storage.VOCStore
	Engine    port.AugmentationEngine
	Augmenter *app.SampleAugmenter
	Balancer  *app.Balancer
	Notifier  port.Notifier // nil, если Telegram не настроен
}

func New(cfg *config.Config, fs afero.Fs, log logrus.FieldLogger) (*Container, error) {
	// В режиме dry-run все записи уходят в память поверх исходного каталога
	if cfg.DryRun {
		fs = afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(fs), afero.NewMemMapFs())
	}

	store := storage.NewVOCStore(fs, cfg.ImageDir, cfg.LabelDir, cfg.Labels)
	store.JPEGQuality = cfg.JPEGQuality

	engine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}

	reporter := observe.NewLogReporter(log)
	augmenter := app.NewSampleAugmenter(store, engine, reporter)
	balancer := app.NewBalancer(store, augmenter, reporter, app.BalanceOptions{
		Vocabulary:  cfg.Labels,
		MinCount:    cfg.MinObjCount,
		StallCycles: cfg.StallCycles,
	})

	c := &Container{
		Store:     store,
		Engine:    engine,
		Augmenter: augmenter,
		Balancer:  balancer,
	}

	if cfg.NotifyEnabled() {
		notifier, err := telegram.NewNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return nil, err
		}
		c.Notifier = notifier
	}

	return c, nil
}

func newEngine(cfg *config.Config) (port.AugmentationEngine, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	switch cfg.Engine {
	case config.EngineGoCV:
		return vision.NewGoCVEngine(seed)
	case config.EngineNative, "":
		return vision.NewAffineEngine(seed), nil
	default:
		return nil, errors.Errorf("unknown augmentation engine %q", cfg.Engine)
	}
}
