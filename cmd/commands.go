package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"voc-balancer/config"
	"voc-balancer/internal/container"
	"voc-balancer/internal/infrastructure/observe"
)

var errLabelsFailed = errors.New("some labels did not reach the minimum")

func newRootCommand(cfg *config.Config) *cobra.Command {
	var log *logrus.Logger

	root := &cobra.Command{
		Use:           "voc-balancer",
		Short:         "Rebalance a Pascal VOC dataset by augmenting under-represented labels",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if log, err = observe.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat); err != nil {
				return err
			}
			logrus.SetOutput(cmd.ErrOrStderr())
			logrus.SetFormatter(log.Formatter)

			if err := cfg.ResolveLabels(); err != nil {
				return err
			}
			return cfg.Validate()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.ImageDir, "images", cfg.ImageDir, "directory with images")
	flags.StringVar(&cfg.LabelDir, "labels", cfg.LabelDir, "directory with VOC annotations")
	flags.StringSliceVar(&cfg.Labels, "label", cfg.Labels, "label vocabulary, in processing order")
	flags.StringVar(&cfg.LabelsFile, "labels-file", cfg.LabelsFile, "YAML file with a labels list")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	root.AddCommand(newBalanceCommand(cfg, &log), newStatsCommand(cfg, &log))
	return root
}

func newBalanceCommand(cfg *config.Config, log **logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Augment samples until every label reaches the minimum object count",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := (*log).WithField("cmd", "balance")

			c, err := container.New(cfg, afero.NewOsFs(), logger)
			if err != nil {
				return err
			}
			if cfg.DryRun {
				logger.Info("dry run: derived samples are kept in memory")
			}

			result, err := c.Balancer.Rebalance(ctx)
			if err != nil {
				return err
			}

			logger.WithFields(logrus.Fields{
				"augmented": result.Augmented,
				"failed":    len(result.Failed),
			}).Info("balancing finished")

			if c.Notifier != nil {
				if err := c.Notifier.Notify(ctx, result); err != nil {
					logger.WithError(err).Warn("failed to send telegram summary")
				}
			}

			if !result.OK() {
				return errors.Wrap(errLabelsFailed, strings.Join(result.FailedLabels(), ", "))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&cfg.MinObjCount, "min-count", cfg.MinObjCount, "minimum number of objects per label")
	flags.StringVar(&cfg.Engine, "engine", cfg.Engine, "augmentation engine: native or gocv")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed, 0 for time based")
	flags.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "keep written files in memory")
	flags.IntVar(&cfg.JPEGQuality, "jpeg-quality", cfg.JPEGQuality, "JPEG quality of derived images")
	return cmd
}

func newStatsCommand(cfg *config.Config, log **logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print label histograms without augmenting",
		RunE: func(cmd *cobra.Command, args []string) error {
			// статистике не нужны OpenCV и уведомления
			statsCfg := *cfg
			statsCfg.Engine = config.EngineNative
			statsCfg.TelegramToken = ""

			c, err := container.New(&statsCfg, afero.NewReadOnlyFs(afero.NewOsFs()), (*log).WithField("cmd", "stats"))
			if err != nil {
				return err
			}

			nonAug, all, err := c.Balancer.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "non-augmented: %s\n", nonAug)
			fmt.Fprintf(out, "all:           %s\n", all)
			for _, label := range all.Deficient(cfg.Labels, cfg.MinObjCount) {
				fmt.Fprintf(out, "below %d: %s (%d)\n", cfg.MinObjCount, label, all.Get(label))
			}
			return nil
		},
	}
}
