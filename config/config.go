package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	EngineNative = "native"
	EngineGoCV   = "gocv"
)

type Config struct {
	ImageDir       string
	LabelDir       string
	Labels         []string
	LabelsFile     string
	MinObjCount    int
	Engine         string
	Seed           int64
	DryRun         bool
	LogLevel       string
	LogFormat      string
	JPEGQuality    int
	StallCycles    int
	TelegramToken  string
	TelegramChatID int64
}

// labelsFile формат YAML-файла со словарём меток
type labelsFile struct {
	Labels []string `yaml:"labels"`
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		ImageDir:      os.Getenv("IMAGE_DIR"),
		LabelDir:      os.Getenv("LABEL_DIR"),
		Labels:        SplitLabels(os.Getenv("LABELS")),
		LabelsFile:    os.Getenv("LABELS_FILE"),
		Engine:        envOr("AUG_ENGINE", EngineNative),
		LogLevel:      envOr("LOG_LEVEL", "info"),
		LogFormat:     envOr("LOG_FORMAT", "text"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
	}

	var err error
	if cfg.MinObjCount, err = envInt("MIN_OBJ_COUNT", 100); err != nil {
		return nil, err
	}
	if cfg.JPEGQuality, err = envInt("JPEG_QUALITY", 95); err != nil {
		return nil, err
	}
	if cfg.StallCycles, err = envInt("STALL_CYCLES", 3); err != nil {
		return nil, err
	}
	if cfg.Seed, err = envInt64("AUG_SEED", 0); err != nil {
		return nil, err
	}
	if cfg.TelegramChatID, err = envInt64("TELEGRAM_CHAT_ID", 0); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ResolveLabels дополняет словарь метками из LabelsFile, сохраняя порядок и убирая повторы
func (c *Config) ResolveLabels() error {
	if c.LabelsFile == "" {
		return nil
	}

	data, err := os.ReadFile(c.LabelsFile)
	if err != nil {
		return errors.Wrap(err, "read labels file")
	}
	var lf labelsFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return errors.Wrapf(err, "parse labels file %s", c.LabelsFile)
	}

	c.Labels = dedupe(append(c.Labels, lf.Labels...))
	return nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.ImageDir == "" {
		return errors.New("IMAGE_DIR is required")
	}
	if c.LabelDir == "" {
		return errors.New("LABEL_DIR is required")
	}
	if len(c.Labels) == 0 {
		return errors.New("LABELS or LABELS_FILE is required")
	}
	if c.MinObjCount <= 0 {
		return errors.New("MIN_OBJ_COUNT must be positive")
	}
	if c.Engine != EngineNative && c.Engine != EngineGoCV {
		return errors.Errorf("unknown augmentation engine %q", c.Engine)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return errors.New("JPEG_QUALITY must be within 1..100")
	}
	return nil
}

// NotifyEnabled true, если заданы токен и чат Telegram
func (c *Config) NotifyEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// SplitLabels разбирает список меток через запятую
func SplitLabels(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return dedupe(out)
}

func dedupe(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := labels[:0]
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "%s", key)
	}
	return n, nil
}

func envInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "%s", key)
	}
	return n, nil
}
