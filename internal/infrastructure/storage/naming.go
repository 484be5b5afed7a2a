package storage

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const augTag = "_aug"

var augmentedStem = regexp.MustCompile(`_aug\d+$`)

// IsAugmented сообщает, сгенерирован ли файл балансировщиком (имя заканчивается на _augN)
func IsAugmented(path string) bool {
	return augmentedStem.MatchString(stem(path))
}

// AugmentedPath вставляет _augN перед расширением
func AugmentedPath(path string, index int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s%s%d%s", strings.TrimSuffix(path, ext), augTag, index, ext)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
