package storage

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"voc-balancer/internal/domain/entity"
	"voc-balancer/internal/domain/port"
)

// ErrNoFreeSlot все номера _augN до MaxAugIndex заняты
var ErrNoFreeSlot = errors.New("no free augmentation slot")

// VOCStore хранилище набора данных в формате Pascal VOC
type VOCStore struct {
	Fs          afero.Fs
	ImageDir    string
	LabelDir    string
	MaxAugIndex int // верхняя граница поиска свободного номера
	JPEGQuality int

	vocabulary map[string]struct{}
}

// NewVOCStore создаёт хранилище поверх файловой системы fs
func NewVOCStore(fs afero.Fs, imageDir, labelDir string, vocabulary []string) *VOCStore {
	vocab := make(map[string]struct{}, len(vocabulary))
	for _, label := range vocabulary {
		vocab[label] = struct{}{}
	}
	return &VOCStore{
		Fs:          fs,
		ImageDir:    imageDir,
		LabelDir:    labelDir,
		MaxAugIndex: 10000,
		JPEGQuality: 95,
		vocabulary:  vocab,
	}
}

// LoadSamples читает все *.xml из LabelDir в лексикографическом порядке
func (s *VOCStore) LoadSamples(ctx context.Context, includeAugmented bool) ([]*entity.Sample, []string, error) {
	entries, err := afero.ReadDir(s.Fs, s.LabelDir)
	if err != nil {
		return nil, nil, &entity.IOError{Op: "read dir", Path: s.LabelDir, Err: err}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	seen := make(map[string]struct{})
	samples := make([]*entity.Sample, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
			continue
		}
		if !includeAugmented && IsAugmented(e.Name()) {
			continue
		}

		sample, err := s.readSample(filepath.Join(s.LabelDir, e.Name()))
		if err != nil {
			return nil, nil, err
		}
		for _, obj := range sample.Objects {
			seen[obj.Label] = struct{}{}
		}
		samples = append(samples, sample)
	}

	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	return samples, labels, nil
}

func (s *VOCStore) readDocument(path string) (*xmlNode, error) {
	data, err := afero.ReadFile(s.Fs, path)
	if err != nil {
		return nil, &entity.IOError{Op: "read", Path: path, Err: err}
	}
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, &entity.ParseError{Path: path, Err: err}
	}
	return doc, nil
}

func (s *VOCStore) readSample(path string) (*entity.Sample, error) {
	doc, err := s.readDocument(path)
	if err != nil {
		return nil, err
	}

	width, height, err := doc.size()
	if err != nil {
		return nil, &entity.ParseError{Path: path, Err: err}
	}

	filename := filepath.Base(doc.childText("filename"))
	if filename == "" || filename == "." {
		filename = stem(path) + ".jpg"
	}

	sample := &entity.Sample{
		ImagePath:      filepath.Join(s.ImageDir, filename),
		AnnotationPath: path,
		Width:          width,
		Height:         height,
		Augmented:      IsAugmented(path),
	}

	for i, obj := range doc.objects() {
		label := obj.childText("name")
		if _, ok := s.vocabulary[label]; !ok {
			return nil, &entity.ParseError{Path: path, Err: errors.Errorf("label %q is not in the vocabulary", label)}
		}
		box, err := obj.box()
		if err != nil {
			return nil, &entity.ParseError{Path: path, Err: errors.Wrapf(err, "object %d", i)}
		}
		sample.Objects = append(sample.Objects, entity.Object{Label: label, Box: box, Index: i})
	}

	return sample, nil
}

// ReadImage декодирует изображение и возвращает его формат
func (s *VOCStore) ReadImage(ctx context.Context, path string) (image.Image, string, error) {
	_ = ctx
	f, err := s.Fs.Open(path)
	if err != nil {
		return nil, "", &entity.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", &entity.IOError{Op: "decode", Path: path, Err: err}
	}
	return img, format, nil
}

// Reserve ищет первый свободный номер начиная с 0. Файл изображения создаётся
// эксклюзивно, поэтому два вызова подряд не вернут один и тот же слот.
func (s *VOCStore) Reserve(ctx context.Context, sample *entity.Sample) (port.Slot, error) {
	for i := 0; i < s.MaxAugIndex; i++ {
		if err := ctx.Err(); err != nil {
			return port.Slot{}, err
		}

		slot := port.Slot{
			Index:          i,
			ImagePath:      AugmentedPath(sample.ImagePath, i),
			AnnotationPath: AugmentedPath(sample.AnnotationPath, i),
		}

		taken, err := afero.Exists(s.Fs, slot.AnnotationPath)
		if err != nil {
			return port.Slot{}, &entity.IOError{Op: "stat", Path: slot.AnnotationPath, Err: err}
		}
		if taken {
			continue
		}

		f, err := s.Fs.OpenFile(slot.ImagePath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err != nil {
			if os.IsExist(err) {
				continue
			}
			return port.Slot{}, &entity.IOError{Op: "reserve", Path: slot.ImagePath, Err: err}
		}
		if err := f.Close(); err != nil {
			return port.Slot{}, &entity.IOError{Op: "reserve", Path: slot.ImagePath, Err: err}
		}
		return slot, nil
	}

	return port.Slot{}, &entity.IOError{Op: "reserve", Path: sample.ImagePath, Err: ErrNoFreeSlot}
}

// Release удаляет заготовку файла изображения
func (s *VOCStore) Release(ctx context.Context, slot port.Slot) error {
	_ = ctx
	if err := s.Fs.Remove(slot.ImagePath); err != nil && !os.IsNotExist(err) {
		return &entity.IOError{Op: "release", Path: slot.ImagePath, Err: err}
	}
	return nil
}

// WriteImage кодирует изображение в исходном формате
func (s *VOCStore) WriteImage(ctx context.Context, slot port.Slot, img image.Image, format string) error {
	_ = ctx
	f, err := s.Fs.OpenFile(slot.ImagePath, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return &entity.IOError{Op: "write", Path: slot.ImagePath, Err: err}
	}

	if err := encodeImage(f, img, format, s.JPEGQuality); err != nil {
		f.Close()
		return &entity.IOError{Op: "encode", Path: slot.ImagePath, Err: err}
	}
	if err := f.Close(); err != nil {
		return &entity.IOError{Op: "write", Path: slot.ImagePath, Err: err}
	}
	return nil
}

// WriteAnnotation перечитывает исходную разметку и сохраняет её копию с изменёнными
// путями, размерами и рамками. Объекты, не пережившие аугментацию, удаляются.
func (s *VOCStore) WriteAnnotation(ctx context.Context, derived *entity.DerivedSample) error {
	_ = ctx
	doc, err := s.readDocument(derived.Source.AnnotationPath)
	if err != nil {
		return err
	}

	doc.setChild("filename", filepath.Base(derived.ImagePath))
	doc.setExisting("path", derived.ImagePath)
	doc.setSize(derived.Width, derived.Height)

	kept := make(map[int]entity.Box, len(derived.Objects))
	for _, obj := range derived.Objects {
		kept[obj.Index] = obj.Box
	}
	doc.keepObjects(func(index int, obj *xmlNode) bool {
		box, ok := kept[index]
		if ok {
			obj.setBox(box)
		}
		return ok
	})

	data, err := encodeDocument(doc)
	if err != nil {
		return &entity.IOError{Op: "encode", Path: derived.AnnotationPath, Err: err}
	}
	if err := afero.WriteFile(s.Fs, derived.AnnotationPath, data, 0o644); err != nil {
		return &entity.IOError{Op: "write", Path: derived.AnnotationPath, Err: err}
	}
	return nil
}

// Проверка реализации интерфейса
var _ port.SampleStore = (*VOCStore)(nil)
