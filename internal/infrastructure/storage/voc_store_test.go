package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"voc-balancer/internal/domain/entity"
)

const catDogXML = `<annotation>
	<folder>images</folder>
	<filename>pet.png</filename>
	<path>/data/images/pet.png</path>
	<source>
		<database>Unknown</database>
	</source>
	<size>
		<width>40</width>
		<height>30</height>
		<depth>3</depth>
	</size>
	<segmented>0</segmented>
	<object>
		<name>cat</name>
		<pose>Unspecified</pose>
		<difficult>0</difficult>
		<bndbox>
			<xmin>1</xmin>
			<ymin>2</ymin>
			<xmax>10</xmax>
			<ymax>12</ymax>
		</bndbox>
	</object>
	<object>
		<name>dog</name>
		<pose>Unspecified</pose>
		<bndbox>
			<xmin>15.4</xmin>
			<ymin>5</ymin>
			<xmax>30</xmax>
			<ymax>25</ymax>
		</bndbox>
	</object>
</annotation>
`

func newTestStore(t *testing.T) (*VOCStore, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/data/images", 0o755))
	require.NoError(t, fs.MkdirAll("/data/labels", 0o755))
	return NewVOCStore(fs, "/data/images", "/data/labels", []string{"cat", "dog"}), fs
}

func writePNG(t *testing.T, fs afero.Fs, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, afero.WriteFile(fs, path, buf.Bytes(), 0o644))
}

func TestLoadSamples_FiltersAugmented(t *testing.T) {
	store, fs := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, afero.WriteFile(fs, "/data/labels/pet.xml", []byte(catDogXML), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/data/labels/pet_aug0.xml", []byte(catDogXML), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/data/labels/notes.txt", []byte("skip"), 0o644))

	samples, labels, err := store.LoadSamples(ctx, false)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	require.Equal(t, []string{"cat", "dog"}, labels)

	s := samples[0]
	require.Equal(t, "/data/images/pet.png", s.ImagePath)
	require.Equal(t, "/data/labels/pet.xml", s.AnnotationPath)
	require.Equal(t, 40, s.Width)
	require.Equal(t, 30, s.Height)
	require.False(t, s.Augmented)
	require.Equal(t, []string{"cat", "dog"}, s.Labels())
	require.Equal(t, entity.Box{XMin: 15, YMin: 5, XMax: 30, YMax: 25}, s.Objects[1].Box)
	require.Equal(t, 1, s.Objects[1].Index)

	all, _, err := store.LoadSamples(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.True(t, all[1].Augmented)
}

func TestLoadSamples_UnknownLabelIsParseError(t *testing.T) {
	store, fs := newTestStore(t)
	doc := strings.Replace(catDogXML, "<name>dog</name>", "<name>horse</name>", 1)
	require.NoError(t, afero.WriteFile(fs, "/data/labels/pet.xml", []byte(doc), 0o644))

	_, _, err := store.LoadSamples(context.Background(), true)
	require.Error(t, err)
	require.True(t, entity.IsParseError(err))
}

func TestLoadSamples_MalformedXML(t *testing.T) {
	store, fs := newTestStore(t)
	require.NoError(t, afero.WriteFile(fs, "/data/labels/pet.xml", []byte("<annotation><size>"), 0o644))

	_, _, err := store.LoadSamples(context.Background(), true)
	require.True(t, entity.IsParseError(err))
}

func TestLoadSamples_DegenerateBox(t *testing.T) {
	store, fs := newTestStore(t)
	doc := strings.Replace(catDogXML, "<xmax>10</xmax>", "<xmax>1</xmax>", 1)
	require.NoError(t, afero.WriteFile(fs, "/data/labels/pet.xml", []byte(doc), 0o644))

	_, _, err := store.LoadSamples(context.Background(), true)
	require.True(t, entity.IsParseError(err))
}

func TestLoadSamples_MissingDirIsIOError(t *testing.T) {
	store := NewVOCStore(afero.NewMemMapFs(), "/nope/images", "/nope/labels", nil)
	_, _, err := store.LoadSamples(context.Background(), true)
	require.True(t, entity.IsIOError(err))
}

func TestReserve_ReturnsDistinctSlots(t *testing.T) {
	store, fs := newTestStore(t)
	ctx := context.Background()
	sample := &entity.Sample{ImagePath: "/data/images/pet.png", AnnotationPath: "/data/labels/pet.xml"}

	first, err := store.Reserve(ctx, sample)
	require.NoError(t, err)
	second, err := store.Reserve(ctx, sample)
	require.NoError(t, err)

	require.Equal(t, 0, first.Index)
	require.Equal(t, 1, second.Index)
	require.Equal(t, "/data/images/pet_aug0.png", first.ImagePath)
	require.Equal(t, "/data/labels/pet_aug1.xml", second.AnnotationPath)

	ok, err := afero.Exists(fs, first.ImagePath)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestReserve_SkipsTakenAnnotation(t *testing.T) {
	store, fs := newTestStore(t)
	require.NoError(t, afero.WriteFile(fs, "/data/labels/pet_aug0.xml", []byte(catDogXML), 0o644))
	sample := &entity.Sample{ImagePath: "/data/images/pet.png", AnnotationPath: "/data/labels/pet.xml"}

	slot, err := store.Reserve(context.Background(), sample)
	require.NoError(t, err)
	require.Equal(t, 1, slot.Index)
}

func TestReserve_Bounded(t *testing.T) {
	store, fs := newTestStore(t)
	store.MaxAugIndex = 2
	require.NoError(t, afero.WriteFile(fs, "/data/images/pet_aug0.png", nil, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/data/images/pet_aug1.png", nil, 0o644))
	sample := &entity.Sample{ImagePath: "/data/images/pet.png", AnnotationPath: "/data/labels/pet.xml"}

	_, err := store.Reserve(context.Background(), sample)
	require.ErrorIs(t, err, ErrNoFreeSlot)
	require.True(t, entity.IsIOError(err))
}

func TestReleaseRemovesPlaceholder(t *testing.T) {
	store, fs := newTestStore(t)
	ctx := context.Background()
	sample := &entity.Sample{ImagePath: "/data/images/pet.png", AnnotationPath: "/data/labels/pet.xml"}

	slot, err := store.Reserve(ctx, sample)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, slot))

	ok, err := afero.Exists(fs, slot.ImagePath)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestImageRoundTrip(t *testing.T) {
	store, fs := newTestStore(t)
	ctx := context.Background()
	writePNG(t, fs, "/data/images/pet.png", 40, 30)

	img, format, err := store.ReadImage(ctx, "/data/images/pet.png")
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, 40, img.Bounds().Dx())

	sample := &entity.Sample{ImagePath: "/data/images/pet.png", AnnotationPath: "/data/labels/pet.xml"}
	slot, err := store.Reserve(ctx, sample)
	require.NoError(t, err)
	require.NoError(t, store.WriteImage(ctx, slot, img, "jpeg"))

	_, format, err = store.ReadImage(ctx, slot.ImagePath)
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
}

func TestReadImage_Missing(t *testing.T) {
	store, _ := newTestStore(t)
	_, _, err := store.ReadImage(context.Background(), "/data/images/none.png")
	require.True(t, entity.IsIOError(err))
}

func TestWriteAnnotation_RewritesAndDrops(t *testing.T) {
	store, fs := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, afero.WriteFile(fs, "/data/labels/pet.xml", []byte(catDogXML), 0o644))

	samples, _, err := store.LoadSamples(ctx, false)
	require.NoError(t, err)
	src := samples[0]

	derived := &entity.DerivedSample{
		Source:         src,
		ImagePath:      "/data/images/pet_aug0.png",
		AnnotationPath: "/data/labels/pet_aug0.xml",
		Width:          36,
		Height:         28,
		Objects:        []entity.Object{{Label: "cat", Index: 0, Box: entity.Box{XMin: 3, YMin: 4, XMax: 11, YMax: 13}}},
		Dropped:        []entity.Object{src.Objects[1]},
	}
	require.NoError(t, store.WriteAnnotation(ctx, derived))

	raw, err := afero.ReadFile(fs, derived.AnnotationPath)
	require.NoError(t, err)
	require.Contains(t, string(raw), "<filename>pet_aug0.png</filename>")
	require.Contains(t, string(raw), "<path>/data/images/pet_aug0.png</path>")
	require.Contains(t, string(raw), "<database>Unknown</database>")
	require.Contains(t, string(raw), "<pose>Unspecified</pose>")
	require.NotContains(t, string(raw), "<name>dog</name>")

	all, _, err := store.LoadSamples(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	aug := all[1]
	require.True(t, aug.Augmented)
	require.Equal(t, 36, aug.Width)
	require.Equal(t, 28, aug.Height)
	require.Equal(t, "/data/images/pet_aug0.png", aug.ImagePath)
	require.Len(t, aug.Objects, 1)
	require.Equal(t, entity.Box{XMin: 3, YMin: 4, XMax: 11, YMax: 13}, aug.Objects[0].Box)
}

func TestWriteAnnotation_MissingSource(t *testing.T) {
	store, _ := newTestStore(t)
	derived := &entity.DerivedSample{
		Source:         &entity.Sample{AnnotationPath: "/data/labels/none.xml"},
		AnnotationPath: "/data/labels/none_aug0.xml",
	}
	err := store.WriteAnnotation(context.Background(), derived)
	require.True(t, entity.IsIOError(err))
}
