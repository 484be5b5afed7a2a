package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoxWithin(t *testing.T) {
	b := Box{XMin: 0, YMin: 0, XMax: 9, YMax: 9}
	require.True(t, b.Within(10, 10))
	require.False(t, b.Within(9, 10))
	require.False(t, Box{XMin: 5, YMin: 1, XMax: 5, YMax: 3}.Within(10, 10))
	require.False(t, Box{XMin: -1, YMin: 1, XMax: 4, YMax: 3}.Within(10, 10))
}

func TestBoxArea(t *testing.T) {
	require.Equal(t, 12, Box{XMin: 1, YMin: 2, XMax: 5, YMax: 5}.Area())
	require.Equal(t, 0, Box{XMin: 5, YMin: 2, XMax: 1, YMax: 5}.Area())
}

func TestSampleLabelsAndBoxesAligned(t *testing.T) {
	s := &Sample{Objects: []Object{
		{Label: "cat", Box: Box{1, 1, 2, 2}},
		{Label: "dog", Box: Box{3, 3, 4, 4}},
		{Label: "cat", Box: Box{5, 5, 6, 6}},
	}}

	require.Equal(t, []string{"cat", "dog", "cat"}, s.Labels())
	require.Equal(t, Box{3, 3, 4, 4}, s.Boxes()[1])
	require.Equal(t, 2, s.CountOf("cat"))
	require.True(t, s.Has("dog"))
	require.False(t, s.Has("bird"))
}

func TestDerivedSampleHas(t *testing.T) {
	d := &DerivedSample{Objects: []Object{{Label: "cat"}}}
	require.True(t, d.Has("cat"))
	require.False(t, d.Has("dog"))
	require.Equal(t, []string{"cat"}, d.Labels())
}
