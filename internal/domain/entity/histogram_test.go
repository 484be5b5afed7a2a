package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildHistogram(t *testing.T) {
	samples := []*Sample{
		{Objects: []Object{{Label: "cat"}, {Label: "dog"}}},
		{Objects: []Object{{Label: "dog"}}},
	}

	h := BuildHistogram([]string{"cat", "dog", "bird"}, samples)
	require.Equal(t, 1, h.Get("cat"))
	require.Equal(t, 2, h.Get("dog"))
	require.Equal(t, 0, h.Get("bird"))
	require.Equal(t, 3, h.Total())
	require.Equal(t, "{bird=0, cat=1, dog=2}", h.String())
}

func TestHistogramDeficientKeepsVocabularyOrder(t *testing.T) {
	h := Histogram{"cat": 5, "dog": 1, "bird": 0}
	require.Equal(t, []string{"dog", "bird"}, h.Deficient([]string{"dog", "cat", "bird"}, 3))
}

func TestHistogramCloneIsIndependent(t *testing.T) {
	h := Histogram{"cat": 1}
	c := h.Clone()
	c.Add([]string{"cat"})
	require.Equal(t, 1, h.Get("cat"))
	require.Equal(t, 2, c.Get("cat"))
}

func TestErrorKinds(t *testing.T) {
	err := &ParseError{Path: "a.xml", Err: ErrBoxOutOfFrame}
	require.True(t, IsParseError(err))
	require.False(t, IsIOError(err))
	require.ErrorIs(t, err, ErrBoxOutOfFrame)

	ioErr := &IOError{Op: "write", Path: "a.jpg", Err: ErrEngineMismatch}
	require.True(t, IsIOError(ioErr))
	require.Equal(t, "write a.jpg: engine returned misaligned boxes and labels", ioErr.Error())
}
