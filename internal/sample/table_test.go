package sample

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndColumns(t *testing.T) {
	tab := New("phi", "psi")
	require.NoError(t, tab.Append([]float64{0.1, 0.2}, []float64{0.15, 0.25}))
	require.NoError(t, tab.Append([]float64{0.3, 0.4}, []float64{0.35, 0.45}))

	assert.Equal(t, 2, tab.Dim())
	assert.Equal(t, 2, tab.Len())
	assert.Equal(t, []float64{0.1, 0.3}, tab.Value(0))
	assert.Equal(t, []float64{0.25, 0.45}, tab.Extended(1))

	v, s := tab.At(1, 0)
	assert.Equal(t, 0.3, v)
	assert.Equal(t, 0.35, s)
}

func TestAppendRejectsWidthMismatch(t *testing.T) {
	tab := New("phi")
	assert.Error(t, tab.Append([]float64{1, 2}, []float64{1}))
	assert.Error(t, tab.Append([]float64{1}, []float64{}))
	assert.Equal(t, 0, tab.Len())
}

func TestCSVRoundTrip(t *testing.T) {
	tab := New("phi", "psi")
	require.NoError(t, tab.Append([]float64{-3.0001, 1.5}, []float64{-2.9, 1.4}))
	require.NoError(t, tab.Append([]float64{0.25, -0.75}, []float64{0.3, -0.8}))

	path := filepath.Join(t.TempDir(), "samples.csv")
	require.NoError(t, tab.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, tab.IDs(), got.IDs())
	require.Equal(t, tab.Len(), got.Len())
	for i := 0; i < tab.Len(); i++ {
		for d := 0; d < tab.Dim(); d++ {
			wv, ws := tab.At(i, d)
			gv, gs := got.At(i, d)
			assert.Equal(t, wv, gv)
			assert.Equal(t, ws, gs)
		}
	}
}

func TestLoadRejectsBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("phi,s_psi\n1,2\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	a := New("x")
	b := New("x")
	require.NoError(t, a.Append([]float64{1}, []float64{1.1}))
	require.NoError(t, b.Append([]float64{2}, []float64{2.2}))

	require.NoError(t, a.Merge(b))
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, []float64{1, 2}, a.Value(0))

	c := New("y")
	assert.Error(t, a.Merge(c))
}
