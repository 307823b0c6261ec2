package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLossCurve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loss.png")
	require.NoError(t, LossCurve([]float64{1.1, 0.8, 0.6, 0.5}, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestLossCurveEmptyHistory(t *testing.T) {
	err := LossCurve(nil, filepath.Join(t.TempDir(), "loss.png"))
	assert.Error(t, err)
}
