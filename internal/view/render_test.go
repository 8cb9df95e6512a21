package view

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/alertboard/internal/model"
)

func TestRenderChartPNG(t *testing.T) {
	c := NewChart()
	c.SetSummary(summary("2025-05-26", 1, 3, "2025-05-27", 2, 6, "2025-05-28", 0, 1))

	var buf bytes.Buffer
	require.NoError(t, RenderChartPNG(c.State(), &buf, 640, 240))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestRenderChartPNG_DegenerateData(t *testing.T) {
	cases := map[string]*model.DailySummary{
		"single day": summary("2025-05-27", 0, 0),
		"all zero":   summary("2025-05-26", 0, 0, "2025-05-27", 0, 0),
		"empty":      model.NewDailySummary(),
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			c := NewChart()
			c.SetSummary(s)
			_, _ = c.Toggle(model.UrgencyLow)

			var buf bytes.Buffer
			require.NoError(t, RenderChartPNG(c.State(), &buf, 0, 0))
			_, err := png.Decode(&buf)
			assert.NoError(t, err)
		})
	}
}

func TestRenderChartPNG_Loading(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, RenderChartPNG(NewChart().State(), &buf, 0, 0), ErrChartLoading)
	assert.Zero(t, buf.Len())
}
