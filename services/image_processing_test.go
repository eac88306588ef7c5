package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"wardrobeapi/recommender"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int, fill func(x, y int) color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, fill(x, y))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDominantColorIgnoresBackground(t *testing.T) {
	white := color.NRGBA{255, 255, 255, 255}
	navy := color.NRGBA{20, 30, 110, 255}
	data := pngOf(t, 100, 100, func(x, y int) color.NRGBA {
		if x >= 30 && x < 70 && y >= 30 && y < 70 {
			return navy
		}
		return white
	})

	family, err := DominantColor(data)

	require.NoError(t, err)
	assert.Equal(t, recommender.ColorBlue, family)
}

func TestDominantColorFullFrame(t *testing.T) {
	data := pngOf(t, 40, 40, func(int, int) color.NRGBA { return color.NRGBA{200, 20, 30, 255} })

	family, err := DominantColor(data)

	require.NoError(t, err)
	assert.Equal(t, recommender.ColorRed, family)
}

func TestDominantColorRejectsNonImage(t *testing.T) {
	family, err := DominantColor([]byte("not an image"))

	assert.Error(t, err)
	assert.Equal(t, recommender.ColorUnknown, family)
}

func TestClassifyRGB(t *testing.T) {
	cases := map[recommender.ColorFamily][3]float64{
		recommender.ColorBlack:  {10, 10, 12},
		recommender.ColorWhite:  {245, 245, 240},
		recommender.ColorGray:   {128, 128, 130},
		recommender.ColorGreen:  {40, 160, 60},
		recommender.ColorYellow: {230, 210, 30},
		recommender.ColorPurple: {120, 40, 160},
		recommender.ColorBrown:  {120, 70, 30},
		recommender.ColorBeige:  {225, 205, 170},
		recommender.ColorOrange: {240, 130, 20},
	}
	for want, rgb := range cases {
		assert.Equal(t, want, classifyRGB(rgb), "rgb %v", rgb)
	}
}
