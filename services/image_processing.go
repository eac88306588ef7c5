package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"wardrobeapi/recommender"

	"github.com/disintegration/imaging"
)

const (
	colorSampleSize = 64
	// share of the thumbnail, centred, that is assumed to show the garment
	centralRatio = 0.6
	// RGB distance under which a pixel counts as background
	backgroundTolerance = 48.0
)

var ErrEmptyImage = errors.New("image has no visible pixels")

// DominantColor estimates the garment color of a product-style photo. The
// background is estimated from the thumbnail border and ignored, then the
// central area votes on a color family.
func DominantColor(imageBytes []byte) (recommender.ColorFamily, error) {
	img, err := imaging.Decode(bytes.NewReader(imageBytes), imaging.AutoOrientation(true))
	if err != nil {
		return recommender.ColorUnknown, fmt.Errorf("failed to decode image: %w", err)
	}
	thumb := imaging.Fit(img, colorSampleSize, colorSampleSize, imaging.Box)
	bounds := thumb.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return recommender.ColorUnknown, ErrEmptyImage
	}

	bg, ok := borderAverage(thumb)
	if !ok {
		return recommender.ColorUnknown, ErrEmptyImage
	}

	x0 := int(float64(width) * (1 - centralRatio) / 2)
	y0 := int(float64(height) * (1 - centralRatio) / 2)
	x1 := width - x0
	y1 := height - y0

	votes := map[recommender.ColorFamily]int{}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			px := thumb.NRGBAAt(x, y)
			if px.A < 128 {
				continue
			}
			rgb := [3]float64{float64(px.R), float64(px.G), float64(px.B)}
			if distance(rgb, bg) < backgroundTolerance {
				continue
			}
			votes[classifyRGB(rgb)]++
		}
	}

	// the garment fills the frame
	if len(votes) == 0 {
		return classifyRGB(bg), nil
	}

	best := recommender.ColorUnknown
	bestVotes := 0
	// fixed order keeps ties deterministic
	for _, family := range paletteOrder {
		if votes[family] > bestVotes {
			best, bestVotes = family, votes[family]
		}
	}
	return best, nil
}

var paletteOrder = []recommender.ColorFamily{
	recommender.ColorBlack, recommender.ColorWhite, recommender.ColorGray, recommender.ColorBlue,
	recommender.ColorRed, recommender.ColorGreen, recommender.ColorYellow, recommender.ColorPurple,
	recommender.ColorBrown, recommender.ColorBeige, recommender.ColorOrange,
}

func borderAverage(img *image.NRGBA) ([3]float64, bool) {
	b := img.Bounds()
	var sum [3]float64
	n := 0
	add := func(x, y int) {
		px := img.NRGBAAt(x, y)
		if px.A < 128 {
			return
		}
		sum[0] += float64(px.R)
		sum[1] += float64(px.G)
		sum[2] += float64(px.B)
		n++
	}
	for x := b.Min.X; x < b.Max.X; x++ {
		add(x, b.Min.Y)
		add(x, b.Max.Y-1)
	}
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		add(b.Min.X, y)
		add(b.Max.X-1, y)
	}
	if n == 0 {
		return sum, false
	}
	for i := range sum {
		sum[i] /= float64(n)
	}
	return sum, true
}

func distance(a, b [3]float64) float64 {
	dr, dg, db := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// classifyRGB buckets an 8-bit RGB triple into a color family via HSV.
func classifyRGB(rgb [3]float64) recommender.ColorFamily {
	r, g, b := rgb[0]/255, rgb[1]/255, rgb[2]/255
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	v := maxC
	d := maxC - minC
	s := 0.0
	if maxC > 0 {
		s = d / maxC
	}

	if v < 0.2 {
		return recommender.ColorBlack
	}
	if s < 0.15 {
		if v > 0.85 {
			return recommender.ColorWhite
		}
		if v < 0.3 {
			return recommender.ColorBlack
		}
		return recommender.ColorGray
	}

	var h float64
	switch maxC {
	case r:
		h = 60 * math.Mod((g-b)/d, 6)
	case g:
		h = 60*((b-r)/d) + 120
	default:
		h = 60*((r-g)/d) + 240
	}
	if h < 0 {
		h += 360
	}

	switch {
	case h < 15 || h >= 345:
		return recommender.ColorRed
	case h < 45:
		if s < 0.4 && v > 0.7 {
			return recommender.ColorBeige
		}
		if v < 0.6 {
			return recommender.ColorBrown
		}
		return recommender.ColorOrange
	case h < 70:
		if s < 0.4 && v > 0.7 {
			return recommender.ColorBeige
		}
		return recommender.ColorYellow
	case h < 170:
		return recommender.ColorGreen
	case h < 260:
		return recommender.ColorBlue
	case h < 300:
		return recommender.ColorPurple
	default:
		// magenta and pink read as red
		return recommender.ColorRed
	}
}
