package report

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"calldesk/query"
)

const (
	chartWidth  = 480
	barHeight   = 18
	barGap      = 8
	chartMargin = 12
	labelGutter = 36
)

var (
	chartBG    = color.RGBA{R: 0xF0, G: 0xF8, B: 0xFF, A: 0xFF}
	barColor   = color.RGBA{R: 0x2E, G: 0x8B, B: 0x57, A: 0xFF}
	labelColor = color.RGBA{A: 0xFF}
)

// chartPNG renders a horizontal bar chart of the counterpart frequencies,
// one bar per rank. Labels are rank and count only; names live in the
// table next to the chart because the bitmap face has no CJK glyphs.
func chartPNG(counts []query.Count) ([]byte, error) {
	if len(counts) == 0 {
		return nil, nil
	}
	height := 2*chartMargin + len(counts)*(barHeight+barGap) - barGap
	img := image.NewRGBA(image.Rect(0, 0, chartWidth, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: chartBG}, image.Point{}, draw.Src)

	max := counts[0].Calls
	for _, c := range counts {
		if c.Calls > max {
			max = c.Calls
		}
	}
	if max == 0 {
		max = 1
	}

	span := chartWidth - 2*chartMargin - labelGutter - 40
	for i, c := range counts {
		y := chartMargin + i*(barHeight+barGap)
		w := c.Calls * span / max
		if w < 2 {
			w = 2
		}
		bar := image.Rect(chartMargin+labelGutter, y, chartMargin+labelGutter+w, y+barHeight)
		draw.Draw(img, bar, &image.Uniform{C: barColor}, image.Point{}, draw.Src)

		drawLabel(img, chartMargin, y+barHeight-4, fmt.Sprintf("#%d", i+1))
		drawLabel(img, chartMargin+labelGutter+w+6, y+barHeight-4, fmt.Sprintf("%d", c.Calls))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("report: encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

func drawLabel(img *image.RGBA, x, y int, text string) {
	d := font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{C: labelColor},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
