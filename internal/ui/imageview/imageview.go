// Package imageview draws raster images in the terminal using half-block
// cells: each cell shows two vertically stacked pixels.
package imageview

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"charm.land/lipgloss/v2"
)

const upperHalf = "▀"

// DecodePNG decodes PNG bytes.
func DecodePNG(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return img, nil
}

// Fit returns the cell grid (columns, rows) an image of the given pixel
// size occupies when scaled to fit maxCols x maxRows, keeping its aspect
// ratio. Images are never scaled up.
func Fit(width, height, maxCols, maxRows int) (cols, rows int) {
	if width <= 0 || height <= 0 || maxCols <= 0 || maxRows <= 0 {
		return 0, 0
	}

	maxPixRows := maxRows * 2
	scale := 1.0
	if width > maxCols {
		scale = float64(maxCols) / float64(width)
	}
	if float64(height)*scale > float64(maxPixRows) {
		scale = float64(maxPixRows) / float64(height)
	}

	cols = max(1, int(float64(width)*scale))
	pixRows := max(1, int(float64(height)*scale))
	rows = (pixRows + 1) / 2
	return cols, rows
}

// Render draws img scaled into at most maxCols x maxRows cells.
func Render(img image.Image, maxCols, maxRows int) string {
	b := img.Bounds()
	cols, rows := Fit(b.Dx(), b.Dy(), maxCols, maxRows)
	if cols == 0 || rows == 0 {
		return ""
	}

	pixRows := rows * 2
	sample := func(cx, py int) (int, int) {
		x := b.Min.X + cx*b.Dx()/cols
		y := b.Min.Y + py*b.Dy()/pixRows
		return x, y
	}

	lines := make([]string, 0, rows)
	for r := 0; r < rows; r++ {
		var sb strings.Builder
		for c := 0; c < cols; c++ {
			tx, ty := sample(c, r*2)
			bx, by := sample(c, r*2+1)
			cell := lipgloss.NewStyle().
				Foreground(img.At(tx, ty)).
				Background(img.At(bx, by))
			sb.WriteString(cell.Render(upperHalf))
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}
