package display

import (
	"image"
	"image/color"
)

// Cell pitch in dots: a glyph, a cursor row below it, one dot of spacing.
const (
	cellWidth  = GlyphWidth + 1
	cellHeight = GlyphHeight + 2
	margin     = 2
)

// RGBABytesPerPixel is the number of bytes per pixel in RGBA format
const RGBABytesPerPixel = 4

var (
	Backlight = color.RGBA{R: 0x8c, G: 0xc8, B: 0x3c, A: 0xff}
	DotOff    = color.RGBA{R: 0x7c, G: 0xb4, B: 0x34, A: 0xff}
	DotOn     = color.RGBA{R: 0x1c, G: 0x2c, B: 0x10, A: 0xff}
)

// RasterSize returns the image size Rasterize produces at scale.
func RasterSize(scale int) (int, int) {
	if scale < 1 {
		scale = 1
	}
	w := (Columns*cellWidth - 1 + 2*margin) * scale
	h := (Rows*cellHeight - 1 + 2*margin) * scale
	return w, h
}

// Rasterize draws the display contents as a dot matrix image, each dot
// scale x scale pixels.
func Rasterize(lines [Rows]string, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	w, h := RasterSize(scale)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill(img, img.Bounds(), Backlight)

	for row := 0; row < Rows; row++ {
		line := lines[row]
		for col := 0; col < Columns; col++ {
			c := byte(' ')
			if col < len(line) {
				c = line[col]
			}
			g := GlyphFor(c)
			ox := margin + col*cellWidth
			oy := margin + row*cellHeight
			for y := 0; y < GlyphHeight; y++ {
				for x := 0; x < GlyphWidth; x++ {
					dot := DotOff
					if g.Lit(x, y) {
						dot = DotOn
					}
					r := image.Rect((ox+x)*scale, (oy+y)*scale, (ox+x+1)*scale, (oy+y+1)*scale)
					fill(img, r, dot)
				}
			}
		}
	}
	return img
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Pix[off] = c.R
			img.Pix[off+1] = c.G
			img.Pix[off+2] = c.B
			img.Pix[off+3] = c.A
			off += RGBABytesPerPixel
		}
	}
}
