package replay

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

const clickRadius = 15

var clickColor = color.RGBA{66, 133, 244, 255}

// markClick returns a copy of frame with a ring drawn around the click point.
func markClick(frame image.Image, at image.Point) image.Image {
	bounds := frame.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, frame, bounds.Min, draw.Src)

	for angle := 0.0; angle < 360; angle++ {
		rad := angle * math.Pi / 180
		px := at.X + int(math.Round(clickRadius*math.Cos(rad)))
		py := at.Y + int(math.Round(clickRadius*math.Sin(rad)))
		setPixelSafe(result, px, py, clickColor)
		setPixelSafe(result, px+1, py, clickColor)
		setPixelSafe(result, px, py+1, clickColor)
	}
	return result
}

func setPixelSafe(img *image.RGBA, x, y int, c color.RGBA) {
	if (image.Point{X: x, Y: y}).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}
