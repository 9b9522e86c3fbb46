package replay

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"os"
	"sort"
	"time"

	"github.com/nfnt/resize"
)

// ErrNoSnapshots is returned when a GIF is requested for an empty replay.
var ErrNoSnapshots = errors.New("no snapshots to encode")

// Snapshot is the page after one replayed action.
type Snapshot struct {
	Image image.Image
	Click *image.Point // set for clicks
}

// GIFOptions configures GIF encoding.
type GIFOptions struct {
	Delay    time.Duration // per snapshot, default 1s
	MaxWidth uint          // default 800; smaller snapshots are not upscaled
}

// WriteGIF encodes snapshots to path and returns the file size. Nothing is left at
// path when encoding fails.
func WriteGIF(path string, snapshots []Snapshot, opts GIFOptions) (int64, error) {
	if len(snapshots) == 0 {
		return 0, ErrNoSnapshots
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if err := EncodeGIF(f, snapshots, opts); err != nil {
		f.Close()
		os.Remove(path)
		return 0, err
	}

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// EncodeGIF writes snapshots as a looping GIF, marking click points.
func EncodeGIF(w io.Writer, snapshots []Snapshot, opts GIFOptions) error {
	if len(snapshots) == 0 {
		return ErrNoSnapshots
	}
	if opts.Delay == 0 {
		opts.Delay = time.Second
	}
	if opts.MaxWidth == 0 {
		opts.MaxWidth = 800
	}

	// GIF delays are in 100ths of a second
	delay := int(opts.Delay / (10 * time.Millisecond))

	bounds := snapshots[0].Image.Bounds()
	outputWidth := opts.MaxWidth
	if uint(bounds.Dx()) < outputWidth {
		outputWidth = uint(bounds.Dx())
	}
	aspectRatio := float64(bounds.Dy()) / float64(bounds.Dx())
	outputHeight := uint(float64(outputWidth) * aspectRatio)

	g := &gif.GIF{
		Image:     make([]*image.Paletted, len(snapshots)),
		Delay:     make([]int, len(snapshots)),
		LoopCount: 0,
	}

	palette := generatePalette(snapshots[0].Image)

	for i, snap := range snapshots {
		frame := snap.Image
		if snap.Click != nil {
			frame = markClick(frame, *snap.Click)
		}

		resized := resize.Resize(outputWidth, outputHeight, frame, resize.Lanczos3)

		paletted := image.NewPaletted(resized.Bounds(), palette)
		draw.FloydSteinberg.Draw(paletted, resized.Bounds(), resized, image.Point{})

		g.Image[i] = paletted
		g.Delay[i] = delay
	}

	return gif.EncodeAll(w, g)
}

// generatePalette builds a 256-color palette from the most frequent colors of img,
// with the click marker color reserved.
func generatePalette(img image.Image) color.Palette {
	bounds := img.Bounds()
	colorMap := make(map[color.RGBA]int)

	// sample every 4th pixel
	step := 4
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, a := img.At(x, y).RGBA()
			c := color.RGBA{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: uint8(a >> 8),
			}
			colorMap[c]++
		}
	}

	type colorCount struct {
		c     color.RGBA
		count int
	}
	colors := make([]colorCount, 0, len(colorMap))
	for c, count := range colorMap {
		colors = append(colors, colorCount{c, count})
	}
	sort.Slice(colors, func(i, j int) bool {
		return colors[i].count > colors[j].count
	})

	palette := make(color.Palette, 0, 256)
	palette = append(palette, color.RGBA{0, 0, 0, 0}, clickColor)

	for i := 0; i < len(colors) && len(palette) < 256; i++ {
		if colors[i].c == clickColor {
			continue
		}
		palette = append(palette, colors[i].c)
	}

	// pad with grayscale
	for len(palette) < 256 {
		gray := uint8(len(palette))
		palette = append(palette, color.RGBA{gray, gray, gray, 255})
	}

	return palette
}
