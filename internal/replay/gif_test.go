package replay

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestMarkClick(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	frame := solid(100, 60, white)

	marked := markClick(frame, image.Point{X: 50, Y: 30})

	assert.Equal(t, clickColor, color.RGBAModel.Convert(marked.At(50+clickRadius, 30)))
	assert.Equal(t, white, color.RGBAModel.Convert(marked.At(50, 30)), "center stays untouched")
	assert.Equal(t, white, color.RGBAModel.Convert(frame.At(50+clickRadius, 30)), "source frame is not modified")
}

func TestMarkClickNearEdge(t *testing.T) {
	frame := solid(10, 10, color.RGBA{0, 0, 0, 255})
	assert.NotPanics(t, func() {
		markClick(frame, image.Point{X: 0, Y: 0})
	})
}

func TestEncodeGIF(t *testing.T) {
	snapshots := []Snapshot{
		{Image: solid(400, 200, color.RGBA{255, 255, 255, 255})},
		{Image: solid(400, 200, color.RGBA{200, 0, 0, 255}), Click: &image.Point{X: 100, Y: 100}},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeGIF(&buf, snapshots, GIFOptions{Delay: 500 * time.Millisecond, MaxWidth: 200}))

	decoded, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	require.Len(t, decoded.Image, 2)
	assert.Equal(t, []int{50, 50}, decoded.Delay)
	assert.Equal(t, 200, decoded.Image[0].Bounds().Dx())
	assert.Equal(t, 100, decoded.Image[0].Bounds().Dy())
}

func TestEncodeGIFDoesNotUpscale(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeGIF(&buf, []Snapshot{{Image: solid(120, 60, color.RGBA{0, 0, 255, 255})}}, GIFOptions{}))

	decoded, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	assert.Equal(t, 120, decoded.Image[0].Bounds().Dx())
	assert.Equal(t, []int{100}, decoded.Delay)
}

func TestEncodeGIFEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, EncodeGIF(&buf, nil, GIFOptions{}), ErrNoSnapshots)
}

func TestWriteGIF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.gif")

	size, err := WriteGIF(path, []Snapshot{{Image: solid(50, 50, color.RGBA{0, 128, 0, 255})}}, GIFOptions{})
	require.NoError(t, err)
	assert.Positive(t, size)
}

func TestWriteGIFWithoutSnapshots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.gif")

	_, err := WriteGIF(path, nil, GIFOptions{})
	assert.ErrorIs(t, err, ErrNoSnapshots)
	assert.NoFileExists(t, path)
}

func TestGeneratePalette(t *testing.T) {
	palette := generatePalette(solid(16, 16, color.RGBA{10, 20, 30, 255}))

	assert.Len(t, palette, 256)
	assert.Equal(t, clickColor, palette[1])
	assert.Equal(t, color.RGBA{10, 20, 30, 255}, palette[2])
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(Options{Headless: true}, nil)

	assert.Equal(t, 1280, r.opts.Width)
	assert.Equal(t, 720, r.opts.Height)
	assert.Equal(t, 30*time.Second, r.opts.Timeout)
	assert.NotNil(t, r.logger)
}

func TestActionContextIsCancelled(t *testing.T) {
	r := NewRunner(Options{Timeout: time.Minute}, nil)

	ctx, cancel := r.actionContext(context.Background())
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)

	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestActionContextFollowsParent(t *testing.T) {
	r := NewRunner(Options{}, nil)

	parent, stop := context.WithCancel(context.Background())
	ctx, cancel := r.actionContext(parent)
	defer cancel()

	stop()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestStepError(t *testing.T) {
	err := StepError{Index: 4, Err: assert.AnError}

	assert.Equal(t, "event 4: "+assert.AnError.Error(), err.Error())
	assert.ErrorIs(t, err, assert.AnError)
}
