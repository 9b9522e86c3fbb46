package replay

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/v0xg/puppetrec/internal/recording"
	"go.uber.org/zap"
)

// Options configures a replay.
type Options struct {
	Headless bool
	Timeout  time.Duration // per action
	Width    int
	Height   int
	GIF      string // output path; empty disables capture
}

// DefaultOptions returns a headless 1280x720 replay with a 30s action timeout.
func DefaultOptions() Options {
	return Options{
		Headless: true,
		Timeout:  30 * time.Second,
		Width:    1280,
		Height:   720,
	}
}

// StepError records an action that failed during replay.
type StepError struct {
	Index int // event index
	Err   error
}

func (e StepError) Error() string {
	return fmt.Sprintf("event %d: %v", e.Index, e.Err)
}

func (e StepError) Unwrap() error {
	return e.Err
}

// Result summarizes a replay.
type Result struct {
	Executed  int
	Failed    []StepError
	Snapshots []Snapshot
	GIFSize   int64
}

// Runner replays recordings in a browser.
type Runner struct {
	opts   Options
	logger *zap.Logger
}

// NewRunner creates a runner. Zero sizes and timeout fall back to DefaultOptions.
func NewRunner(opts Options, logger *zap.Logger) *Runner {
	def := DefaultOptions()
	if opts.Width == 0 {
		opts.Width = def.Width
	}
	if opts.Height == 0 {
		opts.Height = def.Height
	}
	if opts.Timeout == 0 {
		opts.Timeout = def.Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{opts: opts, logger: logger}
}

// Run launches a browser and executes every planned action. A failing action is
// recorded in the result and replay continues with the next one.
func (r *Runner) Run(ctx context.Context, events []recording.Event) (*Result, error) {
	actions := Plan(events)
	r.logger.Info("starting replay",
		zap.Int("events", len(events)),
		zap.Int("actions", len(actions)),
		zap.Int("frames", len(Frames(actions))))

	browser, err := Launch(ctx, r.opts)
	if err != nil {
		return nil, err
	}
	defer browser.Close()

	result := &Result{}
	for i, action := range actions {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		click, err := r.execute(ctx, browser, action)
		if err != nil {
			r.logger.Warn("action failed",
				zap.Int("step", i+1),
				zap.Int("event", action.Index),
				zap.String("action", fmt.Sprintf("%T", action.Step)),
				zap.Error(err))
			result.Failed = append(result.Failed, StepError{Index: action.Index, Err: err})
			continue
		}
		result.Executed++
		r.logger.Debug("action done",
			zap.Int("step", i+1),
			zap.String("action", fmt.Sprintf("%T", action.Step)),
			zap.String("comment", action.Comment))

		if r.opts.GIF != "" {
			img, err := captureScreenshot(browser.Page())
			if err != nil {
				r.logger.Warn("screenshot failed", zap.Error(err))
				continue
			}
			result.Snapshots = append(result.Snapshots, Snapshot{Image: img, Click: click})
		}
	}

	if r.opts.GIF != "" {
		size, err := WriteGIF(r.opts.GIF, result.Snapshots, GIFOptions{})
		if err != nil {
			return result, err
		}
		result.GIFSize = size
		r.logger.Info("gif written", zap.String("path", r.opts.GIF), zap.Int64("bytes", size))
	}

	r.logger.Info("replay finished",
		zap.Int("executed", result.Executed),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

// actionContext bounds a single action by the configured timeout.
func (r *Runner) actionContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, r.opts.Timeout)
}

// execute runs one action. It returns the click point for clicks.
func (r *Runner) execute(ctx context.Context, b *Browser, action Action) (*image.Point, error) {
	ctx, cancel := r.actionContext(ctx)
	defer cancel()

	switch s := action.Step.(type) {
	case recording.SetViewport:
		return nil, b.SetViewport(s.Width, s.Height)
	case recording.Navigation:
		return nil, b.Page().Context(ctx).WaitLoad()
	}

	page, err := b.Target(ctx, action)
	if err != nil {
		return nil, err
	}

	switch s := action.Step.(type) {
	case recording.Goto:
		if err := page.Navigate(s.Href); err != nil {
			return nil, fmt.Errorf("failed to navigate to %s: %w", s.Href, err)
		}
		if !action.InFrame() {
			b.resetFrames()
		}
		return nil, page.WaitLoad()
	case recording.Click:
		return clickElement(page, s.Selector)
	case recording.Type:
		return nil, typeInto(page, s.Selector, s.Value)
	case recording.TabKey:
		return nil, typeInto(page, s.Selector, s.Value)
	case recording.Select:
		return nil, selectOption(page, s.Selector, s.Value)
	case recording.Submit:
		return nil, submitForm(page, s.Selector)
	default:
		return nil, fmt.Errorf("unsupported step %T", s)
	}
}

func clickElement(page *rod.Page, selector string) (*image.Point, error) {
	el, err := page.Element(selector)
	if err != nil {
		return nil, fmt.Errorf("element not found: %s", selector)
	}
	if err := el.WaitVisible(); err != nil {
		return nil, fmt.Errorf("element not visible: %s", selector)
	}

	var point *image.Point
	if x, y, err := elementCenter(el); err == nil {
		point = &image.Point{X: x, Y: y}
	}

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return nil, fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return point, nil
}

func typeInto(page *rod.Page, selector, text string) error {
	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("element not found: %s", selector)
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("failed to focus %s: %w", selector, err)
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("failed to type into %s: %w", selector, err)
	}
	return nil
}

func selectOption(page *rod.Page, selector, value string) error {
	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("element not found: %s", selector)
	}
	if err := el.Select([]string{fmt.Sprintf("[value=%q]", value)}, true, rod.SelectorTypeCSSSector); err != nil {
		return fmt.Errorf("failed to select %q in %s: %w", value, selector, err)
	}
	return nil
}

func submitForm(page *rod.Page, selector string) error {
	el, err := page.Element(selector)
	if err != nil {
		return fmt.Errorf("element not found: %s", selector)
	}
	if _, err := el.Eval(`() => this.submit()`); err != nil {
		return fmt.Errorf("failed to submit %s: %w", selector, err)
	}
	return nil
}

func captureScreenshot(page *rod.Page) (image.Image, error) {
	data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return img, nil
}
