package replay

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Browser wraps the Rod browser, its page and the child frames resolved so far.
type Browser struct {
	browser *rod.Browser
	page    *rod.Page
	frames  map[int]*rod.Page
}

// Launch starts a browser with a blank page sized to opts.
func Launch(ctx context.Context, opts Options) (*Browser, error) {
	path, _ := launcher.LookPath()
	u, err := launcher.New().Bin(path).Headless(opts.Headless).Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	b := &Browser{browser: browser, page: page, frames: make(map[int]*rod.Page)}
	if err := b.SetViewport(opts.Width, opts.Height); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

// Close cleans up browser resources.
func (b *Browser) Close() {
	if b.page != nil {
		b.page.Close()
	}
	if b.browser != nil {
		b.browser.Close()
	}
}

// Page returns the top-level page.
func (b *Browser) Page() *rod.Page {
	return b.page
}

// SetViewport resizes the top-level page.
func (b *Browser) SetViewport(width, height int) error {
	err := b.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to set viewport: %w", err)
	}
	return nil
}

// Target returns the page or frame an action runs in, bound to ctx. Child frames are
// looked up by URL once and reused for later actions with the same frame id.
func (b *Browser) Target(ctx context.Context, a Action) (*rod.Page, error) {
	if !a.InFrame() {
		return b.page.Context(ctx), nil
	}

	if frame, ok := b.frames[a.FrameID]; ok {
		return frame.Context(ctx), nil
	}

	frame := findFrame(b.page.Context(ctx), a.FrameURL)
	if frame == nil {
		return nil, fmt.Errorf("frame %d not found: no iframe at %s", a.FrameID, a.FrameURL)
	}
	b.frames[a.FrameID] = frame
	return frame.Context(ctx), nil
}

// resetFrames forgets resolved frames after the top-level page navigates.
func (b *Browser) resetFrames() {
	b.frames = make(map[int]*rod.Page)
}

// findFrame searches iframes depth-first for one whose location matches url.
func findFrame(page *rod.Page, url string) *rod.Page {
	iframes, err := page.Elements("iframe")
	if err != nil {
		return nil
	}

	for _, iframe := range iframes {
		frame, err := iframe.Frame()
		if err != nil {
			continue
		}
		if frameURL(frame) == url {
			return frame
		}
		if nested := findFrame(frame, url); nested != nil {
			return nested
		}
	}
	return nil
}

func frameURL(frame *rod.Page) string {
	res, err := frame.Eval(`() => window.location.href`)
	if err != nil {
		return ""
	}
	return res.Value.String()
}

func elementCenter(el *rod.Element) (int, int, error) {
	box, err := el.Shape()
	if err != nil {
		return 0, 0, err
	}

	if len(box.Quads) == 0 {
		return 0, 0, fmt.Errorf("element has no shape")
	}

	quad := box.Quads[0]
	x := int((quad[0] + quad[2] + quad[4] + quad[6]) / 4)
	y := int((quad[1] + quad[3] + quad[5] + quad[7]) / 4)

	return x, y, nil
}
