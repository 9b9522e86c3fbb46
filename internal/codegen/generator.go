package codegen

import (
	"fmt"
	"strings"

	"github.com/v0xg/puppetrec/internal/recording"
	"go.uber.org/zap"
)

const navigationPromise = "const navigationPromise = page.waitForNavigation()"

var (
	literalEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	commentFolder  = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
)

// Generator compiles recorded events into a Puppeteer script. Its state lives for a
// single Generate call; a Generator must not be shared between goroutines.
type Generator struct {
	opts   Options
	logger *zap.Logger

	blocks        []*Block
	frames        *frameTracker
	hasNavigation bool
}

// New creates a generator. A nil logger disables logging.
func New(opts Options, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		opts:   opts,
		logger: logger,
	}
}

// Compile is shorthand for New(opts, nil).Generate(events).
func Compile(events []recording.Event, opts Options) string {
	return New(opts, nil).Generate(events)
}

// Generate returns the full script for events.
func (g *Generator) Generate(events []recording.Event) string {
	return Render(Flatten(g.Blocks(events)), g.opts)
}

// Blocks compiles events and runs the post-processing passes, returning the final
// block list without the program skeleton.
func (g *Generator) Blocks(events []recording.Event) []*Block {
	g.blocks = nil
	g.frames = newFrameTracker()
	g.hasNavigation = false

	g.logger.Debug("generating code", zap.Int("events", len(events)))

	for i, event := range events {
		g.frames.track(event.FrameID, event.FrameURL)

		block := g.compileEvent(event)
		if block == nil {
			g.logger.Debug("event produced no code",
				zap.Int("index", i),
				zap.String("action", event.Action),
				zap.String("selector", event.Selector))
			continue
		}

		if event.Comments != "" {
			block.AddLineToTop(Line{Type: LineComment, Value: "// " + commentFolder.Replace(event.Comments)})
		}
		g.blocks = append(g.blocks, block)
	}

	if g.hasNavigation && g.opts.WaitForNavigation {
		g.logger.Debug("adding navigation promise declaration")
		g.blocks = append([]*Block{NewBlock(0, Line{Type: LineNavigationPromise, Value: navigationPromise})}, g.blocks...)
	}

	return g.postProcess(g.blocks)
}

func (g *Generator) compileEvent(event recording.Event) *Block {
	step, ok := recording.Classify(event)
	if !ok {
		return nil
	}

	switch s := step.(type) {
	case recording.Submit:
		return g.handleSubmit(s)
	case recording.TabKey:
		return g.handleKeydown(s)
	case recording.Click:
		return g.handleClick(s)
	case recording.Select:
		return g.handleSelect(s)
	case recording.Type:
		return g.handleType(s)
	case recording.Goto:
		return g.handleGoto(s)
	case recording.SetViewport:
		return g.handleViewport(s)
	case recording.Navigation:
		return g.handleNavigation()
	default:
		g.logger.Warn("unhandled step type", zap.String("type", fmt.Sprintf("%T", step)))
		return nil
	}
}

func (g *Generator) handleSubmit(s recording.Submit) *Block {
	return g.block(Line{
		Type:  LineSubmit,
		Value: fmt.Sprintf("await %s.$eval('%s', form => form.submit())", g.frames.current, escape(s.Selector)),
	})
}

func (g *Generator) handleKeydown(s recording.TabKey) *Block {
	return g.block(Line{
		Type:  LineKeydown,
		Value: fmt.Sprintf("await %s.type('%s', '%s')", g.frames.current, escape(s.Selector), escape(s.Value)),
	})
}

func (g *Generator) handleClick(s recording.Click) *Block {
	block := g.block()
	selector := escape(s.Selector)
	if g.opts.WaitForSelectorOnClick {
		block.AddLine(Line{Type: LineClick, Value: fmt.Sprintf("await %s.waitForSelector('%s')", g.frames.current, selector)})
	}
	block.AddLine(Line{Type: LineClick, Value: fmt.Sprintf("await %s.click('%s')", g.frames.current, selector)})
	if g.opts.CustomLineAfterClick != "" {
		block.AddLine(Line{Type: LineCustom, Value: g.opts.CustomLineAfterClick})
	}
	return block
}

func (g *Generator) handleSelect(s recording.Select) *Block {
	return g.block(Line{
		Type:  LineChange,
		Value: fmt.Sprintf("await %s.select('%s', '%s')", g.frames.current, escape(s.Selector), escape(s.Value)),
	})
}

func (g *Generator) handleType(s recording.Type) *Block {
	return g.block(Line{
		Type:  LineChange,
		Value: fmt.Sprintf("await %s.type('%s', '%s')", g.frames.current, escape(s.Selector), escape(s.Value)),
	})
}

func (g *Generator) handleGoto(s recording.Goto) *Block {
	return g.block(Line{
		Type:  LineGoto,
		Value: fmt.Sprintf("await %s.goto('%s')", g.frames.current, escape(s.Href)),
	})
}

func (g *Generator) handleViewport(s recording.SetViewport) *Block {
	return g.block(Line{
		Type:  LineViewport,
		Value: fmt.Sprintf("await %s.setViewport({ width: %d, height: %d })", g.frames.current, s.Width, s.Height),
	})
}

// handleNavigation always records the navigation; it only emits the await when
// navigation waiting is enabled.
func (g *Generator) handleNavigation() *Block {
	g.hasNavigation = true
	if !g.opts.WaitForNavigation {
		return nil
	}
	return g.block(Line{Type: LineNavigation, Value: "await navigationPromise"})
}

func (g *Generator) block(lines ...Line) *Block {
	return NewBlock(g.frames.currentID, lines...)
}

// escape makes s safe inside a single-quoted JavaScript string.
func escape(s string) string {
	return literalEscaper.Replace(s)
}
