package codegen

import "fmt"

func (g *Generator) postProcess(blocks []*Block) []*Block {
	if g.frames.hasPending() {
		blocks = g.declareFrames(blocks)
	}
	if g.opts.BlankLinesBetweenBlocks && len(blocks) > 0 {
		blocks = interleaveBlankLines(blocks)
	}
	return blocks
}

// declareFrames puts the frame lookup at the head of the first block that uses each
// frame. A frame is declared once; later blocks in the same frame reuse the variable.
func (g *Generator) declareFrames(blocks []*Block) []*Block {
	out := make([]*Block, 0, len(blocks))
	fetch := "let frames = await page.frames()"

	for _, b := range blocks {
		id, url, ok := g.firstPendingFrame(b)
		if !ok {
			out = append(out, b)
			continue
		}

		declared := NewBlock(b.FrameID(),
			Line{Type: LineFrameSet, Value: fetch},
			Line{Type: LineFrameSet, Value: fmt.Sprintf("const %s = frames.find(f => f.url() === '%s')", frameVar(id), escape(url))},
		)
		for _, l := range b.Lines() {
			declared.AddLine(l)
		}
		out = append(out, declared)

		// frames is already in scope after the first declaration
		fetch = "frames = await page.frames()"
	}
	return out
}

func (g *Generator) firstPendingFrame(b *Block) (int, string, bool) {
	for _, l := range b.Lines() {
		if l.FrameID == 0 {
			continue
		}
		if url, ok := g.frames.take(l.FrameID); ok {
			return l.FrameID, url, true
		}
	}
	return 0, "", false
}

// interleaveBlankLines surrounds every block with blank blocks.
func interleaveBlankLines(blocks []*Block) []*Block {
	out := make([]*Block, 0, 2*len(blocks)+1)
	out = append(out, blank())
	for _, b := range blocks {
		out = append(out, b, blank())
	}
	return out
}

// Flatten linearizes blocks into their lines.
func Flatten(blocks []*Block) []Line {
	var lines []Line
	for _, b := range blocks {
		lines = append(lines, b.Lines()...)
	}
	return lines
}
