package codegen

// Line types tag where a generated line came from. Formatting lines have no type.
const (
	LineSubmit            = "submit"
	LineKeydown           = "keydown"
	LineClick             = "click"
	LineChange            = "change"
	LineGoto              = "goto*"
	LineViewport          = "viewport*"
	LineNavigation        = "navigation*"
	LineNavigationPromise = "navigation-promise*"
	LineFrameSet          = "frame-set*"
	LineComment           = "comment"
	LineCustom            = "custom"
)

// Line is one generated statement.
type Line struct {
	Type    string
	Value   string
	FrameID int
}

// Block is an ordered group of lines generated from the same event. Every line
// inherits the frame id of its block.
type Block struct {
	frameID int
	lines   []Line
}

// NewBlock creates a block bound to frameID holding lines in order.
func NewBlock(frameID int, lines ...Line) *Block {
	b := &Block{frameID: frameID}
	for _, l := range lines {
		b.AddLine(l)
	}
	return b
}

// FrameID returns the frame the block was generated for.
func (b *Block) FrameID() int {
	return b.frameID
}

// AddLine appends a line.
func (b *Block) AddLine(l Line) {
	l.FrameID = b.frameID
	b.lines = append(b.lines, l)
}

// AddLineToTop prepends a line.
func (b *Block) AddLineToTop(l Line) {
	l.FrameID = b.frameID
	b.lines = append([]Line{l}, b.lines...)
}

// Lines returns the block's lines.
func (b *Block) Lines() []Line {
	return b.lines
}

// blank returns a block holding a single empty formatting line.
func blank() *Block {
	return NewBlock(0, Line{})
}
