package recording

// Step is the typed form of an event that produces output. Each event kind maps to
// exactly one variant; consumers dispatch with a type switch.
type Step interface {
	step()
}

// Submit submits the form at Selector.
type Submit struct {
	Selector string
}

// TabKey types Value into Selector. Only Tab keydowns are recorded as steps.
type TabKey struct {
	Selector string
	Value    string
}

// Click clicks Selector.
type Click struct {
	Selector string
}

// Select picks Value in the <select> at Selector.
type Select struct {
	Selector string
	Value    string
}

// Type types Value into Selector after a change event.
type Type struct {
	Selector string
	Value    string
}

// Goto navigates the current frame to Href.
type Goto struct {
	Href string
}

// SetViewport resizes the page.
type SetViewport struct {
	Width  int
	Height int
}

// Navigation marks a navigation that should be awaited.
type Navigation struct{}

func (Submit) step()      {}
func (TabKey) step()      {}
func (Click) step()       {}
func (Select) step()      {}
func (Type) step()        {}
func (Goto) step()        {}
func (SetViewport) step() {}
func (Navigation) step()  {}

// Classify converts an event into its step. It reports false for unknown actions and
// for events whose guard fails, such as a submit on anything but a FORM.
func Classify(e Event) (Step, bool) {
	switch e.Action {
	case ActionSubmit:
		if e.TagName == "FORM" {
			return Submit{Selector: e.Selector}, true
		}
	case ActionKeydown:
		if e.KeyCode == KeyCodeTab {
			return TabKey{Selector: e.Selector, Value: e.Text()}, true
		}
	case ActionClick:
		return Click{Selector: e.Selector}, true
	case ActionChange:
		if e.TagName == "SELECT" {
			return Select{Selector: e.Selector, Value: e.Text()}, true
		}
		return Type{Selector: e.Selector, Value: e.Text()}, true
	case ActionGoto:
		return Goto{Href: e.Href}, true
	case ActionViewport:
		if v, ok := e.Viewport(); ok {
			return SetViewport{Width: v.Width, Height: v.Height}, true
		}
	case ActionNavigation:
		return Navigation{}, true
	}
	return nil, false
}
