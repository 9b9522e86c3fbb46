package recording

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
)

// Action names as sent by the capture agent. Control actions carry a trailing '*'.
const (
	ActionSubmit     = "submit"
	ActionKeydown    = "keydown"
	ActionClick      = "click"
	ActionChange     = "change"
	ActionGoto       = "goto*"
	ActionViewport   = "viewport*"
	ActionNavigation = "navigation*"
)

// KeyCodeTab is the only key code that produces a statement.
const KeyCodeTab = 9

// maxViewportSide bounds decoded viewport dimensions.
const maxViewportSide = math.MaxInt32

// Event is a single recorded interaction. Field names match the capture agent verbatim.
type Event struct {
	Action   string          `json:"action"`
	Selector string          `json:"selector,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"` // string, or {width, height} for viewport*
	Href     string          `json:"href,omitempty"`
	KeyCode  int             `json:"keyCode,omitempty"`
	TagName  string          `json:"tagName,omitempty"`
	FrameID  int             `json:"frameId,omitempty"` // 0 = top-level page
	FrameURL string          `json:"frameUrl,omitempty"`
	Comments string          `json:"comments,omitempty"`
}

// Viewport is the payload of a viewport* event.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Batch is the envelope used by the HTTP API and by exported recordings.
type Batch struct {
	Events []Event `json:"events"`
}

// Text returns the value as plain text. JSON strings are unquoted, other scalars are
// returned verbatim and a missing or null value is empty.
func (e Event) Text() string {
	raw := bytes.TrimSpace(e.Value)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// Viewport decodes a {width, height} value. It reports false when either dimension is
// missing or the value is not an object.
func (e Event) Viewport() (Viewport, bool) {
	raw := bytes.TrimSpace(e.Value)
	if len(raw) == 0 || raw[0] != '{' {
		return Viewport{}, false
	}
	var v struct {
		Width  *float64 `json:"width"`
		Height *float64 `json:"height"`
	}
	if err := json.Unmarshal(raw, &v); err != nil || v.Width == nil || v.Height == nil {
		return Viewport{}, false
	}
	width, ok := viewportSide(*v.Width)
	if !ok {
		return Viewport{}, false
	}
	height, ok := viewportSide(*v.Height)
	if !ok {
		return Viewport{}, false
	}
	return Viewport{Width: width, Height: height}, true
}

// viewportSide rounds f to whole pixels, rejecting negative and oversized values.
func viewportSide(f float64) (int, bool) {
	f = math.Round(f)
	if math.IsNaN(f) || f < 0 || f > maxViewportSide {
		return 0, false
	}
	return int(f), true
}

// StringValue wraps s as an event value.
func StringValue(s string) json.RawMessage {
	data, _ := json.Marshal(s)
	return data
}

// ViewportValue wraps a viewport size as an event value.
func ViewportValue(width, height int) json.RawMessage {
	data, _ := json.Marshal(Viewport{Width: width, Height: height})
	return data
}

// Skipped describes a record that could not be decoded into an Event.
type Skipped struct {
	Index int // position in the input array
	Err   error
}

// Decode reads either a bare JSON array of events or a {"events": [...]} batch.
// Records that are not valid events are dropped; use DecodeAll to see which.
func Decode(r io.Reader) ([]Event, error) {
	events, _, err := DecodeAll(r)
	return events, err
}

// DecodeAll is Decode that also reports the dropped records. Only input that is not
// an array or batch at all is an error.
func DecodeAll(r io.Reader) ([]Event, []Skipped, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read events: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("no events found in input")
	}

	switch data[0] {
	case '[':
		return ParseEvents(data)
	case '{':
		var batch struct {
			Events json.RawMessage `json:"events"`
		}
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, nil, fmt.Errorf("failed to parse event batch: %w", err)
		}
		return ParseEvents(batch.Events)
	default:
		return nil, nil, fmt.Errorf("expected a JSON array or object, got %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

// ParseEvents decodes a JSON array record by record. A record with a wrong field type
// is skipped without affecting its neighbours. Missing or null input yields no events.
func ParseEvents(data json.RawMessage) ([]Event, []Skipped, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []Event{}, nil, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil, fmt.Errorf("failed to parse events: %w", err)
	}

	events := make([]Event, 0, len(records))
	var skipped []Skipped
	for i, raw := range records {
		var e Event
		if err := json.Unmarshal(raw, &e); err != nil {
			skipped = append(skipped, Skipped{Index: i, Err: err})
			continue
		}
		events = append(events, e)
	}
	return events, skipped, nil
}
