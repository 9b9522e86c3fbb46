package codegen

import "fmt"

const pageVar = "page"

type pendingFrame struct {
	id  int
	url string
}

// frameTracker follows the frame each event came from and remembers, in first-seen
// order, which frames still need a declaration in the generated script.
type frameTracker struct {
	current   string
	currentID int
	pending   []pendingFrame
}

func newFrameTracker() *frameTracker {
	return &frameTracker{current: pageVar}
}

// track switches to the frame of the next event.
func (t *frameTracker) track(frameID int, frameURL string) {
	if frameID == 0 {
		t.current = pageVar
		t.currentID = 0
		return
	}

	t.current = frameVar(frameID)
	t.currentID = frameID
	if _, ok := t.url(frameID); !ok {
		t.pending = append(t.pending, pendingFrame{id: frameID, url: frameURL})
	}
}

func (t *frameTracker) url(frameID int) (string, bool) {
	for _, p := range t.pending {
		if p.id == frameID {
			return p.url, true
		}
	}
	return "", false
}

// take removes frameID from the pending list. It reports false once the frame has
// been taken or was never seen.
func (t *frameTracker) take(frameID int) (string, bool) {
	for i, p := range t.pending {
		if p.id == frameID {
			t.pending = append(t.pending[:i:i], t.pending[i+1:]...)
			return p.url, true
		}
	}
	return "", false
}

func (t *frameTracker) hasPending() bool {
	return len(t.pending) > 0
}

func frameVar(frameID int) string {
	return fmt.Sprintf("frame_%d", frameID)
}
