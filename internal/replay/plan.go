// Package replay drives a real browser through a recording.
package replay

import "github.com/v0xg/puppetrec/internal/recording"

// Action is one step of a replay plan together with the frame it runs in.
type Action struct {
	Index    int // position of the source event in the recording
	Step     recording.Step
	FrameID  int    // 0 for the top-level page
	FrameURL string // first URL recorded for FrameID
	Comment  string
}

// InFrame reports whether the action targets a child frame.
func (a Action) InFrame() bool {
	return a.FrameID != 0
}

// Plan classifies events into replayable actions. Events the script compiler would
// skip are skipped here too. A frame keeps the first URL it was recorded with.
func Plan(events []recording.Event) []Action {
	frameURLs := make(map[int]string)
	var actions []Action

	for i, e := range events {
		if e.FrameID != 0 {
			if _, seen := frameURLs[e.FrameID]; !seen {
				frameURLs[e.FrameID] = e.FrameURL
			}
		}

		step, ok := recording.Classify(e)
		if !ok {
			continue
		}
		actions = append(actions, Action{
			Index:    i,
			Step:     step,
			FrameID:  e.FrameID,
			FrameURL: frameURLs[e.FrameID],
			Comment:  e.Comments,
		})
	}
	return actions
}

// Frames returns the distinct child frames used by actions in first-use order.
func Frames(actions []Action) []Action {
	seen := make(map[int]bool)
	var frames []Action
	for _, a := range actions {
		if !a.InFrame() || seen[a.FrameID] {
			continue
		}
		seen[a.FrameID] = true
		frames = append(frames, a)
	}
	return frames
}
