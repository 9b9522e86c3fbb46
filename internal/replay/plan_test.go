package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/v0xg/puppetrec/internal/recording"
)

func TestPlan(t *testing.T) {
	events := []recording.Event{
		{Action: recording.ActionGoto, Href: "https://example.com"},
		{Action: recording.ActionViewport, Value: recording.ViewportValue(1024, 768)},
		{Action: recording.ActionKeydown, Selector: "#q", KeyCode: 13},
		{Action: recording.ActionChange, Selector: "#q", Value: recording.StringValue("go"), TagName: "INPUT", FrameID: 2, FrameURL: "https://example.com/a"},
		{Action: recording.ActionClick, Selector: "#ok", FrameID: 2, FrameURL: "https://example.com/b", Comments: "confirm"},
		{Action: "scroll"},
		{Action: recording.ActionSubmit, Selector: "form", TagName: "FORM"},
		{Action: recording.ActionNavigation},
	}

	actions := Plan(events)
	require.Len(t, actions, 6)

	assert.Equal(t, recording.Goto{Href: "https://example.com"}, actions[0].Step)
	assert.Equal(t, recording.SetViewport{Width: 1024, Height: 768}, actions[1].Step)

	assert.Equal(t, 3, actions[2].Index)
	assert.Equal(t, recording.Type{Selector: "#q", Value: "go"}, actions[2].Step)
	assert.True(t, actions[2].InFrame())
	assert.Equal(t, "https://example.com/a", actions[2].FrameURL)

	assert.Equal(t, recording.Click{Selector: "#ok"}, actions[3].Step)
	assert.Equal(t, "https://example.com/a", actions[3].FrameURL, "first recorded URL wins")
	assert.Equal(t, "confirm", actions[3].Comment)

	assert.Equal(t, recording.Submit{Selector: "form"}, actions[4].Step)
	assert.False(t, actions[4].InFrame())
	assert.Empty(t, actions[4].FrameURL)

	assert.Equal(t, recording.Navigation{}, actions[5].Step)
}

func TestPlanEmpty(t *testing.T) {
	assert.Empty(t, Plan(nil))
}

func TestFrames(t *testing.T) {
	actions := Plan([]recording.Event{
		{Action: recording.ActionClick, Selector: "a", FrameID: 3, FrameURL: "https://x/3"},
		{Action: recording.ActionClick, Selector: "b"},
		{Action: recording.ActionClick, Selector: "c", FrameID: 1, FrameURL: "https://x/1"},
		{Action: recording.ActionClick, Selector: "d", FrameID: 3, FrameURL: "https://x/3"},
	})

	frames := Frames(actions)
	require.Len(t, frames, 2)
	assert.Equal(t, 3, frames[0].FrameID)
	assert.Equal(t, 1, frames[1].FrameID)
	assert.Equal(t, "https://x/1", frames[1].FrameURL)
}
