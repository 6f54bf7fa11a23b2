package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDragSession_BeginMoveEnd(t *testing.T) {
	var drag DragSession
	monday := day(2024, time.January, 1)

	require.NoError(t, drag.Begin(monday, 480)) // 08:00
	assert.True(t, drag.Active())

	_, startMin, endMin, ok := drag.Provisional()
	require.True(t, ok)
	assert.Equal(t, 480, startMin)
	assert.Equal(t, 510, endMin) // initial 30 min draft

	require.NoError(t, drag.Move(600)) // drag down to 10:00
	_, startMin, endMin, _ = drag.Provisional()
	assert.Equal(t, 480, startMin)
	assert.Equal(t, 600, endMin)

	start, end, err := drag.End()
	require.NoError(t, err)
	assert.Equal(t, monday.Add(8*time.Hour), start)
	assert.Equal(t, monday.Add(10*time.Hour), end)
	assert.False(t, drag.Active())
}

func TestDragSession_DragUpSwapsEdges(t *testing.T) {
	var drag DragSession
	monday := day(2024, time.January, 1)

	require.NoError(t, drag.Begin(monday, 500))
	require.NoError(t, drag.Move(490))

	_, startMin, endMin, _ := drag.Provisional()
	assert.Equal(t, 490, startMin)
	assert.Equal(t, 500, endMin)

	// committed span is stretched to the 15 minute minimum
	start, end, err := drag.End()
	require.NoError(t, err)
	assert.Equal(t, monday.Add(490*time.Minute), start)
	assert.Equal(t, monday.Add(505*time.Minute), end)
}

func TestDragSession_DragUpThenDownGrowsFromNewAnchor(t *testing.T) {
	var drag DragSession
	require.NoError(t, drag.Begin(day(2024, time.January, 1), 500))

	require.NoError(t, drag.Move(460))
	_, startMin, endMin, _ := drag.Provisional()
	assert.Equal(t, 460, startMin)
	assert.Equal(t, 500, endMin)

	// the swap re-anchored at 460, dragging back down grows from there
	require.NoError(t, drag.Move(480))
	_, startMin, endMin, _ = drag.Provisional()
	assert.Equal(t, 460, startMin)
	assert.Equal(t, 480, endMin)
}

func TestDragSession_MoveNeverShrinksBelowMinimum(t *testing.T) {
	var drag DragSession
	require.NoError(t, drag.Begin(day(2024, time.January, 1), 480))

	require.NoError(t, drag.Move(485)) // barely past the anchor
	_, startMin, endMin, _ := drag.Provisional()
	assert.Equal(t, 480, startMin)
	assert.Equal(t, 495, endMin)
}

func TestDragSession_DoubleBeginGuarded(t *testing.T) {
	var drag DragSession
	require.NoError(t, drag.Begin(day(2024, time.January, 1), 480))
	assert.ErrorIs(t, drag.Begin(day(2024, time.January, 1), 500), ErrDragInProgress)
}

func TestDragSession_NoDragErrors(t *testing.T) {
	var drag DragSession
	assert.ErrorIs(t, drag.Move(100), ErrNoDrag)
	_, _, err := drag.End()
	assert.ErrorIs(t, err, ErrNoDrag)
}

func TestDragSession_Cancel(t *testing.T) {
	var drag DragSession
	require.NoError(t, drag.Begin(day(2024, time.January, 1), 480))
	drag.Cancel()
	assert.False(t, drag.Active())
	_, _, err := drag.End()
	assert.ErrorIs(t, err, ErrNoDrag)

	// a new drag can start after cancelling
	require.NoError(t, drag.Begin(day(2024, time.January, 1), 600))
}

func TestDragSession_MinuteClamped(t *testing.T) {
	var drag DragSession
	require.NoError(t, drag.Begin(day(2024, time.January, 1), -20))
	_, startMin, _, _ := drag.Provisional()
	assert.Equal(t, 0, startMin)

	require.NoError(t, drag.Move(5000))
	_, _, endMin, _ := drag.Provisional()
	assert.Equal(t, 1440, endMin)
}
