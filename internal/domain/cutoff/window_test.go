package cutoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshsupply/backend/internal/domain/shared"
)

func TestNewWindow(t *testing.T) {
	w := NewWindow()

	assert.Equal(t, WindowStatusOpen, w.Status)
	assert.NotNil(t, w.OpenedAt)
	assert.Nil(t, w.ClosedAt)
	assert.True(t, w.IsOpen())
}

func TestWindow_Close(t *testing.T) {
	t.Run("closes an open window", func(t *testing.T) {
		w := NewWindow()
		versionBefore := w.Version

		err := w.Close("operator.aye")

		require.NoError(t, err)
		assert.Equal(t, WindowStatusClosed, w.Status)
		assert.NotNil(t, w.ClosedAt)
		assert.Equal(t, "operator.aye", w.ClosedBy)
		assert.Equal(t, versionBefore+1, w.Version)
	})

	t.Run("fails when already closed", func(t *testing.T) {
		w := NewWindow()
		require.NoError(t, w.Close("first"))

		err := w.Close("second")

		require.Error(t, err)
		de, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "ALREADY_CLOSED", de.Code)
		// first closer's stamp is untouched
		assert.Equal(t, "first", w.ClosedBy)
	})
}

func TestWindow_Open(t *testing.T) {
	t.Run("reopens a closed window", func(t *testing.T) {
		w := NewWindow()
		require.NoError(t, w.Close("op"))

		w.Open()

		assert.True(t, w.IsOpen())
		assert.Nil(t, w.ClosedAt)
		assert.Empty(t, w.ClosedBy)
	})

	t.Run("opening an open window overwrites OpenedAt", func(t *testing.T) {
		w := NewWindow()
		earlier := time.Now().Add(-time.Hour)
		w.OpenedAt = &earlier

		w.Open()

		assert.True(t, w.OpenedAt.After(earlier))
	})
}

func TestCycle_Confirm(t *testing.T) {
	t.Run("marks confirmed and schedules auto reset", func(t *testing.T) {
		c := NewCycle()
		resetAtBefore := c.ResetAt

		c.Confirm("operator.aye")

		assert.True(t, c.IsConfirmed)
		require.NotNil(t, c.LastConfirmedAt)
		require.NotNil(t, c.AutoResetScheduledAt)
		assert.Equal(t, "operator.aye", c.ConfirmedBy)
		// resetAt is preserved across confirmation
		assert.True(t, c.ResetAt.Equal(resetAtBefore))

		expected := c.LastConfirmedAt.Add(AutoResetDelay)
		assert.WithinDuration(t, expected, *c.AutoResetScheduledAt, time.Second)
	})

	t.Run("initializes resetAt on first confirmation when unset", func(t *testing.T) {
		c := &Cycle{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
		require.True(t, c.ResetAt.IsZero())

		c.Confirm("op")

		assert.False(t, c.ResetAt.IsZero())
		assert.Equal(t, StartOfToday(), c.ResetAt)
	})
}

func TestCycle_Reset(t *testing.T) {
	c := NewCycle()
	c.Confirm("op")
	before := time.Now().Add(-time.Millisecond)

	c.Reset()

	assert.False(t, c.IsConfirmed)
	assert.Nil(t, c.LastConfirmedAt)
	assert.Nil(t, c.AutoResetScheduledAt)
	assert.Empty(t, c.ConfirmedBy)
	assert.True(t, c.ResetAt.After(before))
}

func TestCycle_AutoResetDue(t *testing.T) {
	c := NewCycle()
	assert.False(t, c.AutoResetDue(time.Now()))

	c.Confirm("op")
	assert.False(t, c.AutoResetDue(time.Now()))
	assert.True(t, c.AutoResetDue(time.Now().Add(AutoResetDelay+time.Minute)))

	c.Reset()
	assert.False(t, c.AutoResetDue(time.Now().Add(AutoResetDelay+time.Minute)))
}
