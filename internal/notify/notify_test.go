package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/bizdesk/internal/validate"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestLifetimes(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := New(WithClock(clock.now))

	b.Success("saved")
	b.Warn("slow network")
	b.Fail(validate.Errors{{Field: "phone", Message: "invalid mobile number"}})

	assert.Len(t, b.Current(), 3)

	clock.t = clock.t.Add(2 * time.Second)
	active := b.Current()
	require.Len(t, active, 2, "validation banner lives 2s")
	assert.Equal(t, Success, active[0].Kind)

	clock.t = clock.t.Add(time.Second)
	active = b.Current()
	require.Len(t, active, 1)
	assert.Equal(t, Warning, active[0].Kind)

	clock.t = clock.t.Add(2 * time.Second)
	assert.Empty(t, b.Current())
}

func TestFailUsesUserMessage(t *testing.T) {
	b := New()
	banner := b.Fail(errors.New("boom"))
	assert.Equal(t, Error, banner.Kind)
	assert.Equal(t, "boom", banner.Text)
	assert.Equal(t, "error", banner.Kind.String())
}

func TestDismissAndClear(t *testing.T) {
	b := New()
	first := b.Info("one")
	b.Info("two")
	b.Dismiss(first.ID)
	active := b.Current()
	require.Len(t, active, 1)
	assert.Equal(t, "two", active[0].Text)

	b.Clear()
	assert.Empty(t, b.Current())
}

func TestCleanStripsEmoji(t *testing.T) {
	assert.Equal(t, "上传成功", Clean("✅ 上传成功"))
	assert.Equal(t, "failed", Clean("❌failed"))
	assert.Equal(t, "check input", Clean("⚠️ check input "))
}
