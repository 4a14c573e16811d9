package camera

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestArbiterPointerDown(t *testing.T) {
	guestCinematic := View{Inputs: ModeInputs{CinematicActive: true}}
	hostCinematic := View{IsHost: true, Inputs: ModeInputs{CinematicActive: true}}

	cases := []struct {
		name   string
		view   View
		btn    Button
		moving bool
		want   Decision
	}{
		{"left_always_allowed", guestCinematic, ButtonLeft, true, Allow},
		{"guest_cinematic_blocked", guestCinematic, ButtonMiddle, false, Block},
		{"host_cinematic_allowed", hostCinematic, ButtonMiddle, false, Allow},
		{"moving_cancels", View{}, ButtonRight, true, BlockAndCancel},
		{"idle_allowed", View{}, ButtonMiddle, false, Allow},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := NewArbiter(newFakeClock().now)
			assert.Equal(t, c.want, a.PointerDown(c.view, c.btn, c.moving))
		})
	}
}

func TestArbiterGraceWindow(t *testing.T) {
	clock := newFakeClock()
	a := NewArbiter(clock.now)

	assert.Equal(t, Allow, a.PointerDown(View{}, ButtonMiddle, false))
	assert.True(t, a.HeldButtons())
	assert.True(t, a.Suppressed())

	a.PointerUp(ButtonMiddle, false)
	assert.False(t, a.HeldButtons())
	assert.True(t, a.Suppressed(), "grace window holds right after release")

	clock.advance(60 * time.Millisecond)
	assert.False(t, a.Suppressed())
}

func TestArbiterResumeOnRelease(t *testing.T) {
	clock := newFakeClock()
	a := NewArbiter(clock.now)

	_ = a.PointerDown(View{}, ButtonRight, false)
	a.PointerUp(ButtonRight, true)

	assert.False(t, a.ResumeDue(false), "not before the grace window elapses")

	clock.advance(60 * time.Millisecond)
	assert.False(t, a.ResumeDue(true), "token motion defers the resume")
	assert.True(t, a.ResumeDue(false))
	assert.False(t, a.ResumeDue(false), "resume is consumed once")
}

func TestArbiterClearSuppression(t *testing.T) {
	clock := newFakeClock()
	a := NewArbiter(clock.now)

	_ = a.PointerDown(View{}, ButtonMiddle, false)
	a.PointerUp(ButtonMiddle, true)
	a.ClearSuppression()

	assert.False(t, a.Suppressed())
	clock.advance(time.Second)
	assert.False(t, a.ResumeDue(false))
}

func TestAllowTokenUpdate(t *testing.T) {
	guestCinematic := View{Inputs: ModeInputs{CinematicActive: true}}

	cases := []struct {
		name  string
		view  View
		field string
		want  bool
	}{
		{"host_moves_anytime", View{IsHost: true, Inputs: ModeInputs{CinematicActive: true}}, FieldPosition, true},
		{"guest_outside_cinematic", View{}, FieldPosition, true},
		{"guest_position_frozen", guestCinematic, FieldPosition, false},
		{"guest_elevation_frozen", guestCinematic, FieldElevation, false},
		{"guest_rotation_frozen", guestCinematic, FieldRotation, false},
		{"unrelated_field_passes", guestCinematic, "name", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, AllowTokenUpdate(c.view, c.field))
		})
	}
}
