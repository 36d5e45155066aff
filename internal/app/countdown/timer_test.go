package countdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/nightreign-timer/internal/domain/phase"
)

func TestTimer_InitialState(t *testing.T) {
	tm, sched, rec := newTestTimer(ModeLinear, 0)

	s := tm.Snapshot()
	assert.Equal(t, StateIdle, s.State)
	assert.Equal(t, 0, s.PhaseIndex)
	assert.Equal(t, 0, s.TimeRemaining)
	assert.Equal(t, 0, s.TotalElapsed)
	assert.Equal(t, 840, s.TotalRemaining)
	assert.False(t, s.Running)
	assert.Equal(t, 0.0, s.Progress)
	assert.Equal(t, 0, sched.activeTicks())
	assert.Empty(t, rec.all())
}

func TestTimer_StartLoadsPhaseDuration(t *testing.T) {
	tm, sched, rec := newTestTimer(ModeLinear, 0)

	tm.Start()

	s := tm.Snapshot()
	assert.Equal(t, StateRunning, s.State)
	assert.True(t, s.Running)
	assert.Equal(t, 270, s.TimeRemaining)
	assert.Equal(t, 1, sched.activeTicks())
	require.Len(t, rec.all(), 1)
	assert.Equal(t, EventStateChanged, rec.all()[0].Type)
}

func TestTimer_StartIsIdempotent(t *testing.T) {
	tm, sched, rec := newTestTimer(ModeLinear, 0)

	tm.Start()
	tickN(tm, 5)
	tm.Start()

	s := tm.Snapshot()
	assert.Equal(t, 265, s.TimeRemaining)
	assert.Equal(t, 1, sched.activeTicks())
	assert.Len(t, sched.every, 1)
	assert.Equal(t, 1, rec.count(EventStateChanged))
}

func TestTimer_PausePreservesCounters(t *testing.T) {
	tm, sched, rec := newTestTimer(ModeLinear, 0)

	tm.Start()
	tickN(tm, 100)
	tm.Pause()

	s := tm.Snapshot()
	assert.Equal(t, StatePaused, s.State)
	assert.False(t, s.Running)
	assert.Equal(t, 170, s.TimeRemaining)
	assert.Equal(t, 100, s.TotalElapsed)
	assert.Equal(t, 0, sched.activeTicks())

	// ticks while paused are no-ops
	tickN(tm, 10)
	assert.Equal(t, s, tm.Snapshot())

	// pause twice is a no-op
	tm.Pause()
	assert.Equal(t, 2, rec.count(EventStateChanged))

	// resume continues from the same point
	tm.Start()
	assert.Equal(t, 170, tm.Snapshot().TimeRemaining)
	tickN(tm, 1)
	assert.Equal(t, 169, tm.Snapshot().TimeRemaining)
	assert.Equal(t, 101, tm.Snapshot().TotalElapsed)
}

func TestTimer_TickWithoutStartIsNoop(t *testing.T) {
	tm, _, rec := newTestTimer(ModeLinear, 0)

	tickN(tm, 3)

	assert.Equal(t, StateIdle, tm.Snapshot().State)
	assert.Empty(t, rec.all())
}

func TestTimer_LinearScenario(t *testing.T) {
	tm, sched, rec := newTestTimer(ModeLinear, 0)

	tm.Start()
	tickN(tm, 270)

	s := tm.Snapshot()
	assert.Equal(t, 1, s.PhaseIndex)
	assert.Equal(t, 180, s.TimeRemaining)
	assert.Equal(t, 270, s.TotalElapsed)
	assert.Equal(t, 570, s.TotalRemaining)
	assert.Equal(t, 1, rec.count(EventPhaseChanged))
	assert.Equal(t, 0, rec.count(EventWarning))

	tickN(tm, 150)

	s = tm.Snapshot()
	assert.Equal(t, 1, s.PhaseIndex)
	assert.Equal(t, 30, s.TimeRemaining)
	assert.True(t, s.Danger)
	assert.Equal(t, UrgencyDanger, s.Urgency)

	warnings := rec.ofType(EventWarning)
	require.Len(t, warnings, 1)
	assert.Equal(t, WarningFirst, warnings[0].Warning)
	assert.Equal(t, "first-warning", warnings[0].Warning.String())
	assert.Equal(t, "Circle closing in 30 seconds!", warnings[0].Message)
	assert.Equal(t, 1, warnings[0].Snapshot.PhaseIndex)
	assert.Equal(t, 30, warnings[0].Snapshot.TimeRemaining)
	assert.Equal(t, 420, warnings[0].Snapshot.TotalElapsed)

	tickN(tm, 420)

	s = tm.Snapshot()
	assert.Equal(t, 4, s.PhaseIndex)
	assert.Equal(t, StateTerminal, s.State)
	assert.False(t, s.Running)
	assert.True(t, s.Terminal)
	assert.False(t, s.Danger)
	assert.Equal(t, 840, s.TotalElapsed)
	assert.Equal(t, 0, s.TotalRemaining)
	assert.Equal(t, 1, rec.count(EventTerminalReached))
	assert.Equal(t, 3, rec.count(EventPhaseChanged))
	assert.Equal(t, 2, rec.count(EventWarning))
	assert.Equal(t, 840, rec.count(EventTick))
	assert.Equal(t, 0, sched.activeTicks())

	second := rec.ofType(EventWarning)[1]
	assert.Equal(t, WarningSecond, second.Warning)
	assert.Equal(t, 3, second.Snapshot.PhaseIndex)
	assert.Equal(t, "Second circle closing in 30 seconds!", second.Message)

	// terminal is absorbing
	before := len(rec.all())
	tickN(tm, 50)
	tm.Start()
	assert.Equal(t, s, tm.Snapshot())
	assert.Len(t, rec.all(), before)
}

func TestTimer_LinearEventOrderAtPhaseBoundary(t *testing.T) {
	tm, _, rec := newTestTimer(ModeLinear, 0)

	tm.Start()
	tickN(tm, 269)
	rec.reset()
	tickN(tm, 1)

	events := rec.all()
	require.Len(t, events, 2)
	assert.Equal(t, EventTick, events[0].Type)
	assert.Equal(t, 0, events[0].Snapshot.PhaseIndex)
	assert.Equal(t, 0, events[0].Snapshot.TimeRemaining)
	assert.Equal(t, EventPhaseChanged, events[1].Type)
	assert.Equal(t, 1, events[1].Snapshot.PhaseIndex)
	assert.Equal(t, 180, events[1].Snapshot.TimeRemaining)
}

func TestTimer_ReachesTerminalForAnyValidSequence(t *testing.T) {
	sequences := [][]phase.Phase{
		{{Index: 0, Name: "Boss", Duration: 0}},
		{{Index: 0, Name: "A", Duration: 1}, {Index: 1, Name: "Boss", Duration: 0}},
		{{Index: 0, Name: "A", Duration: 31, Closing: true}, {Index: 1, Name: "Boss", Duration: 0}},
		{
			{Index: 0, Name: "A", Duration: 5},
			{Index: 1, Name: "B", Duration: 40, Closing: true},
			{Index: 2, Name: "C", Duration: 2},
			{Index: 3, Name: "Boss", Duration: 0},
		},
		phase.DefaultPhases(),
	}

	for _, phases := range sequences {
		seq, err := phase.NewSequence(phases)
		require.NoError(t, err)

		rec := &recorder{}
		tm := New(seq, Config{Mode: ModeLinear}, &stepScheduler{}, rec)
		tm.Start()
		tickN(tm, seq.TotalDuration())

		s := tm.Snapshot()
		assert.Equal(t, seq.LastIndex(), s.PhaseIndex)
		assert.False(t, s.Running)
		assert.Equal(t, seq.TotalDuration(), s.TotalElapsed)
		assert.Equal(t, 0, s.TotalRemaining)
		if seq.Len() > 1 {
			assert.Equal(t, 1, rec.count(EventTerminalReached))
		}
	}
}

func TestTimer_WarningFiresOncePerOccupancy(t *testing.T) {
	tm, _, rec := newTestTimer(ModeManual, 0)

	require.NoError(t, tm.SelectPhase(1))
	tickN(tm, 150)
	assert.Equal(t, 1, rec.count(EventWarning))

	// evaluating the same remaining time again does not re-fire
	tm.mu.Lock()
	tm.checkWarningsLocked()
	tm.checkWarningsLocked()
	tm.mu.Unlock()
	assert.Equal(t, 1, rec.count(EventWarning))

	// a new occupancy of the same phase fires again
	require.NoError(t, tm.SelectPhase(1))
	assert.Equal(t, 0, tm.st.warningsFired.Len())
	tickN(tm, 150)
	assert.Equal(t, 2, rec.count(EventWarning))
}

func TestTimer_NoWarningForCalmPhases(t *testing.T) {
	tm, _, rec := newTestTimer(ModeLinear, 0)

	tm.Start()
	tickN(tm, 240)

	s := tm.Snapshot()
	assert.Equal(t, 30, s.TimeRemaining)
	assert.False(t, s.Danger)
	assert.Equal(t, UrgencyCalm, s.Urgency)
	assert.Equal(t, 0, rec.count(EventWarning))
}

func TestTimer_UrgencyLevels(t *testing.T) {
	tm, _, _ := newTestTimer(ModeManual, 0)
	require.NoError(t, tm.SelectPhase(3))

	tests := []struct {
		ticks     int
		remaining int
		urgency   Urgency
		danger    bool
	}{
		{ticks: 0, remaining: 180, urgency: UrgencyCalm},
		{ticks: 119, remaining: 61, urgency: UrgencyCalm},
		{ticks: 1, remaining: 60, urgency: UrgencyCaution},
		{ticks: 29, remaining: 31, urgency: UrgencyCaution},
		{ticks: 1, remaining: 30, urgency: UrgencyDanger, danger: true},
		{ticks: 29, remaining: 1, urgency: UrgencyDanger, danger: true},
	}

	for _, tt := range tests {
		tickN(tm, tt.ticks)
		s := tm.Snapshot()
		require.Equal(t, tt.remaining, s.TimeRemaining)
		assert.Equal(t, tt.urgency, s.Urgency, "remaining=%d", s.TimeRemaining)
		assert.Equal(t, tt.danger, s.Danger, "remaining=%d", s.TimeRemaining)
	}
}

func TestTimer_ResetEqualsFreshState(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		run  func(tm *Timer)
	}{
		{
			name: "linear mid phase",
			mode: ModeLinear,
			run: func(tm *Timer) {
				tm.Start()
				tickN(tm, 300)
			},
		},
		{
			name: "linear terminal",
			mode: ModeLinear,
			run: func(tm *Timer) {
				tm.Start()
				tickN(tm, 840)
			},
		},
		{
			name: "manual with warnings fired",
			mode: ModeManual,
			run: func(tm *Timer) {
				_ = tm.SelectPhase(3)
				tickN(tm, 160)
				tm.Pause()
			},
		},
		{
			name: "manual chain pending",
			mode: ModeManual,
			run: func(tm *Timer) {
				_ = tm.SelectPhase(3)
				tickN(tm, 180)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm, sched, rec := newTestTimer(tt.mode, 1000)
			fresh, _, _ := newTestTimer(tt.mode, 1000)

			tt.run(tm)
			tm.Reset()

			assert.Equal(t, fresh.st, tm.st)
			assert.Equal(t, fresh.Snapshot(), tm.Snapshot())
			assert.Equal(t, 0, sched.activeTicks())
			assert.Empty(t, sched.activeAfters())
			assert.Nil(t, tm.tickCancel)
			assert.Nil(t, tm.chainCancel)

			events := rec.all()
			require.NotEmpty(t, events)
			assert.Equal(t, EventReset, events[len(events)-1].Type)
		})
	}
}

func TestTimer_ResetThenRunAgain(t *testing.T) {
	tm, _, rec := newTestTimer(ModeLinear, 0)

	tm.Start()
	tickN(tm, 840)
	tm.Reset()
	tm.Start()
	tickN(tm, 840)

	assert.Equal(t, 2, rec.count(EventTerminalReached))
	assert.Equal(t, 4, rec.count(EventWarning))
}

func TestTimer_Toggle(t *testing.T) {
	tm, _, _ := newTestTimer(ModeLinear, 0)

	tm.Toggle()
	assert.True(t, tm.Snapshot().Running)
	tm.Toggle()
	assert.False(t, tm.Snapshot().Running)
	assert.Equal(t, StatePaused, tm.Snapshot().State)
}

func TestTimer_SelectPhaseRequiresManualMode(t *testing.T) {
	tm, _, rec := newTestTimer(ModeLinear, 0)

	err := tm.SelectPhase(2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSelectUnsupported)
	assert.Equal(t, 0, tm.Snapshot().PhaseIndex)
	assert.Empty(t, rec.all())
}

func TestTimer_IgnoresTickFromReleasedSource(t *testing.T) {
	tm, sched, _ := newTestTimer(ModeLinear, 0)

	tm.Start()
	stale := sched.lastTick
	tm.Pause()
	tm.Start()

	// a tick that was in flight when the source was released
	stale.fn()
	assert.Equal(t, 270, tm.Snapshot().TimeRemaining)

	sched.fireTicks(1)
	assert.Equal(t, 269, tm.Snapshot().TimeRemaining)
}

func TestTimer_SchedulerDrivesTicks(t *testing.T) {
	tm, sched, rec := newTestTimer(ModeLinear, 0)

	tm.Start()
	require.Equal(t, DefaultTickInterval, sched.lastTick.d)
	sched.fireTicks(270)

	assert.Equal(t, 1, tm.Snapshot().PhaseIndex)
	assert.Equal(t, 270, rec.count(EventTick))
}

func TestTimer_HandlerMayReadSnapshot(t *testing.T) {
	sched := &stepScheduler{}
	var tm *Timer
	var seen []int
	tm = New(scenarioSequence(), Config{Mode: ModeLinear}, sched, HandlerFunc(func(e Event) {
		if e.Type == EventTick {
			seen = append(seen, tm.Snapshot().TimeRemaining)
		}
	}))

	tm.Start()
	tickN(tm, 3)

	assert.Equal(t, []int{269, 268, 267}, seen)
}

func TestTimer_CustomThresholdsAndMessages(t *testing.T) {
	rec := &recorder{}
	tm := New(scenarioSequence(), Config{
		Mode:             ModeManual,
		WarningThreshold: 10,
		DangerThreshold:  15,
		CautionThreshold: 20,
		WarningMessages:  map[Warning]string{WarningFirst: "hurry"},
	}, &stepScheduler{}, rec)

	require.NoError(t, tm.SelectPhase(1))
	tickN(tm, 165)
	assert.True(t, tm.Snapshot().Danger)
	assert.Equal(t, 0, rec.count(EventWarning))

	tickN(tm, 5)
	warnings := rec.ofType(EventWarning)
	require.Len(t, warnings, 1)
	assert.Equal(t, "hurry", warnings[0].Message)
}

func TestTimer_Progress(t *testing.T) {
	tm, _, _ := newTestTimer(ModeLinear, 0)

	tm.Start()
	assert.InDelta(t, 0.0, tm.Snapshot().Progress, 0.0001)
	tickN(tm, 135)
	assert.InDelta(t, 0.5, tm.Snapshot().Progress, 0.0001)
	tickN(tm, 705)
	assert.InDelta(t, 1.0, tm.Snapshot().Progress, 0.0001)
}
