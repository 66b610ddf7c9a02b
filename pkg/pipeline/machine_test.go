package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterState struct {
	a, b, c int
}

func TestMachine_RunsStepsInOrder(t *testing.T) {
	var order []string
	steps := []Step[counterState]{
		{Name: "first", Run: func(ctx context.Context, s *counterState) error {
			s.a++
			order = append(order, "first")
			return nil
		}},
		{Name: "second", Run: func(ctx context.Context, s *counterState) error {
			s.b++
			order = append(order, "second")
			return nil
		}},
	}

	m := NewMachine(steps, nil, 0, nil)
	state := &counterState{}
	err := m.Run(context.Background(), state, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, 1, state.a)
	assert.Equal(t, 1, state.b)
}

func TestMachine_EmitsEvents(t *testing.T) {
	steps := []Step[counterState]{
		{
			Name: "work",
			Run:  func(ctx context.Context, s *counterState) error { return nil },
			Summary: func(s *counterState) (string, []string) {
				return "did the work", []string{"note"}
			},
		},
	}

	var events []Event
	m := NewMachine(steps, nil, 0, nil)
	err := m.Run(context.Background(), &counterState{}, func(e Event) {
		events = append(events, e)
	})
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, Event{Step: "work", Status: StepStarted}, events[0])
	assert.Equal(t, Event{Step: "work", Status: StepCompleted, Message: "did the work", Errors: []string{"note"}}, events[1])
}

func TestMachine_StepErrorStopsRun(t *testing.T) {
	boom := errors.New("boom")
	steps := []Step[counterState]{
		{Name: "ok", Run: func(ctx context.Context, s *counterState) error {
			s.a++
			return nil
		}},
		{Name: "bad", Run: func(ctx context.Context, s *counterState) error {
			return boom
		}},
		{Name: "never", Run: func(ctx context.Context, s *counterState) error {
			s.c++
			return nil
		}},
	}

	var events []Event
	m := NewMachine(steps, nil, 0, nil)
	state := &counterState{}
	err := m.Run(context.Background(), state, func(e Event) { events = append(events, e) })
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 0, state.c)
	last := events[len(events)-1]
	assert.Equal(t, "bad", last.Step)
	assert.Equal(t, StepFailed, last.Status)
	assert.Equal(t, "boom", last.Message)
}

func TestMachine_RetryReentersAtIndex(t *testing.T) {
	steps := []Step[counterState]{
		{Name: "setup", Run: func(ctx context.Context, s *counterState) error {
			s.a++
			return nil
		}},
		{Name: "attempt", Run: func(ctx context.Context, s *counterState) error {
			s.b++
			return nil
		}},
	}
	decide := func(s *counterState) Decision {
		if s.b < 3 {
			return DecisionRetry
		}
		return DecisionStop
	}

	m := NewMachine(steps, decide, 1, nil)
	state := &counterState{}
	err := m.Run(context.Background(), state, nil)
	require.NoError(t, err)

	// The setup step runs once, the attempt step cycles.
	assert.Equal(t, 1, state.a)
	assert.Equal(t, 3, state.b)
}

func TestMachine_NilDecideStopsAfterOnePass(t *testing.T) {
	runs := 0
	steps := []Step[counterState]{
		{Name: "only", Run: func(ctx context.Context, s *counterState) error {
			runs++
			return nil
		}},
	}

	m := NewMachine(steps, nil, 0, nil)
	require.NoError(t, m.Run(context.Background(), &counterState{}, nil))
	assert.Equal(t, 1, runs)
}
