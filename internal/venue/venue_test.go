package venue

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatjpcsguy/eventalloc/internal/traffic"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name     string
		event    string
		capacity string
		want     Event
		wantErr  error
	}{
		{name: "valid", event: "Concert", capacity: "80", want: Event{name: "Concert", capacity: 80}},
		{name: "zero capacity", event: "Meetup", capacity: "0", want: Event{name: "Meetup"}},
		{name: "empty name", event: "", capacity: "80", wantErr: ErrInvalidName},
		{name: "empty capacity", event: "X", capacity: "", wantErr: ErrInvalidCapacity},
		{name: "non-numeric capacity", event: "X", capacity: "eighty", wantErr: ErrInvalidCapacity},
		{name: "padded capacity", event: "X", capacity: " 80", wantErr: ErrInvalidCapacity},
		{name: "negative capacity", event: "X", capacity: "-5", wantErr: ErrInvalidCapacity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEvent(tt.event, tt.capacity)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvent_Equality(t *testing.T) {
	a, _ := NewEvent("Concert", 80)
	b, _ := NewEvent("Concert", 80)
	c, _ := NewEvent("Concert", 81)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "Concert (80)", a.String())
	assert.True(t, Event{}.IsZero())
	assert.False(t, a.IsZero())
}

func TestVenue_CanHostBoundary(t *testing.T) {
	v, err := New("Hall A", 100, traffic.New(), ModelFixed)
	require.NoError(t, err)

	exact, _ := NewEvent("Exact", 100)
	over, _ := NewEvent("Over", 101)

	assert.True(t, v.CanHost(exact))
	assert.False(t, v.CanHost(over))
}

func TestVenue_TrafficFor(t *testing.T) {
	main, err := traffic.NewCorridor("Main St", 50)
	require.NoError(t, err)
	river, err := traffic.NewCorridor("River Rd", 30)
	require.NoError(t, err)
	base := traffic.Of(map[traffic.Corridor]int{main: 20, river: 7})

	tests := []struct {
		name      string
		model     Model
		capacity  int
		wantMain  int
		wantRiver int
	}{
		{name: "fixed ignores event size", model: ModelFixed, capacity: 80, wantMain: 20, wantRiver: 7},
		{name: "proportional full size", model: ModelProportional, capacity: 100, wantMain: 20, wantRiver: 7},
		{name: "proportional rounds up", model: ModelProportional, capacity: 50, wantMain: 10, wantRiver: 4},
		{name: "proportional small event", model: ModelProportional, capacity: 1, wantMain: 1, wantRiver: 1},
		{name: "proportional empty event", model: ModelProportional, capacity: 0, wantMain: 0, wantRiver: 0},
		{name: "proportional oversized event", model: ModelProportional, capacity: 300, wantMain: 60, wantRiver: 21},
		{name: "proportional huge event", model: ModelProportional, capacity: math.MaxInt / 10, wantMain: math.MaxInt / 50, wantRiver: 7*(math.MaxInt/10)/100 + 1},
		{name: "proportional largest event", model: ModelProportional, capacity: math.MaxInt, wantMain: math.MaxInt/5 + 1, wantRiver: 7*math.MaxInt/100 + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New("Hall A", 100, base, tt.model)
			require.NoError(t, err)
			e, err := NewEvent("E", tt.capacity)
			require.NoError(t, err)

			got := v.TrafficFor(e)
			assert.Equal(t, tt.wantMain, got.LoadOn(main))
			assert.Equal(t, tt.wantRiver, got.LoadOn(river))
			assert.True(t, got.Equal(v.TrafficFor(e)), "TrafficFor must be deterministic")
		})
	}
}

func TestVenue_TrafficForSaturates(t *testing.T) {
	main, _ := traffic.NewCorridor("Main St", 50)
	v, err := New("Booth", 1, traffic.Of(map[traffic.Corridor]int{main: 2}), ModelProportional)
	require.NoError(t, err)
	e, _ := NewEvent("Crowd", math.MaxInt)

	got := v.TrafficFor(e)
	assert.Equal(t, math.MaxInt, got.LoadOn(main))
	assert.False(t, got.IsSafe())
}

func TestVenue_TrafficForDoesNotAliasBase(t *testing.T) {
	main, _ := traffic.NewCorridor("Main St", 50)
	v, err := New("Hall A", 100, traffic.Of(map[traffic.Corridor]int{main: 20}), ModelFixed)
	require.NoError(t, err)
	e, _ := NewEvent("E", 10)

	got := v.TrafficFor(e)
	require.NoError(t, got.Add(main, 5))

	assert.Equal(t, 20, v.TrafficFor(e).LoadOn(main))
	assert.Equal(t, 20, v.BaseTraffic().LoadOn(main))
}

func TestNewVenue_Validation(t *testing.T) {
	_, err := New("", 10, traffic.New(), ModelFixed)
	assert.Error(t, err)

	_, err = New("Hall", -1, traffic.New(), ModelFixed)
	assert.Error(t, err)

	_, err = New("Hall", 10, traffic.New(), Model("weighted"))
	assert.Error(t, err)

	v, err := New("Hall", 10, traffic.New(), "")
	require.NoError(t, err)
	assert.Equal(t, ModelFixed, v.Model())
	assert.Equal(t, "Hall (10)", v.String())
}

func TestParseModel(t *testing.T) {
	m, err := ParseModel("Proportional")
	require.NoError(t, err)
	assert.Equal(t, ModelProportional, m)

	m, err = ParseModel("")
	require.NoError(t, err)
	assert.Equal(t, ModelFixed, m)

	_, err = ParseModel("graph")
	assert.Error(t, err)
}
