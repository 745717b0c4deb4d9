package store

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julienfritschheydon/doodates-scheduler/internal/engine"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestPollRoundTrip(t *testing.T) {
	st := newTestStore(t)

	poll := &Poll{Title: "Team sync"}
	require.NoError(t, st.CreatePoll(poll))
	assert.NotEmpty(t, poll.ID)

	got, err := st.GetPoll(poll.ID)
	require.NoError(t, err)
	assert.Equal(t, "Team sync", got.Title)

	polls, err := st.ListPolls()
	require.NoError(t, err)
	assert.Len(t, polls, 1)
}

func TestGetPollMissing(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetPoll("nope")
	assert.Error(t, err)
}

func TestAvailabilityRoundTrip(t *testing.T) {
	st := newTestStore(t)

	poll := &Poll{Title: "Atelier"}
	require.NoError(t, st.CreatePoll(poll))

	recurring := &AvailabilityEntry{
		PollID: poll.ID,
		Availability: engine.Availability{
			Weekday: engine.Tuesday,
			Ranges:  []engine.TimeRange{{Start: "09:00", End: "12:00"}},
		},
	}
	require.NoError(t, st.SaveAvailability(recurring))

	concrete := &AvailabilityEntry{
		PollID: poll.ID,
		Availability: engine.Availability{
			Date:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			Ranges: []engine.TimeRange{{Start: "14:00", End: "16:00"}, {Start: "17:00", End: "18:00"}},
		},
	}
	require.NoError(t, st.SaveAvailability(concrete))

	entries, err := st.ListAvailability(poll.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, engine.Tuesday, entries[0].Weekday)
	assert.True(t, entries[0].Recurring())
	assert.Equal(t, []engine.TimeRange{{Start: "09:00", End: "12:00"}}, entries[0].Ranges)

	assert.False(t, entries[1].Recurring())
	assert.Equal(t, "2026-03-10", entries[1].Date.Format("2006-01-02"))
	assert.Len(t, entries[1].Ranges, 2)

	require.NoError(t, st.DeleteAvailability(entries[0].ID))
	entries, err = st.ListAvailability(poll.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAvailabilityEntryJSON(t *testing.T) {
	recurring := &AvailabilityEntry{
		ID:     "a1",
		PollID: "p1",
		Availability: engine.Availability{
			Weekday: engine.Tuesday,
			Ranges:  []engine.TimeRange{{Start: "09:00", End: "12:00"}},
		},
	}
	data, err := json.Marshal(recurring)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "date")
	assert.NotContains(t, string(data), "0001-01-01")
	assert.Contains(t, string(data), `"id":"a1"`)
	assert.Contains(t, string(data), `"poll_id":"p1"`)

	concrete := &AvailabilityEntry{
		ID:     "a2",
		PollID: "p1",
		Availability: engine.Availability{
			Date:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			Ranges: []engine.TimeRange{{Start: "14:00", End: "16:00"}},
		},
	}
	data, err = json.Marshal(concrete)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"date":"2026-03-10"`)
	assert.NotContains(t, string(data), "weekday")
}

func TestRulesRoundTrip(t *testing.T) {
	st := newTestStore(t)

	poll := &Poll{Title: "Réunion"}
	require.NoError(t, st.CreatePoll(poll))

	// No saved rules yet: zero value, no error.
	rules, err := st.GetRules(poll.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.Rules{}, rules)

	want := engine.Rules{
		SlotDuration:   30,
		LookaheadWeeks: 2,
		PreferNearTerm: true,
		PreferHalfDays: true,
		PreferredTimes: []engine.PreferredWindow{
			{Weekday: engine.Monday, Start: "09:00", End: "12:00"},
		},
		MinLatencyMinutes: 15,
	}
	require.NoError(t, st.SaveRules(poll.ID, want))

	got, err := st.GetRules(poll.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
