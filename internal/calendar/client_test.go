package calendar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusyIntervals(t *testing.T) {
	from := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 28)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/busy", r.URL.Path)
		assert.Equal(t, from.Format(time.RFC3339), r.URL.Query().Get("from"))
		assert.Equal(t, to.Format(time.RFC3339), r.URL.Query().Get("to"))

		fmt.Fprint(w, `[
			{"start": "2026-03-04T09:00:00Z", "end": "2026-03-04T10:00:00Z"},
			{"start": "2026-03-05T14:00:00Z", "end": "2026-03-05T15:30:00Z"},
			{"start": "2026-03-06T12:00:00Z", "end": "2026-03-06T12:00:00Z"}
		]`)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, zerolog.Nop())

	intervals, err := client.BusyIntervals(context.Background(), from, to)
	require.NoError(t, err)

	// The zero-length interval is dropped.
	require.Len(t, intervals, 2)
	assert.Equal(t, time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC), intervals[0].Start)
	assert.Equal(t, 90*time.Minute, intervals[1].End.Sub(intervals[1].Start))
}

func TestBusyIntervalsServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, zerolog.Nop())

	_, err := client.BusyIntervals(context.Background(), time.Now(), time.Now().Add(time.Hour))
	assert.Error(t, err)
}

func TestBusyIntervalsUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", zerolog.Nop())

	_, err := client.BusyIntervals(context.Background(), time.Now(), time.Now().Add(time.Hour))
	assert.Error(t, err)
}
