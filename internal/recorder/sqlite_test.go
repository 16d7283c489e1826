package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"btcchart/internal/model"
)

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "cycles.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	defer r.Close()

	events := []*CycleEvent{
		{Generation: 1, Currencies: []model.Currency{model.USD}, Range: model.Range1M, Status: StatusOK, Points: 30, Duration: 120 * time.Millisecond},
		{Generation: 2, Currencies: []model.Currency{model.USD, model.ETH}, Range: model.Range1W, Status: StatusFailed, Error: "fetch cycle failed: USD: boom"},
		{Generation: 3, Range: model.Range1Y, Status: StatusOK},
	}
	for _, e := range events {
		if err := r.RecordCycle(e); err != nil {
			t.Fatalf("RecordCycle: %v", err)
		}
	}

	got, err := r.RecentCycles(2)
	if err != nil {
		t.Fatalf("RecentCycles: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Generation != 3 || len(got[0].Currencies) != 0 {
		t.Errorf("newest event = %+v", got[0])
	}
	failed := got[1]
	if failed.Status != StatusFailed || failed.Error == "" {
		t.Errorf("failed event = %+v", failed)
	}
	if len(failed.Currencies) != 2 || failed.Currencies[1] != model.ETH {
		t.Errorf("currencies = %v", failed.Currencies)
	}
	if failed.Range != model.Range1W {
		t.Errorf("range = %d", failed.Range)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordCycle(&CycleEvent{}); err != nil {
		t.Fatal(err)
	}
	if evts, err := r.RecentCycles(10); err != nil || len(evts) != 0 {
		t.Fatalf("got %v, %v", evts, err)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"PRAGMA x", 40, "PRAGMA x"},
		{"", 40, ""},
		{"CREATE TABLE", 6, "CREATE"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.n); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}
