package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordShortagesSetsEverySeverity(t *testing.T) {
	RecordShortages(map[string]int{"High": 3, "Critical": 1})

	cases := map[string]float64{
		"Normal":   0,
		"High":     3,
		"Critical": 1,
	}
	for severity, want := range cases {
		got := testutil.ToFloat64(ShortagesGauge.WithLabelValues(severity))
		if got != want {
			t.Errorf("ShortagesGauge[%s] = %v, want %v", severity, got, want)
		}
	}

	// A later snapshot overwrites, never accumulates.
	RecordShortages(map[string]int{"Critical": 2})
	if got := testutil.ToFloat64(ShortagesGauge.WithLabelValues("High")); got != 0 {
		t.Errorf("ShortagesGauge[High] after reset = %v, want 0", got)
	}
	if got := testutil.ToFloat64(ShortagesGauge.WithLabelValues("Critical")); got != 2 {
		t.Errorf("ShortagesGauge[Critical] = %v, want 2", got)
	}
}
