package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/snaparray/scrubcore/pkg/scrub"
)

func TestObserveBlockIncrementsByState(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewSink(reg)
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}

	sink.ObserveBlock(scrub.Clean)
	sink.ObserveBlock(scrub.Clean)
	sink.ObserveBlock(scrub.Silent)

	if got := testutil.ToFloat64(sink.blocks.WithLabelValues("Clean")); got != 2 {
		t.Errorf("Clean count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(sink.blocks.WithLabelValues("Silent")); got != 1 {
		t.Errorf("Silent count = %v, want 1", got)
	}
}

func TestObserveBytesReadIgnoresNonPositive(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewSink(reg)
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}

	sink.ObserveBytesRead(0)
	sink.ObserveBytesRead(-5)
	sink.ObserveBytesRead(100)

	if got := testutil.ToFloat64(sink.bytesRead); got != 100 {
		t.Errorf("bytesRead = %v, want 100", got)
	}
}
