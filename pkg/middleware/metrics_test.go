package middleware

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/retree-dev/retree/pkg/dispatch"
)

func TestPrometheusRecordsCycles(t *testing.T) {
	reg := prometheus.NewRegistry()
	ic := Prometheus(WithRegistry(reg))

	info := &dispatch.CycleInfo{Command: "increment", Patches: 4}
	if err := ic(info, func() error { return nil }); err != nil {
		t.Fatalf("interceptor: %v", err)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	byName := map[string]bool{}
	for _, mf := range mfs {
		byName[mf.GetName()] = true
	}
	for _, want := range []string{
		"retree_update_cycles_total",
		"retree_update_cycle_duration_seconds",
		"retree_patches_applied_total",
	} {
		if !byName[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

func TestPrometheusCountsErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	ic := Prometheus(WithRegistry(reg), WithNamespace("app"), WithSubsystem("ui"))

	boom := errors.New("boom")
	info := &dispatch.CycleInfo{Command: "save"}
	if err := ic(info, func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("interceptor swallowed error: %v", err)
	}

	count, err := testutil.GatherAndCount(reg, "app_ui_update_cycle_errors_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 1 {
		t.Fatalf("error series count = %d, want 1", count)
	}
}
