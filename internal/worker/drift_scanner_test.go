package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"home_pricer/internal/domain/entity"
	"home_pricer/internal/worker"
)

type fakeRefresher struct {
	stats []entity.NeighborhoodStats
	calls int
}

func (f *fakeRefresher) RefreshFromProperties(_ context.Context) ([]entity.NeighborhoodStats, error) {
	f.calls++
	return f.stats, nil
}

type fakeBaselines struct {
	byCode map[string]float64
}

func (f *fakeBaselines) NeighborhoodBaseline(code string) (float64, bool) {
	v, ok := f.byCode[code]
	return v, ok
}

func TestDriftScannerAlerts(t *testing.T) {
	rq := require.New(t)

	refresher := &fakeRefresher{stats: []entity.NeighborhoodStats{
		// Baseline $500k, fresh median $700k: 40% drift.
		{Code: "98052", SampleCount: 100, MedianPriceCents: 70_000_000},
		// Baseline $500k, fresh median $510k: 2% drift, below threshold.
		{Code: "98125", SampleCount: 80, MedianPriceCents: 51_000_000},
		// No baseline known for this code.
		{Code: "98003", SampleCount: 10, MedianPriceCents: 30_000_000},
	}}

	baselines := &fakeBaselines{byCode: map[string]float64{
		"98052": 500000,
		"98125": 500000,
	}}

	alerts := make(chan entity.DriftAlert, 10)

	scanner := worker.NewDriftScanner(refresher, baselines, alerts, time.Hour).
		WithThreshold(15)

	rq.NoError(scanner.Start(context.Background()))
	rq.True(scanner.IsRunning())

	select {
	case alert := <-alerts:
		rq.Equal("98052", alert.Neighborhood)
		rq.Equal(int64(50_000_000), alert.BaselineCents)
		rq.Equal(int64(70_000_000), alert.CurrentCents)
		rq.InDelta(40.0, alert.DriftPct, 1e-9)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a drift alert from the first scan")
	}

	scanner.Stop()
	rq.False(scanner.IsRunning())

	select {
	case alert := <-alerts:
		t.Fatalf("unexpected extra alert for %s", alert.Neighborhood)
	default:
	}
}

func TestDriftScannerStartTwice(t *testing.T) {
	rq := require.New(t)

	refresher := &fakeRefresher{}
	baselines := &fakeBaselines{}
	alerts := make(chan entity.DriftAlert, 1)

	scanner := worker.NewDriftScanner(refresher, baselines, alerts, time.Hour)

	rq.NoError(scanner.Start(context.Background()))
	rq.Error(scanner.Start(context.Background()), "second start while running must fail")

	scanner.Stop()

	rq.NoError(scanner.Start(context.Background()), "a stopped scanner can be restarted")
	scanner.Stop()
}

func TestDriftScannerStopWithoutStart(t *testing.T) {
	scanner := worker.NewDriftScanner(&fakeRefresher{}, &fakeBaselines{}, make(chan entity.DriftAlert), time.Hour)
	scanner.Stop()
}
