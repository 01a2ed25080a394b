package worker

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"home_pricer/internal/domain/entity"
	"home_pricer/pkg/contextx"
	"home_pricer/pkg/metrics"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type neighborhoodRefresher interface {
	RefreshFromProperties(ctx context.Context) ([]entity.NeighborhoodStats, error)
}

type baselineSource interface {
	NeighborhoodBaseline(code string) (float64, bool)
}

// DriftScanner periodically recomputes neighborhood statistics from the
// properties table and compares the fresh medians against the medians the
// serving model was trained on. When a neighborhood moves further than the
// threshold, an alert goes out on the channel.
type DriftScanner struct {
	refresher    neighborhoodRefresher
	baselines    baselineSource
	alerts       chan<- entity.DriftAlert
	scanInterval time.Duration
	thresholdPct float64

	// Control fields.
	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewDriftScanner(
	refresher neighborhoodRefresher,
	baselines baselineSource,
	alerts chan<- entity.DriftAlert,
	scanInterval time.Duration,
) *DriftScanner {
	return &DriftScanner{
		refresher:    refresher,
		baselines:    baselines,
		alerts:       alerts,
		scanInterval: scanInterval,
		thresholdPct: 15,
	}
}

func (w *DriftScanner) WithThreshold(pct float64) *DriftScanner {
	if pct > 0 {
		w.thresholdPct = pct
	}
	return w
}

func (w *DriftScanner) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return errors.New("drift scanner is already running")
	}

	scanCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.isRunning = true

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.isRunning = false
			w.cancelFunc = nil
			w.mu.Unlock()
		}()

		if err := w.Run(scanCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(scanCtx).Error("drift scanner stopped", "error", err)
		}
	}()

	return nil
}

func (w *DriftScanner) Stop() {
	w.mu.Lock()

	if !w.isRunning {
		w.mu.Unlock()
		return
	}

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *DriftScanner) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isRunning
}

func (w *DriftScanner) Run(ctx context.Context) error {
	logger(ctx).Info("drift scanner started", "interval", w.scanInterval, "threshold_pct", w.thresholdPct)

	ticker := time.NewTicker(w.scanInterval)
	defer ticker.Stop()

	// First pass right away; afterwards on the ticker.
	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			logger(ctx).Info("drift scanner stopped")
			return ctx.Err()
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *DriftScanner) scan(ctx context.Context) {
	stats, err := w.refresher.RefreshFromProperties(ctx)
	if err != nil {
		logger(ctx).Error("failed to refresh neighborhood stats", "error", err)
		return
	}

	var alerted int

	for _, s := range stats {
		alert, drifted := w.evaluate(s)

		metrics.NeighborhoodDrift.WithLabelValues(s.Code).Set(alert.DriftPct / 100)

		if !drifted {
			continue
		}

		select {
		case w.alerts <- alert:
			alerted++
		case <-ctx.Done():
			return
		}
	}

	if alerted > 0 {
		logger(ctx).Info("drift scan completed", "neighborhoods", len(stats), "alerts", alerted)
	}
}

// evaluate compares one neighborhood's fresh median against the model-era
// baseline. It always returns the measured alert; drifted reports whether
// it exceeds the threshold.
func (w *DriftScanner) evaluate(stats entity.NeighborhoodStats) (entity.DriftAlert, bool) {
	baselineDollars, known := w.baselines.NeighborhoodBaseline(stats.Code)
	baselineCents := int64(math.Round(baselineDollars * 100))

	alert := entity.DriftAlert{
		Neighborhood:  stats.Code,
		BaselineCents: baselineCents,
		CurrentCents:  stats.MedianPriceCents,
		ObservedAt:    time.Now().UTC(),
	}

	if !known || baselineCents <= 0 || stats.SampleCount == 0 {
		return alert, false
	}

	alert.DriftPct = math.Abs(float64(stats.MedianPriceCents-baselineCents)) / float64(baselineCents) * 100

	return alert, alert.DriftPct >= w.thresholdPct
}
