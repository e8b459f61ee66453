// Package pipeline runs the mitigation comparison: surface temperature
// simulations, mean radiant temperature and UTCI for every scenario of a
// matrix, then hands the results to the configured loaders.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/openfield-comfort/internal/domain"
	"github.com/couchcryptid/openfield-comfort/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// SurfaceSimulator produces the ground surface temperature of one surface case.
type SurfaceSimulator interface {
	Simulate(ctx context.Context, req domain.SurfaceRequest) (domain.SurfaceTemperature, error)
}

// ResultLoader stores or publishes a finished batch.
type ResultLoader interface {
	Name() string
	LoadResults(ctx context.Context, results []domain.ScenarioResult) error
}

// Options tune a comparison run.
type Options struct {
	// WeatherFile is the EPW path handed to the simulator.
	WeatherFile string
	// CaseName prefixes every simulation case directory.
	CaseName string
	// Concurrency bounds parallel surface cases. Values below 1 mean 1.
	Concurrency int
	// LoadAttempts is how often a failing loader is tried. Values below 1 mean 3.
	LoadAttempts int
}

// Comparison evaluates a scenario matrix.
type Comparison struct {
	simulator SurfaceSimulator
	radiant   domain.RadiantModel
	comfort   domain.ComfortModel
	loaders   []ResultLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	opts      Options

	ready      atomic.Bool
	mu         sync.Mutex
	progress   domain.BatchProgress
	onScenario func(domain.ScenarioResult)
}

// New creates a Comparison with the given models, loaders and observability.
func New(sim SurfaceSimulator, radiant domain.RadiantModel, comfort domain.ComfortModel, loaders []ResultLoader, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Comparison {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.LoadAttempts < 1 {
		opts.LoadAttempts = 3
	}
	return &Comparison{
		simulator: sim,
		radiant:   radiant,
		comfort:   comfort,
		loaders:   loaders,
		logger:    logger,
		metrics:   metrics,
		opts:      opts,
	}
}

// OnScenario registers a callback invoked after each scenario's UTCI is
// computed. Calls are serialized.
func (c *Comparison) OnScenario(fn func(domain.ScenarioResult)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onScenario = fn
}

// CheckReadiness returns nil once at least one scenario has been computed.
func (c *Comparison) CheckReadiness(_ context.Context) error {
	if !c.ready.Load() {
		return errors.New("no scenario has been computed yet")
	}
	return nil
}

// Progress returns a snapshot of the current or last batch.
func (c *Comparison) Progress() domain.BatchProgress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// Run evaluates every scenario of m and loads the results. Any simulation,
// model or loader failure aborts the batch.
func (c *Comparison) Run(ctx context.Context, w *domain.Weather, irr domain.Irradiance, m domain.Matrix) ([]domain.ScenarioResult, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("scenario matrix: %w", err)
	}

	start := time.Now()
	runID := uuid.NewString()
	cases := m.SurfaceCases()
	total := len(m.Scenarios())

	c.mu.Lock()
	c.progress = domain.BatchProgress{RunID: runID, Total: total, StartedAt: domain.Now()}
	c.mu.Unlock()

	c.metrics.BatchRunning.Set(1)
	defer c.metrics.BatchRunning.Set(0)

	c.logger.Info("comparison started",
		"run_id", runID,
		"surface_cases", len(cases),
		"scenarios", total,
		"concurrency", c.opts.Concurrency,
	)

	perCase := make([][]domain.ScenarioResult, len(cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)
	for i, sc := range cases {
		g.Go(func() error {
			res, err := c.evaluateCase(gctx, runID, w, irr, m, sc)
			if err != nil {
				return err
			}
			perCase[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.logger.Error("comparison failed", "run_id", runID, "error", err)
		return nil, err
	}

	results := make([]domain.ScenarioResult, 0, total)
	for _, res := range perCase {
		results = append(results, res...)
	}
	if err := compareToBaseline(m, results); err != nil {
		return nil, err
	}

	for _, l := range c.loaders {
		if err := c.load(ctx, l, results); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	c.progress.Done = true
	c.mu.Unlock()
	c.metrics.BatchDuration.Observe(time.Since(start).Seconds())
	c.logger.Info("comparison complete", "run_id", runID, "scenarios", len(results), "duration", time.Since(start))
	return results, nil
}

// evaluateCase simulates one surface case and computes every scenario built on it.
func (c *Comparison) evaluateCase(ctx context.Context, runID string, w *domain.Weather, irr domain.Irradiance, m domain.Matrix, sc domain.SurfaceCase) ([]domain.ScenarioResult, error) {
	name := sc.Name(c.opts.CaseName)
	surface, err := c.simulator.Simulate(ctx, domain.SurfaceRequest{
		WeatherFile: c.opts.WeatherFile,
		Weather:     w,
		Case:        sc,
		CaseName:    name,
	})
	if err != nil {
		return nil, fmt.Errorf("case %s: %w", name, err)
	}

	mrt, err := domain.MeanRadiantTemperature(ctx, c.radiant, w.Location, irr.Direct, irr.Diffuse, surface, sc.Shaded)
	if err != nil {
		return nil, fmt.Errorf("case %s: %w", name, err)
	}

	scenarios := m.ScenariosFor(sc)
	out := make([]domain.ScenarioResult, 0, len(scenarios))
	for _, s := range scenarios {
		utci, err := domain.UniversalThermalClimateIndex(ctx, c.comfort, w, mrt, s.Wind, s.EvaporativeCooling)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.ID(), err)
		}
		r := domain.ScenarioResult{
			RunID:       runID,
			CaseID:      s.ID(),
			Scenario:    s,
			UTCI:        utci,
			Summary:     domain.Summarize(utci),
			GeneratedAt: domain.Now(),
		}
		out = append(out, r)
		c.scenarioDone(r)
	}
	return out, nil
}

func (c *Comparison) scenarioDone(r domain.ScenarioResult) {
	c.metrics.ScenariosComputed.Inc()
	c.ready.Store(true)
	c.logger.Debug("scenario computed", "case", r.CaseID, "mean_utci", r.Summary.MeanUTCI)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress.Completed++
	if c.onScenario != nil {
		c.onScenario(r)
	}
}

// compareToBaseline fills each summary's mean difference from the unmitigated
// scenario with the same wind policy.
func compareToBaseline(m domain.Matrix, results []domain.ScenarioResult) error {
	byID := make(map[string]domain.Series, len(results))
	for _, r := range results {
		byID[r.CaseID] = r.UTCI
	}
	for i := range results {
		id := m.BaselineID(results[i].Scenario)
		if id == "" || id == results[i].CaseID {
			continue
		}
		base, ok := byID[id]
		if !ok {
			continue
		}
		d, err := domain.MeanDifference(results[i].UTCI, base)
		if err != nil {
			return fmt.Errorf("scenario %s: %w", results[i].CaseID, err)
		}
		results[i].Summary.MeanDifference = &d
	}
	return nil
}

// load hands the batch to one loader, retrying with exponential backoff.
func (c *Comparison) load(ctx context.Context, l ResultLoader, results []domain.ScenarioResult) error {
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	var err error
	for attempt := 1; attempt <= c.opts.LoadAttempts; attempt++ {
		if err = l.LoadResults(ctx, results); err == nil {
			c.metrics.ResultsPublished.WithLabelValues(l.Name()).Add(float64(len(results)))
			return nil
		}
		c.logger.Error("load results failed", "sink", l.Name(), "attempt", attempt, "error", err)
		if attempt == c.opts.LoadAttempts || !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	return fmt.Errorf("load results into %s: %w", l.Name(), err)
}
