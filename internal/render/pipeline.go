package render

import (
	"context"
	"fmt"
	"sync"
	"time"

	"habitmap/internal/habit"
	"habitmap/internal/heatmap"
	"habitmap/internal/logs"
	"habitmap/internal/notes"

	"golang.org/x/sync/errgroup"
)

// NoteSource lists and reads notes
type NoteSource interface {
	List(ctx context.Context) ([]notes.File, error)
	Read(ctx context.Context, f notes.File) (notes.Note, error)
}

const defaultReadWorkers = 8

// Options carries the global settings a render depends on
type Options struct {
	Defaults    heatmap.Defaults
	Aggregation habit.Method // used when a block does not set its own
	Scale       heatmap.Scale
	Workers     int
}

// DefaultOptions returns sum aggregation and the automatic scale.
func DefaultOptions() Options {
	return Options{
		Defaults:    heatmap.DefaultDefaults(),
		Aggregation: habit.Sum,
		Scale:       heatmap.DefaultScale(),
		Workers:     defaultReadWorkers,
	}
}

// Result is everything a renderer needs to draw one block
type Result struct {
	Config  heatmap.Config
	Dataset habit.Dataset
	Year    *heatmap.YearLayout  // set for yearly views
	Months  []heatmap.MonthLayout // set for monthly views
	Stats   habit.Stats
	Scanned int // notes considered after filtering
	Err     error
}

// Failed reports whether the result should be drawn as an inline error.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Pipeline turns a block's source text into a laid out heatmap
type Pipeline struct {
	source NoteSource
	mu     sync.RWMutex
	opts   Options
	now    func() time.Time
}

// NewPipeline creates a pipeline reading from src.
func NewPipeline(src NoteSource, opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = defaultReadWorkers
	}
	if opts.Aggregation == "" {
		opts.Aggregation = habit.Sum
	}
	return &Pipeline{source: src, opts: opts, now: time.Now}
}

// WithClock replaces the clock used for the current year and month.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Options returns the settings the pipeline renders with.
func (p *Pipeline) Options() Options {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.opts
}

// SetOptions swaps the settings, used after the settings file changes.
// Renders already running keep the options they started with.
func (p *Pipeline) SetOptions(opts Options) {
	if opts.Workers <= 0 {
		opts.Workers = defaultReadWorkers
	}
	if opts.Aggregation == "" {
		opts.Aggregation = habit.Sum
	}
	p.mu.Lock()
	p.opts = opts
	p.mu.Unlock()
}

// Run executes one full render pass. Failures never escape: they are
// returned in Result.Err, panics included.
func (p *Pipeline) Run(ctx context.Context, source string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			logs.Logger.Errorw("render panicked", "panic", r)
			res = Result{Config: res.Config, Err: fmt.Errorf("render failed: %v", r)}
		}
	}()

	opts := p.Options()
	cfg, err := heatmap.ParseConfig(source, opts.Defaults)
	if err != nil {
		logs.Logger.Debugw("invalid block config", "error", err)
		return Result{Err: err}
	}
	res.Config = cfg

	entries, scanned, err := p.collect(ctx, cfg, opts.Workers)
	if err != nil {
		logs.Logger.Errorw("collect entries", "error", err)
		res.Err = err
		return res
	}
	res.Scanned = scanned

	method := opts.Aggregation
	if cfg.Aggregation != "" {
		method = cfg.Aggregation
	}
	res.Dataset = habit.Aggregate(entries, method)

	now := p.now()
	res.Stats = habit.Summarize(res.Dataset, now)

	switch cfg.ViewType {
	case heatmap.Monthly:
		res.Months = heatmap.MonthGrids(res.Dataset, cfg.MonthScope, now, cfg.WeekStart, opts.Scale)
	default:
		year := heatmap.YearGrid(now.Year(), res.Dataset, cfg.WeekStart, opts.Scale)
		res.Year = &year
	}

	logs.Logger.Debugw("render complete",
		"view", cfg.ViewType,
		"notes", scanned,
		"days", res.Dataset.Len(),
		"max", res.Dataset.Max,
	)
	return res
}

// collect lists, filters and reads the candidate notes, then extracts one
// entry per note with a resolvable date. Entries keep listing order.
func (p *Pipeline) collect(ctx context.Context, cfg heatmap.Config, workers int) ([]habit.Entry, int, error) {
	files, err := p.source.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list notes: %w", err)
	}

	filter := newSearchFilter(cfg.SearchPath)
	var candidates []notes.File
	for _, f := range files {
		if filter.matchFile(f) {
			candidates = append(candidates, f)
		}
	}

	read := make([]*notes.Note, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range candidates {
		i, f := i, f
		g.Go(func() error {
			n, err := p.source.Read(gctx, f)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logs.Logger.Warnw("skipping unreadable note", "path", f.Path, "error", err)
				return nil
			}
			read[i] = &n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	fields := cfg.Fields()
	var entries []habit.Entry
	scanned := 0
	for _, n := range read {
		if n == nil || !filter.matchNote(*n) {
			continue
		}
		scanned++
		if e, ok := habit.Extract(*n, fields); ok {
			entries = append(entries, e)
		}
	}
	return entries, scanned, nil
}
