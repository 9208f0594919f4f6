package scheduler

import (
	"cine-grid/fetcher"
	"cine-grid/grid"
	"cine-grid/render"
	"context"
	"fmt"
	"log"
)

// ChartNotifier is told about every freshly built chart
type ChartNotifier interface {
	NotifyChart(username string, year int, layout grid.Layout) error
}

// RefreshOptions describes what a RefreshJob builds
type RefreshOptions struct {
	Username   string
	Year       int
	OutputPath string
	Layout     grid.LayoutOptions
}

// RefreshJob fetches the diary, rebuilds the layout and replaces the output
// file with the new rendering
type RefreshJob struct {
	source   fetcher.Source
	renderer render.Renderer
	notifier ChartNotifier
	opts     RefreshOptions
}

// NewRefreshJob creates a refresh job; notifier may be nil
func NewRefreshJob(source fetcher.Source, renderer render.Renderer, notifier ChartNotifier, opts RefreshOptions) *RefreshJob {
	return &RefreshJob{
		source:   source,
		renderer: renderer,
		notifier: notifier,
		opts:     opts,
	}
}

// Name returns the name of the job
func (j *RefreshJob) Name() string {
	return "ratings_refresh"
}

// Run executes one refresh. A failed fetch leaves the previous output in place.
func (j *RefreshJob) Run(ctx context.Context) error {
	layout, err := j.Build(ctx)
	if err != nil {
		return err
	}

	if err := render.WriteFile(j.opts.OutputPath, j.renderer, layout); err != nil {
		return fmt.Errorf("failed to write %s: %w", j.opts.OutputPath, err)
	}
	log.Printf("Wrote %d rated films to %s", layout.Total, j.opts.OutputPath)

	if j.notifier != nil {
		if err := j.notifier.NotifyChart(j.opts.Username, j.opts.Year, layout); err != nil {
			log.Printf("Failed to send notification: %v", err)
		}
	}
	return nil
}

// Build fetches the reviews and lays them out without writing anything
func (j *RefreshJob) Build(ctx context.Context) (grid.Layout, error) {
	reviews, err := j.source.Fetch(ctx, j.opts.Username, j.opts.Year)
	if err != nil {
		return grid.Layout{}, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	layout := grid.BuildLayout(reviews, j.opts.Layout)
	if layout.Excluded > 0 {
		log.Printf("Excluded %d reviews without a recognised rating", layout.Excluded)
	}
	return layout, nil
}
