// Package sequence drives a complete outro run: fetch, schedule, reveal,
// and the closing fade-in of the ending graphic.
package sequence

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"eosthanks/internal/clock"
	"eosthanks/internal/view"
	"eosthanks/models"
	"eosthanks/services/lifecycle"
	"eosthanks/services/placement"
	"eosthanks/services/timeline"
)

const (
	GroupFollowers   = "followers"
	GroupSubscribers = "subscribers"
)

// Source is the outro's input.
type Source interface {
	Check(ctx context.Context) error
	Settings(ctx context.Context) (models.OverlaySettings, error)
	Followers(ctx context.Context) ([]models.EventItem, error)
	Subscribers(ctx context.Context) ([]models.EventItem, error)
}

// Options tune a Service. Zero values use a real clock, a randomly seeded
// sampler and a 1920x1080 viewport.
type Options struct {
	Viewport models.Size
	Clock    clock.Clock
	Rand     *rand.Rand
}

// Service runs outro sequences.
type Service struct {
	source Source
	sink   view.Sink
	opts   Options
}

// NewService creates a sequence service.
func NewService(source Source, sink view.Sink, opts Options) *Service {
	if opts.Viewport.Width <= 0 || opts.Viewport.Height <= 0 {
		opts.Viewport = models.Size{Width: 1920, Height: 1080}
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	return &Service{source: source, sink: sink, opts: opts}
}

// Result summarizes a prepared run.
type Result struct {
	RunID    string
	Settings models.OverlaySettings
	Timeline timeline.Timeline
	Cards    int
	// FetchErr is set when the fetch chain failed and the run finished
	// immediately.
	FetchErr error
}

// Run is a scheduled outro. Nothing happens until its loop is driven.
type Run struct {
	Result      Result
	Loop        *clock.Loop
	Visible     *lifecycle.VisibleSet
	Controllers []*lifecycle.Controller
}

// Prepare fetches the input and schedules every card plus the ending
// graphic on a fresh loop. Fetch failures are not returned: the run is
// scheduled to finish at offset zero and the error is kept in Result.
func (s *Service) Prepare(ctx context.Context) *Run {
	runID := uuid.NewString()
	settings, followers, subscribers, err := s.fetch(ctx)

	// Offsets count from the end of the fetch chain.
	loop := clock.NewLoop(s.opts.Clock)
	run := &Run{
		Result:  Result{RunID: runID, Settings: settings},
		Loop:    loop,
		Visible: lifecycle.NewVisibleSet(),
	}

	if err != nil {
		log.Printf("[sequence] run %s aborted: %v", runID, err)
		run.Result.FetchErr = err
		s.scheduleFinish(run, 0)
		return run
	}

	tl := timeline.Compute(settings.TimeTotal, settings.TimePer,
		timeline.Group{Name: GroupFollowers, Count: len(followers)},
		timeline.Group{Name: GroupSubscribers, Count: len(subscribers)},
	)
	run.Result.Timeline = tl

	env := &lifecycle.Env{
		RunID:     runID,
		Scheduler: loop,
		Sink:      s.sink,
		Sampler:   placement.NewSampler(s.opts.Viewport, s.opts.Rand),
		Visible:   run.Visible,
	}

	items := append(append(make([]models.EventItem, 0, len(followers)+len(subscribers)), followers...), subscribers...)
	for _, e := range tl.Entries {
		c := lifecycle.NewController(env, e.Index, items[e.Index])
		c.Schedule(e.Offset)
		run.Controllers = append(run.Controllers, c)
	}
	run.Result.Cards = len(run.Controllers)

	vp := env.Sampler.Viewport()
	log.Printf("[sequence] run %s: %d followers, %d subscribers over %v (every %v) on %dx%d, finish at %v",
		runID, len(followers), len(subscribers), tl.EffectiveDuration, tl.Interval, vp.Width, vp.Height, tl.Finish)

	s.scheduleFinish(run, tl.Finish)
	return run
}

// Run prepares a run and drives it on the configured clock until the
// ending graphic has faded in and every card is removed.
func (s *Service) Run(ctx context.Context) (Result, error) {
	run := s.Prepare(ctx)
	if err := run.Loop.Run(ctx); err != nil {
		return run.Result, fmt.Errorf("run %s interrupted: %w", run.Result.RunID, err)
	}
	return run.Result, nil
}

func (s *Service) scheduleFinish(run *Run, at time.Duration) {
	run.Loop.At(at, "ending-graphic", func() {
		log.Printf("[sequence] run %s: fading in ending graphic", run.Result.RunID)
		s.sink.FadeInEndingGraphic()
	})
}

// fetch walks check → settings → followers → subscribers, stopping at the
// first failure or when the settings switch a later step off.
func (s *Service) fetch(ctx context.Context) (models.OverlaySettings, []models.EventItem, []models.EventItem, error) {
	var settings models.OverlaySettings

	if err := s.source.Check(ctx); err != nil {
		return settings, nil, nil, fmt.Errorf("check: %w", err)
	}

	settings, err := s.source.Settings(ctx)
	if err != nil {
		return settings, nil, nil, fmt.Errorf("settings: %w", err)
	}

	if !settings.ShowFollowers {
		return settings, nil, nil, nil
	}

	followers, err := s.source.Followers(ctx)
	if err != nil {
		return settings, nil, nil, fmt.Errorf("followers: %w", err)
	}

	if !settings.ShowSubscribers {
		return settings, followers, nil, nil
	}

	subscribers, err := s.source.Subscribers(ctx)
	if err != nil {
		return settings, nil, nil, fmt.Errorf("subscribers: %w", err)
	}

	return settings, followers, subscribers, nil
}
