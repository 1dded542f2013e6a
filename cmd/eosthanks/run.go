package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"eosthanks/config"
	"eosthanks/internal/view"
	"eosthanks/services/datasource"
	"eosthanks/services/sequence"
)

var errRunComplete = errors.New("run complete")

func cmdRun(ctx context.Context, args []string) error {
	var c common
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	c.register(fs)
	source := fs.String("source", "", "event API base URL (overrides outro.source_url)")
	sinks := fs.String("sinks", "", "comma-separated sinks (overrides outro.sinks)")
	seed := fs.Uint64("seed", 0, "placement seed; 0 picks a random one")
	fs.Parse(args)

	_, cfg, closer, err := c.load(true)
	if err != nil {
		return err
	}
	defer closer.Close()

	if *source != "" {
		cfg.Outro.SourceURL = *source
	}
	if *sinks != "" {
		cfg.Outro.Sinks = splitSinks(*sinks)
	}
	if *seed != 0 {
		cfg.Outro.Seed = *seed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	res, err := playOutro(ctx, cfg)
	if err != nil {
		return err
	}
	if res.FetchErr != nil {
		return fmt.Errorf("run %s: %w", res.RunID, res.FetchErr)
	}
	return nil
}

// playOutro runs one sequence on the configured sinks. With a terminal sink
// the viewer can quit early, and the ending graphic is held for
// outro.hold_ending before the screen is restored.
func playOutro(ctx context.Context, cfg config.Settings) (sequence.Result, error) {
	out, err := openSinks(cfg)
	if err != nil {
		return sequence.Result{}, err
	}
	defer out.Close()

	client := datasource.NewClient(cfg.Outro.SourceURL, &http.Client{Timeout: cfg.Outro.Timeout})
	svc := sequence.NewService(client, out.Sink, sequence.Options{
		Viewport: cfg.Outro.Viewport,
		Rand:     seededRand(cfg.Outro.Seed),
	})

	var res sequence.Result
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		res, err = svc.Run(ctx)
		if err != nil {
			return err
		}
		log.Printf("[main] run %s finished: %d cards", res.RunID, res.Cards)
		if out.Terminal != nil && cfg.Outro.HoldEnding > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(cfg.Outro.HoldEnding):
			}
		}
		return errRunComplete
	})
	if out.Terminal != nil {
		p.Go(out.Terminal.WaitForQuit)
	}

	err = p.Wait()
	switch {
	case err == nil, errors.Is(err, errRunComplete), errors.Is(err, view.ErrQuit):
		return res, nil
	default:
		return res, err
	}
}

func seededRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func splitSinks(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
