package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/sourcegraph/conc/pool"

	"eosthanks/api"
	"eosthanks/config"
	"eosthanks/internal/clock"
	"eosthanks/internal/database"
	"eosthanks/services/events"
)

var errServerStopped = errors.New("server stopped")

func cmdServe(ctx context.Context, args []string) error {
	var c common
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	c.register(fs)
	outroOnSignal := fs.Bool("outro-on-usr1", false, "play the outro with the log and mqtt sinks on SIGUSR1")
	fs.Parse(args)

	mgr, cfg, closer, err := c.load(false)
	if err != nil {
		return err
	}
	defer closer.Close()

	db, err := database.NewDB(database.Config{DatabasePath: cfg.Database.Path})
	if err != nil {
		return err
	}
	defer db.Close()

	svc := events.NewService(db.Repository, db.Bits, clock.Real{})
	srv := api.NewServer(mgr, svc, cfg.Log.File)

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		if err := srv.ListenAndServe(ctx); err != nil {
			return err
		}
		return errServerStopped
	})
	if *outroOnSignal {
		p.Go(func(ctx context.Context) error {
			return outroOnUSR1(ctx, mgr)
		})
	}

	if err := p.Wait(); err != nil && !errors.Is(err, errServerStopped) {
		return err
	}
	log.Printf("[main] server stopped")
	return nil
}

// outroOnUSR1 plays the outro in-process each time SIGUSR1 arrives. The
// terminal sink is skipped since the server owns stderr.
func outroOnUSR1(ctx context.Context, mgr *config.Manager) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGUSR1)
	defer signal.Stop(sig)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sig:
		}

		cfg, err := mgr.Load()
		if err != nil {
			log.Printf("[main] outro: %v", err)
			continue
		}
		cfg.Outro.Sinks = slices.DeleteFunc(cfg.Outro.Sinks, func(s string) bool { return s == config.SinkTerminal })
		if len(cfg.Outro.Sinks) == 0 {
			cfg.Outro.Sinks = []string{config.SinkLog}
		}
		if _, err := playOutro(ctx, cfg); err != nil {
			log.Printf("[main] outro: %v", err)
		}
	}
}
