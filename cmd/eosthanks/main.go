// Command eosthanks serves the local event API and plays the end-of-stream
// thanks sequence.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"eosthanks/config"
	"eosthanks/handlers"
	"eosthanks/internal/logging"
)

const usage = `usage: eosthanks <command> [flags]

commands:
  serve    run the event API
  run      play the outro once against the event API
  chime    write the reveal chime to a WAV file
  version  print the version
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "serve":
		err = cmdServe(ctx, args)
	case "run":
		err = cmdRun(ctx, args)
	case "chime":
		err = cmdChime(args)
	case "version":
		fmt.Println(handlers.GetBackendVersion())
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Printf("[main] %s: %v", os.Args[1], err)
		os.Exit(1)
	}
}

// common holds the flags every command shares.
type common struct {
	configPath string
	envFile    string
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "config.yaml", "settings file")
	fs.StringVar(&c.envFile, "env", ".env", "dotenv file loaded before settings")
}

// load reads .env, then the settings file, and sets up logging.
func (c *common) load(quiet bool) (*config.Manager, config.Settings, io.Closer, error) {
	if err := config.LoadDotEnv(c.envFile); err != nil {
		return nil, config.Settings{}, nil, err
	}

	mgr := config.NewManager(c.configPath)
	cfg, err := mgr.Load()
	if err != nil {
		return nil, config.Settings{}, nil, err
	}

	closer, err := logging.Setup(logging.Options{
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		Quiet:      quiet,
	})
	if err != nil {
		return nil, config.Settings{}, nil, fmt.Errorf("set up logging: %w", err)
	}
	return mgr, cfg, closer, nil
}
