package main

import (
	"testing"

	"eosthanks/config"
	"eosthanks/internal/view"
)

func TestOpenSinks_LogOnly(t *testing.T) {
	cfg := config.DefaultSettings()
	cfg.Outro.Sinks = []string{config.SinkLog}

	out, err := openSinks(cfg)
	if err != nil {
		t.Fatalf("openSinks: %v", err)
	}
	defer out.Close()

	if _, ok := out.Sink.(*view.LogSink); !ok {
		t.Fatalf("expected a single log sink, got %T", out.Sink)
	}
	if out.Terminal != nil {
		t.Fatal("terminal opened without being configured")
	}
}

func TestOpenSinks_NoneFallsBackToLog(t *testing.T) {
	cfg := config.DefaultSettings()
	cfg.Outro.Sinks = nil

	out, err := openSinks(cfg)
	if err != nil {
		t.Fatalf("openSinks: %v", err)
	}
	if _, ok := out.Sink.(*view.LogSink); !ok {
		t.Fatalf("expected log sink fallback, got %T", out.Sink)
	}
}

func TestOpenSinks_Unknown(t *testing.T) {
	cfg := config.DefaultSettings()
	cfg.Outro.Sinks = []string{config.SinkLog, "projector"}

	if _, err := openSinks(cfg); err == nil {
		t.Fatal("expected error for unknown sink")
	}
}

func TestSplitSinks(t *testing.T) {
	got := splitSinks(" log, ,mqtt ")
	if len(got) != 2 || got[0] != "log" || got[1] != "mqtt" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestSeededRand(t *testing.T) {
	if seededRand(0) != nil {
		t.Fatal("seed 0 must leave the sampler random")
	}
	a, b := seededRand(7), seededRand(7)
	for i := 0; i < 5; i++ {
		if a.IntN(1000) != b.IntN(1000) {
			t.Fatal("same seed produced different sequences")
		}
	}
}
