package main

import (
	"flag"
	"log"

	"github.com/spf13/afero"

	"eosthanks/internal/audio"
)

func cmdChime(args []string) error {
	fs := flag.NewFlagSet("chime", flag.ExitOnError)
	out := fs.String("o", "chime.wav", "output file")
	fs.Parse(args)

	data, err := audio.DefaultChime().Render(afero.NewOsFs(), *out)
	if err != nil {
		return err
	}
	log.Printf("[main] wrote %s (%d bytes)", *out, len(data))
	return nil
}
