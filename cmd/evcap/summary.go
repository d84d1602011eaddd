package main

import (
	"context"
	"fmt"

	"github.com/peterbourgon/evcap"
	"github.com/peterbourgon/ff/v4"
)

type summaryConfig struct {
	*rootConfig
}

func (cfg *summaryConfig) register(fs *ff.FlagSet) {}

func (cfg *summaryConfig) Exec(ctx context.Context, args []string) error {
	ed, err := cfg.loadSnapshot()
	if err != nil {
		return err
	}

	md := ed.Metadata

	fmt.Fprintf(cfg.stdout, "File: %s\n", cfg.file)
	fmt.Fprintf(cfg.stdout, "Format version: %s\n", md.FormatVersion)
	fmt.Fprintf(cfg.stdout, "Exported: %s\n", md.ExportTimestamp.Format("2006-01-02T15:04:05Z07:00"))
	if md.Description != "" {
		fmt.Fprintf(cfg.stdout, "Description: %s\n", md.Description)
	}
	fmt.Fprintf(cfg.stdout, "Total events: %d\n", md.TotalEvents)

	for _, level := range evcap.Levels() {
		if n := md.LevelCounts[level.String()]; n > 0 {
			fmt.Fprintf(cfg.stdout, "  %s: %d\n", level, n)
		}
	}

	return nil
}
