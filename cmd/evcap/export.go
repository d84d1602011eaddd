package main

import (
	"context"
	"fmt"
	"os"

	"github.com/peterbourgon/evcap"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"
)

type exportConfig struct {
	*rootConfig

	to          string
	description string
}

func (cfg *exportConfig) register(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{ShortName: 0x0, LongName: "to" /*           */, Value: ffval.NewValue(&cfg.to) /*          */, Usage: "destination snapshot file", Placeholder: "PATH"})
	fs.AddFlag(ff.FlagConfig{ShortName: 'd', LongName: "description" /*  */, Value: ffval.NewValue(&cfg.description) /* */, Usage: "description for the new snapshot", NoDefault: true})
}

func (cfg *exportConfig) Exec(ctx context.Context, args []string) error {
	if cfg.to == "" {
		return fmt.Errorf("a destination file is required (--to)")
	}

	ed, err := cfg.loadSnapshot()
	if err != nil {
		return err
	}

	cfg.debug.Printf("filter: %s", cfg.filter)

	var kept []*evcap.Event
	for _, ev := range ed.Events {
		if cfg.filter.Allow(ev) {
			kept = append(kept, ev)
		}
	}

	description := cfg.description
	if description == "" {
		description = ed.Metadata.Description
	}

	data, err := evcap.NewExportData(kept, description).Encode()
	if err != nil {
		return err
	}

	if err := os.WriteFile(cfg.to, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	cfg.info.Printf("%s: kept %d/%d events", cfg.to, len(kept), len(ed.Events))

	return nil
}
