package main

import (
	"context"
	"fmt"

	"github.com/peterbourgon/evcap"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"
)

type searchConfig struct {
	*rootConfig

	limit       int
	fullContext bool
}

func (cfg *searchConfig) register(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{ShortName: 'n', LongName: "limit" /*   */, Value: ffval.NewValueDefault(&cfg.limit, 10) /* */, Usage: "maximum number of events to print"})
	fs.AddFlag(ff.FlagConfig{ShortName: 0x0, LongName: "full" /*    */, Value: ffval.NewValue(&cfg.fullContext) /*      */, Usage: "print full context for each event (text output only)", NoDefault: true})
}

func (cfg *searchConfig) Exec(ctx context.Context, args []string) error {
	ed, err := cfg.loadSnapshot()
	if err != nil {
		return err
	}

	cfg.debug.Printf("filter: %s", cfg.filter)
	cfg.debug.Printf("limit: %d", cfg.limit)

	// Snapshots store events oldest-first; print newest-first, like a query.
	var matched []*evcap.Event
	for i := len(ed.Events) - 1; i >= 0; i-- {
		if cfg.filter.Allow(ed.Events[i]) {
			matched = append(matched, ed.Events[i])
		}
	}

	cfg.debug.Printf("matched: %d", len(matched))

	if cfg.limit >= 0 && len(matched) > cfg.limit {
		matched = matched[:cfg.limit]
	}

	if cfg.output != "text" {
		return writeJSON(cfg.stdout, cfg.output, matched)
	}

	for _, ev := range matched {
		if cfg.fullContext {
			fmt.Fprintln(cfg.stdout, ev.FullContext())
			continue
		}
		fmt.Fprintln(cfg.stdout, eventLine(ev))
	}

	return nil
}
