package main

import (
	"context"
	"fmt"
	"math/rand"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/peterbourgon/evcap"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"
)

type demoConfig struct {
	*rootConfig

	interval time.Duration
	maxCount int
	export   string
}

func (cfg *demoConfig) register(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{ShortName: 'i', LongName: "interval" /* */, Value: ffval.NewValueDefault(&cfg.interval, 250*time.Millisecond) /* */, Usage: "delay between generated events"})
	fs.AddFlag(ff.FlagConfig{ShortName: 'n', LongName: "count" /*    */, Value: ffval.NewValue(&cfg.maxCount) /*                             */, Usage: "stop after this many events (0 means run until interrupted)"})
	fs.AddFlag(ff.FlagConfig{ShortName: 0x0, LongName: "export" /*   */, Value: ffval.NewValue(&cfg.export) /*                               */, Usage: "write a snapshot to this file on exit", Placeholder: "PATH"})
}

func (cfg *demoConfig) Exec(ctx context.Context, args []string) error {
	m := evcap.InitGlobal(evcap.ManagerConfig{})
	defer func() {
		if cfg.export != "" {
			count, err := m.ExportFile(cfg.export, "demo session")
			if err != nil {
				cfg.info.Printf("export failed: %v", err)
				return
			}
			cfg.info.Printf("%s: exported %d events", cfg.export, count)
		}
	}()

	cfg.info.Printf("filter: %s", cfg.filter)
	cfg.debug.Printf("interval: %s", cfg.interval)

	var g run.Group

	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			return cfg.generate(ctx)
		}, func(error) {
			cancel()
		})
	}

	{
		stream := m.Events().Stream()
		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			return cfg.consume(ctx, stream)
		}, func(error) {
			cancel()
			stream.Stop()
		})
	}

	{
		g.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))
	}

	return g.Run()
}

var demoTargets = []string{"api.server", "db.pool", "cache", "billing"}

func (cfg *demoConfig) generate(ctx context.Context) error {
	ticker := time.NewTicker(cfg.interval)
	defer ticker.Stop()

	for count := 0; ; {
		select {
		case <-ticker.C:
			count++
			if err := evcap.Emit(cfg.synthesize(count)); err != nil {
				cfg.debug.Printf("emit: %v", err)
			}
			if cfg.maxCount > 0 && count >= cfg.maxCount {
				cfg.debug.Printf("generated %d events, stopping", count)
				return nil
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (cfg *demoConfig) synthesize(n int) *evcap.Event {
	level := evcap.LevelInfo
	switch {
	case n%17 == 0:
		level = evcap.LevelError
	case n%5 == 0:
		level = evcap.LevelWarn
	case n%3 == 0:
		level = evcap.LevelDebug
	}

	target := demoTargets[rand.Intn(len(demoTargets))]

	span := evcap.NewSpan("handle request", target, evcap.LevelInfo)
	span.AddField("seq", fmt.Sprint(n))

	ev := evcap.CaptureEvent(fmt.Sprintf("demo event %d", n), level, target)
	return ev.WithSpanStack([]*evcap.SpanInfo{span})
}

func (cfg *demoConfig) consume(ctx context.Context, stream *evcap.Stream[evcap.Event]) error {
	var count, printed uint64
	defer func() {
		cfg.debug.Printf("received %d events, printed %d", count, printed)
	}()

	for {
		ev, err := stream.Recv(ctx)
		if err != nil {
			return err
		}

		count++
		if !cfg.filter.Allow(ev) {
			continue
		}
		printed++

		switch cfg.output {
		case "ndjson", "prettyjson":
			if err := writeJSON(cfg.stdout, cfg.output, ev); err != nil {
				return err
			}
		default:
			fmt.Fprintln(cfg.stdout, eventLine(ev))
		}
	}
}
