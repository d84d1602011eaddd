package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/peterbourgon/evcap"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"
)

type rootConfig struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	file     string
	logLevel string
	output   string

	levelStr      string
	target        string
	message       string
	span          string
	thread        string
	correlationID string

	filter evcap.Filter

	info, debug *log.Logger
}

func (cfg *rootConfig) registerBaseFlags(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{
		ShortName:   'f',
		LongName:    "file",
		Value:       ffval.NewValue(&cfg.file),
		Usage:       "snapshot file to operate on",
		Placeholder: "PATH",
	})
	fs.AddFlag(ff.FlagConfig{
		ShortName:   'l',
		LongName:    "log",
		Value:       ffval.NewEnum(&cfg.logLevel, "info", "i", "debug", "d", "none", "n"),
		Usage:       "log level: i/info, d/debug, n/none",
		Placeholder: "LEVEL",
	})
	fs.AddFlag(ff.FlagConfig{
		ShortName:   'o',
		LongName:    "output",
		Value:       ffval.NewEnum(&cfg.output, "text", "ndjson", "prettyjson"),
		Usage:       "output format: text, ndjson, prettyjson",
		Placeholder: "FORMAT",
	})
}

func (cfg *rootConfig) registerFilterFlags(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{
		LongName:    "level",
		Value:       ffval.NewValue(&cfg.levelStr),
		NoDefault:   true,
		Usage:       "exact event level: ERROR, WARN, INFO, DEBUG, TRACE",
		Placeholder: "LEVEL",
	})
	fs.AddFlag(ff.FlagConfig{
		ShortName: 't',
		LongName:  "target",
		Value:     ffval.NewValue(&cfg.target),
		NoDefault: true,
		Usage:     "substring of the event target",
	})
	fs.AddFlag(ff.FlagConfig{
		ShortName: 'm',
		LongName:  "message",
		Value:     ffval.NewValue(&cfg.message),
		NoDefault: true,
		Usage:     "substring of the event message",
	})
	fs.AddFlag(ff.FlagConfig{
		ShortName: 's',
		LongName:  "span",
		Value:     ffval.NewValue(&cfg.span),
		NoDefault: true,
		Usage:     "substring of any span name on the event",
	})
	fs.AddFlag(ff.FlagConfig{
		LongName:  "thread",
		Value:     ffval.NewValue(&cfg.thread),
		NoDefault: true,
		Usage:     "exact thread ID",
	})
	fs.AddFlag(ff.FlagConfig{
		ShortName:   'c',
		LongName:    "correlation",
		Value:       ffval.NewValue(&cfg.correlationID),
		NoDefault:   true,
		Usage:       "exact correlation ID",
		Placeholder: "ID",
	})
}

func (cfg *rootConfig) buildFilter() error {
	cfg.filter = evcap.Filter{
		Target:        cfg.target,
		Message:       cfg.message,
		Span:          cfg.span,
		Thread:        cfg.thread,
		CorrelationID: cfg.correlationID,
	}

	if cfg.levelStr != "" {
		level, err := evcap.ParseLevel(cfg.levelStr)
		if err != nil {
			return err
		}
		cfg.filter.Level = &level
	}

	return nil
}

func (cfg *rootConfig) loadSnapshot() (evcap.ExportData, error) {
	if cfg.file == "" {
		return evcap.ExportData{}, fmt.Errorf("a snapshot file is required (-f, --file)")
	}

	data, err := os.ReadFile(cfg.file)
	if err != nil {
		return evcap.ExportData{}, fmt.Errorf("read snapshot: %w", err)
	}

	ed, err := evcap.DecodeExportData(data)
	if err != nil {
		return evcap.ExportData{}, err
	}

	cfg.debug.Printf("%s: format %s, %d events", cfg.file, ed.Metadata.FormatVersion, ed.Metadata.TotalEvents)

	return ed, nil
}
