// evcap is a CLI tool for inspecting and manipulating event snapshot files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/oklog/run"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

func main() {
	var (
		ctx    = context.Background()
		stdin  = os.Stdin
		stdout = os.Stdout
		stderr = os.Stderr
		args   = os.Args[1:]
	)
	err := exec(ctx, stdin, stdout, stderr, args)
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.As(err, &(run.SignalError{})):
		os.Exit(0)
	case err != nil:
		fmt.Fprintf(stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func exec(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args []string) (err error) {
	rootConfig := &rootConfig{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	rootFlags := ff.NewFlagSet("base")
	rootConfig.registerBaseFlags(rootFlags)

	filterFlags := ff.NewFlagSet("filter").SetParent(rootFlags)
	rootConfig.registerFilterFlags(filterFlags)

	rootCommand := &ff.Command{
		Name:      "evcap",
		ShortHelp: "inspect and manipulate event snapshot files",
		Flags:     rootFlags,
	}

	// Config for `evcap summary`.
	summaryConfig := &summaryConfig{rootConfig: rootConfig}
	summaryFlags := ff.NewFlagSet("summary").SetParent(rootFlags)
	summaryConfig.register(summaryFlags)
	summaryCommand := &ff.Command{
		Name:      "summary",
		ShortHelp: "print snapshot metadata and per-level event counts",
		Flags:     summaryFlags,
		Exec:      summaryConfig.Exec,
	}
	rootCommand.Subcommands = append(rootCommand.Subcommands, summaryCommand)

	// Config for `evcap search`.
	searchConfig := &searchConfig{rootConfig: rootConfig}
	searchFlags := ff.NewFlagSet("search").SetParent(filterFlags)
	searchConfig.register(searchFlags)
	searchCommand := &ff.Command{
		Name:      "search",
		ShortHelp: "print snapshot events matching the provided filter flags",
		LongHelp:  "Search a snapshot file for events that match the provided filter flags.",
		Flags:     searchFlags,
		Exec:      searchConfig.Exec,
	}
	rootCommand.Subcommands = append(rootCommand.Subcommands, searchCommand)

	// Config for `evcap filter`.
	exportConfig := &exportConfig{rootConfig: rootConfig}
	exportFlags := ff.NewFlagSet("filter").SetParent(filterFlags)
	exportConfig.register(exportFlags)
	exportCommand := &ff.Command{
		Name:      "filter",
		ShortHelp: "re-export a snapshot, keeping only events matching the filter flags",
		Flags:     exportFlags,
		Exec:      exportConfig.Exec,
	}
	rootCommand.Subcommands = append(rootCommand.Subcommands, exportCommand)

	// Config for `evcap demo`.
	demoConfig := &demoConfig{rootConfig: rootConfig}
	demoFlags := ff.NewFlagSet("demo").SetParent(filterFlags)
	demoConfig.register(demoFlags)
	demoCommand := &ff.Command{
		Name:      "demo",
		ShortHelp: "generate synthetic events and stream them to the terminal",
		Flags:     demoFlags,
		Exec:      demoConfig.Exec,
	}
	rootCommand.Subcommands = append(rootCommand.Subcommands, demoCommand)

	// Print help when appropriate.
	showHelp := true
	defer func() {
		errHelp := errors.Is(err, ff.ErrHelp) || errors.Is(err, ff.ErrNoExec)
		if showHelp || errHelp {
			fmt.Fprintf(stderr, "\n%s\n", ffhelp.Command(rootCommand))
		}
		if errHelp {
			err = nil
		}
	}()

	// Initial parsing.
	if err := rootCommand.Parse(args, ff.WithEnvVarPrefix("EVCAP")); err != nil {
		return err
	}

	// Validation and set-up.
	{
		var infodst, debugdst io.Writer
		switch rootConfig.logLevel {
		case "n", "none":
			infodst, debugdst = io.Discard, io.Discard
		case "i", "info":
			infodst, debugdst = stderr, io.Discard
		case "d", "debug":
			infodst, debugdst = stderr, stderr
		default:
			return fmt.Errorf("invalid log level %q", rootConfig.logLevel)
		}
		rootConfig.info = log.New(infodst, "", 0)
		rootConfig.debug = log.New(debugdst, "[DEBUG] ", log.Lmsgprefix)
	}

	if err := rootConfig.buildFilter(); err != nil {
		return err
	}

	// Run errors shouldn't show help by default.
	showHelp = false

	// Run the selected command.
	return rootCommand.Run(ctx)
}
