package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/velmie/skiplock"
	"github.com/velmie/skiplock/cmd/internal/config"
)

const (
	replPrompt = "Command (h for help): "
	replHelp   = `Usage:
h  help
N  insert N pending items, e.g. 10
q  quit
`
)

func produceCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "produce",
		Short: "Insert PENDING items interactively, or --count items and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProduce(cmd.Context(), count)
		},
	}
	cmd.Flags().IntVar(&count, "count", 0, "insert this many items and exit instead of prompting")

	return cmd
}

func runProduce(parent context.Context, count int) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := app.shutdown(context.WithoutCancel(ctx)); shutdownErr != nil && err == nil {
			err = shutdownErr
		}
	}()

	producer := skiplock.NewProducer(app.backend.inserter(), nil, skiplock.WithProducerLogger(logger))
	if count > 0 {
		items, err := producer.Produce(ctx, count)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%d items were generated\n", len(items))
		return nil
	}

	return repl(ctx, os.Stdin, os.Stdout, producer)
}

// repl reads commands line by line until "q", EOF or ctx cancellation.
// Insert failures are printed and the prompt continues.
func repl(ctx context.Context, in io.Reader, out io.Writer, producer *skiplock.Producer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, replPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		command := strings.TrimSpace(scanner.Text())
		switch command {
		case "":
		case "h":
			fmt.Fprint(out, replHelp)
		case "q":
			return nil
		default:
			n, err := strconv.Atoi(command)
			if err != nil || n <= 0 {
				fmt.Fprintf(out, "Unknown command: %s\n", command)
				continue
			}
			items, err := producer.Produce(ctx, n)
			if err != nil {
				fmt.Fprintf(out, "Insert failed: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "%d items were generated\n", len(items))
		}
	}
}
