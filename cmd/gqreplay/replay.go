package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Douile/gqreplay/internal/config"
	"github.com/Douile/gqreplay/internal/rendezvous"
	"github.com/Douile/gqreplay/record"
	"github.com/Douile/gqreplay/replay"
)

func newReplayCmd(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <file>",
		Short: "Replay a captured test",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(global, args[0])
		},
	}
}

func runReplay(global *globalFlags, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	replayRecord, err := record.Load(f)
	if err != nil {
		return err
	}

	backend, err := resolveBackend(global)
	if err != nil {
		return err
	}

	queryOptions := replayRecord.Query
	queryOptions.Address = config.ReplayAddress.String()

	ready := rendezvous.New()
	srv := replay.New(config.ReplayAddress, replayRecord, ready)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Run()
	}()

	ready.Wait()

	value, queryErr := backend.Query(context.Background(), queryOptions)

	if err := <-serverErr; err != nil {
		return fmt.Errorf("replay server: %w", err)
	}
	if queryErr != nil {
		return fmt.Errorf("querying backend: %w", queryErr)
	}

	matches := value.Equal(replayRecord.Value)
	fmt.Printf("match=%v\n", matches)
	if !matches {
		fmt.Print(value.Diff(replayRecord.Value))
	}

	if !matches {
		os.Exit(1)
	}

	return nil
}
