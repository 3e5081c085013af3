package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Douile/gqreplay/capture"
	"github.com/Douile/gqreplay/internal/logctx"
	"github.com/Douile/gqreplay/record"
	"github.com/Douile/gqreplay/redact"
	"github.com/Douile/gqreplay/types"
)

type captureFlags struct {
	device   string
	savePcap string
	redact   bool
}

func newCaptureCmd(global *globalFlags) *cobra.Command {
	flags := &captureFlags{}

	cmd := &cobra.Command{
		Use:   "capture <game> <address> [port]",
		Short: "Capture a new test (requires raw packet capture privileges)",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(global, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.device, "device", "d", "", "capture device (default: first device with an address)")
	cmd.Flags().StringVarP(&flags.savePcap, "save-pcap", "c", "", "also save raw captured frames to this pcap file")
	cmd.Flags().BoolVar(&flags.redact, "redact", false, "censor player names in the saved replay")

	return cmd
}

func runCapture(global *globalFlags, flags *captureFlags, args []string) error {
	opts := types.QueryOptions{Game: args[0], Address: args[1]}
	if len(args) == 3 {
		port, err := strconv.ParseUint(args[2], 10, 16)
		if err != nil {
			return err
		}
		p := uint16(port)
		opts.Port = &p
	}

	backend, err := resolveBackend(global)
	if err != nil {
		return err
	}

	driver, err := capture.Open(flags.device)
	if err != nil {
		return err
	}
	defer driver.Close()

	replayRecord, err := driver.Capture(context.Background(), opts, backend, flags.savePcap)
	if replayRecord == nil {
		return err
	}
	if err != nil {
		// The driver still returns whatever it captured; log the backend
		// failure but keep going so the partial trace is saved.
		logctx.Named("capture").Warn("backend query failed, saving partial trace", zap.Error(err))
	}

	if flags.redact {
		if err := redact.RedactNames(replayRecord); err != nil {
			return err
		}
	}

	fileName := record.FileName(opts, timeNow())

	f, err := os.OpenFile(fileName, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return record.Save(f, replayRecord)
}

// timeNow is a seam so the filename convention's timestamp can be
// overridden in tests without depending on wall-clock time.
var timeNow = func() time.Time { return time.Now() }
