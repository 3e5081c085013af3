package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/Douile/gqreplay/internal/config"
	"github.com/Douile/gqreplay/internal/logctx"
	"github.com/Douile/gqreplay/queryimpl"
	"github.com/Douile/gqreplay/types"
)

// globalFlags holds flags shared across subcommands, grounded on the
// original's single `-i/--implementation` clap arg (main.rs).
type globalFlags struct {
	implementation string
	nodePath       string
	gamedigPath    string
	nodeArgs       []string
	verbose        bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "gqreplay",
		Short: "Record and replay game-server query traffic",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flags.verbose {
				logctx.SetLevel(zapcore.DebugLevel)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&flags.implementation, "implementation", "i", "node", `query implementation to use ("node" or "rust")`)
	root.PersistentFlags().StringVar(&flags.nodePath, "node-path", config.DefaultNodePath, "interpreter path for the node implementation")
	root.PersistentFlags().StringVar(&flags.gamedigPath, "gamedig-path", config.DefaultGamedigPath, "query script path for the node implementation")
	root.PersistentFlags().StringArrayVar(&flags.nodeArgs, "node-arg", nil, "extra argument passed to the node interpreter (repeatable)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newCaptureCmd(flags))
	root.AddCommand(newReplayCmd(flags))

	return root
}

// resolveBackend builds the configured query backend, mirroring main.rs's
// implementation-name dispatch ("node" => NodeImpl, "rust" => RustImpl).
// The rust variant models the "links a native query library" backend
// (queryimpl.Library); since no such library is vendored here, it queries
// through a stub that always fails, documenting the gap rather than hiding
// it behind a silently working fake.
func resolveBackend(flags *globalFlags) (queryimpl.Backend, error) {
	switch flags.implementation {
	case "node":
		return queryimpl.NewSubprocess(flags.nodePath, flags.gamedigPath, flags.nodeArgs...), nil
	case "rust":
		return queryimpl.NewLibrary(unvendoredQuerier{}), nil
	default:
		return nil, fmt.Errorf("no such implementation %q", flags.implementation)
	}
}

// unvendoredQuerier satisfies queryimpl.LowLevelQuerier without pulling in a
// real native query library, which this module does not depend on.
type unvendoredQuerier struct{}

func (unvendoredQuerier) QueryRaw(ctx context.Context, options types.QueryOptions) (queryimpl.RawResponse, error) {
	return queryimpl.RawResponse{}, fmt.Errorf("rust implementation requires a native query library, none is vendored")
}
