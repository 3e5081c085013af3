package queryimpl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/pkg/errors"

	"github.com/Douile/gqreplay/types"
	"github.com/Douile/gqreplay/value"
)

// Subprocess is the "shells out to an interpreter-hosted query script"
// backend, grounded on original_source/src/implementations.rs's NodeImpl.
type Subprocess struct {
	// Interpreter is the executable to run (e.g. "node").
	Interpreter string
	// InterpreterArgs are passed before Script, e.g. flags the interpreter
	// itself needs.
	InterpreterArgs []string
	// Script is the query script path passed to the interpreter.
	Script string
}

// NewSubprocess builds a Subprocess backend.
func NewSubprocess(interpreter, script string, interpreterArgs ...string) *Subprocess {
	return &Subprocess{Interpreter: interpreter, InterpreterArgs: interpreterArgs, Script: script}
}

// Query spawns the interpreter against the script, passing
// `--type <game> <address[:port]>`, and parses its JSON stdout into a
// CommonValue using the well-known node-gamedig response shape.
func (s *Subprocess) Query(ctx context.Context, options types.QueryOptions) (value.CommonValue, error) {
	host := options.Address
	if options.Port != nil {
		host = fmt.Sprintf("%s:%d", options.Address, *options.Port)
	}

	args := append([]string{}, s.InterpreterArgs...)
	args = append(args, s.Script, "--type", options.Game, host)

	cmd := exec.CommandContext(ctx, s.Interpreter, args...)
	cmd.Stderr = os.Stderr

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return value.CommonValue{}, fmt.Errorf("query subprocess exited with %v: %s", exitErr, stdout.String())
		}
		return value.CommonValue{}, errors.Wrapf(err, "running query subprocess %q", s.Interpreter)
	}

	var obj map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &obj); err != nil {
		return value.CommonValue{}, errors.Wrap(err, "decoding query subprocess stdout")
	}

	if errVal, ok := obj["error"]; ok {
		return value.CommonValue{}, fmt.Errorf("query subprocess reported error: %v", errVal)
	}

	return mapSubprocessResponse(obj), nil
}

// mapSubprocessResponse mirrors value.rs's
// TryFrom<serde_json::Value> for CommonValue impl: name/map/password are
// flat string/bool fields, players_online is derived from the length of the
// players array (not a separate field), players_maximum comes from
// maxplayers, and player_names comes from each player object's name field.
func mapSubprocessResponse(obj map[string]any) value.CommonValue {
	var v value.CommonValue

	if s, ok := obj["name"].(string); ok {
		v.Name = &s
	}
	if s, ok := obj["map"].(string); ok {
		v.Map = &s
	}
	if b, ok := obj["password"].(bool); ok {
		v.HasPassword = &b
	}
	if n, ok := obj["maxplayers"].(float64); ok {
		u := uint64(n)
		v.PlayersMaximum = &u
	}

	if players, ok := obj["players"].([]any); ok {
		online := uint64(len(players))
		v.PlayersOnline = &online

		names := make([]string, 0, len(players))
		for _, p := range players {
			player, ok := p.(map[string]any)
			if !ok {
				continue
			}
			if name, ok := player["name"].(string); ok {
				names = append(names, name)
			}
		}
		v.PlayerNames = value.NewPlayerNames(names...)
	} else {
		v.PlayerNames = value.NewPlayerNames()
	}

	return v
}
