// ABOUTME: exec and trigger subcommands: deliver a hook given as JSON
// ABOUTME: Input is re-encoded with the dispatcher's codec; outputs print as JSON

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"github.com/mauromedda/hookwire/pkg/codec"
	"github.com/mauromedda/hookwire/pkg/hook"
)

func newExecCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <hook> [json-input]",
		Short: "Deliver a hook to every active script listening for it",
		Example: `  hookhost exec eval '"ls -1"'
  hookhost exec random-number`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.dispatcher(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDispatcher(d)

			payload, err := encodeInput(d.Codec(), inputArg(args, 1))
			if err != nil {
				return err
			}
			kind := hook.Kind(args[0])
			res := d.ExecuteRaw(cmd.Context(), kind, payload)
			if res.Len() == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no active script listens for %q\n", kind)
				return nil
			}

			w := cmd.OutOrStdout()
			failed := 0
			for _, o := range res.All() {
				if o.Err != nil {
					failed++
					fmt.Fprintf(w, "%s: error: %v\n", o.Script, o.Err)
					continue
				}
				text, err := formatOutput(d.Codec(), o.Output)
				if err != nil {
					failed++
					fmt.Fprintf(w, "%s: error: %v\n", o.Script, err)
					continue
				}
				fmt.Fprintf(w, "%s: %s\n", o.Script, text)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scripts failed", failed, res.Len())
			}
			return nil
		},
	}
}

func newTriggerCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "trigger <script> <hook> [json-input]",
		Short:   "Deliver a hook to one script, active or not",
		Example: `  hookhost trigger randomize ping`,
		Args:    cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.dispatcher(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDispatcher(d)

			payload, err := encodeInput(d.Codec(), inputArg(args, 2))
			if err != nil {
				return err
			}
			out, err := d.TriggerRaw(cmd.Context(), args[0], hook.Kind(args[1]), payload)
			if err != nil {
				return err
			}
			text, err := formatOutput(d.Codec(), out)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
}

func inputArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return "{}"
}

// encodeInput converts JSON text to a payload in c's encoding.
func encodeInput(c codec.Codec, text string) ([]byte, error) {
	v, err := parseJSON(text)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON input: %w", err)
	}
	return codec.Encode(c, v)
}

func parseJSON(text string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return numbers(v), nil
}

// numbers replaces json.Number with an integer when the value is integral,
// so integer fields of script inputs decode from binary codecs.
func numbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		if f >= 0 && f <= math.MaxUint64 && f == math.Trunc(f) {
			return uint64(f)
		}
		return f
	case map[string]any:
		for k, e := range x {
			x[k] = numbers(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = numbers(e)
		}
		return x
	default:
		return v
	}
}

// formatOutput decodes a script's payload and renders it as compact JSON.
func formatOutput(c codec.Codec, payload []byte) (string, error) {
	v, err := codec.Decode[any](c, payload)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(plain(v))
	if err != nil {
		return "", fmt.Errorf("rendering output: %w", err)
	}
	return string(out), nil
}

// plain turns generically decoded values into JSON-encodable ones. Binary
// codecs produce maps with non-string keys, such as integer field keys.
func plain(v any) any {
	switch x := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[fmt.Sprint(k)] = plain(e)
		}
		return m
	case map[string]any:
		for k, e := range x {
			x[k] = plain(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = plain(e)
		}
		return x
	default:
		return v
	}
}
