package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hrygo/uihint/ai/format"
)

type formatOptions struct {
	format string
	output string
}

func newFormatCmd() *cobra.Command {
	opts := &formatOptions{}
	cmd := &cobra.Command{
		Use:   "format [file]",
		Short: "Format an AI response into a UI hint without starting the server",
		Long: `Reads an envelope such as {"format": "json", "data": {...}} from a file or stdin
and prints the resulting UI hint. With --format the input is taken as raw data
of that format instead of a full envelope.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			env, err := opts.envelope(input)
			if err != nil {
				return err
			}
			hint, err := format.NewFormatter().Format(cmd.Context(), env)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), hint, opts.output)
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", `treat input as raw data of this format, "json" or "markdown"`)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "json", `output encoding, "json" or "yaml"`)
	return cmd
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return b, errors.Wrap(err, "failed to read stdin")
	}
	b, err := os.ReadFile(args[0])
	return b, errors.Wrapf(err, "failed to read %s", args[0])
}

func (o *formatOptions) envelope(input []byte) (*format.Envelope, error) {
	if o.format == "" {
		env := &format.Envelope{}
		if err := json.Unmarshal(input, env); err != nil {
			return nil, err
		}
		return env, nil
	}

	f, err := format.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}
	if f == format.Markdown {
		return format.NewCardEnvelope(string(input)), nil
	}

	wrapped, err := json.Marshal(struct {
		Format format.Format   `json:"format"`
		Data   json.RawMessage `json:"data"`
	}{Format: f, Data: input})
	if err != nil {
		return nil, errors.Wrap(format.ErrInvalidEnvelope, err.Error())
	}
	env := &format.Envelope{}
	if err := json.Unmarshal(wrapped, env); err != nil {
		return nil, err
	}
	return env, nil
}

func writeOutput(w io.Writer, v any, output string) error {
	switch output {
	case "json":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to encode json")
		}
		_, err = w.Write(append(b, '\n'))
		return err
	case "yaml":
		b, err := yaml.Marshal(v)
		if err != nil {
			return errors.Wrap(err, "failed to encode yaml")
		}
		_, err = w.Write(b)
		return err
	default:
		return errors.Errorf("unsupported output %q, want \"json\" or \"yaml\"", output)
	}
}
