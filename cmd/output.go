package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"
)

var errUnknownFormat = errors.New("unknown output format")

func (f *outputFormat) String() string {
	return string(*f)
}

func (f *outputFormat) Set(value string) error {
	switch candidate := outputFormat(strings.ToLower(strings.TrimSpace(value))); candidate {
	case formatText, formatJSON, formatYAML:
		*f = candidate
		return nil
	default:
		return fmt.Errorf("%w %q (want text, json or yaml)", errUnknownFormat, value)
	}
}

func (f *outputFormat) Type() string {
	return "format"
}

type output struct {
	format *outputFormat
}

func (o *output) structured() bool {
	return *o.format != formatText
}

// write encodes value in the selected structured format, or prints the result
// of text for the default text format.
func (o *output) write(cmd *cobra.Command, value any, text func() (string, error)) error {
	w := cmd.OutOrStdout()

	switch *o.format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	}

	rendered, err := text()
	if err != nil {
		return fmt.Errorf("render output: %w", err)
	}
	_, err = fmt.Fprintln(w, rendered)
	return err
}
