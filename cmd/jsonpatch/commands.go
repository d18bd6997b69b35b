// (c) 2022-2022, LDC Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/valtimo-go/jsonpatch"
)

type globalFlags struct {
	verbose bool
	cbor    bool
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:           "jsonpatch",
		Short:         "Build, diff and apply RFC 6902 JSON Patches",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if g.verbose {
				level = slog.LevelDebug
			}
			g.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&g.cbor, "cbor", false, "Write patches as CBOR instead of JSON")

	rootCmd.AddCommand(applyCmd(g))
	rootCmd.AddCommand(diffCmd(g))
	rootCmd.AddCommand(setCmd(g))
	return rootCmd
}

func applyCmd(g *globalFlags) *cobra.Command {
	var docFile, patchFile string
	var opts = jsonpatch.NewOptions()

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a JSON or YAML patch to a JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(docFile)
			if err != nil {
				return err
			}
			p, err := readPatch(patchFile)
			if err != nil {
				return err
			}
			g.logger.Debug("applying patch", slog.String("doc", docFile), slog.Int("operations", p.Len()))

			out, err := doc.ApplyWithOptions(p, opts)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&docFile, "doc", "d", "", "Document file (- for stdin)")
	cmd.Flags().StringVarP(&patchFile, "patch", "p", "", "Patch file, JSON or YAML")
	cmd.Flags().BoolVar(&opts.EnsurePathExistsOnAdd, "ensure-path", false, "Create missing parents on add")
	cmd.Flags().BoolVar(&opts.AllowMissingPathOnRemove, "allow-missing", false, "Ignore removal of missing paths")
	cmd.MarkFlagRequired("doc")
	cmd.MarkFlagRequired("patch")
	return cmd
}

func diffCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "diff [source] [target]",
		Short: "Print the patch turning source into target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readDocument(args[0])
			if err != nil {
				return err
			}
			target, err := readDocument(args[1])
			if err != nil {
				return err
			}
			p, err := jsonpatch.DiffDocuments(source, target)
			if err != nil {
				return err
			}
			g.logger.Debug("computed diff", slog.Int("operations", p.Len()))
			return writePatch(cmd.OutOrStdout(), p, g.cbor)
		},
	}
}

func setCmd(g *globalFlags) *cobra.Command {
	var docFile string
	var apply bool

	cmd := &cobra.Command{
		Use:   "set path=value...",
		Short: "Build a patch setting values in a document",
		Long: `Build a patch setting each value at its path, creating missing parents.
A "-" path token appends to an array. Values are parsed as JSON and fall back
to plain strings.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(docFile)
			if err != nil {
				return err
			}

			b := jsonpatch.NewBuilder()
			for _, arg := range args {
				path, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("invalid assignment %q, expected path=value", arg)
				}
				b.AddValue(doc, path, parseValue(value))
			}
			p, err := b.Build()
			if err != nil {
				return err
			}
			g.logger.Debug("built patch", slog.Int("operations", p.Len()))

			if !apply {
				return writePatch(cmd.OutOrStdout(), p, g.cbor)
			}
			out, err := doc.Apply(p)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&docFile, "doc", "d", "", "Document file (- for stdin)")
	cmd.Flags().BoolVar(&apply, "apply", false, "Print the patched document instead of the patch")
	cmd.MarkFlagRequired("doc")
	return cmd
}

func parseValue(s string) json.RawMessage {
	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	data, _ := json.Marshal(s)
	return data
}

func readFile(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}

func readDocument(name string) (*jsonpatch.Document, error) {
	data, err := readFile(name)
	if err != nil {
		return nil, err
	}
	return jsonpatch.ParseDocument(data)
}

// readPatch reads a patch in JSON, or in YAML when the file is not valid JSON.
func readPatch(name string) (jsonpatch.Patch, error) {
	data, err := readFile(name)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		if data, err = yaml.YAMLToJSON(data); err != nil {
			return nil, fmt.Errorf("patch %s is neither JSON nor YAML: %w", name, err)
		}
	}
	return jsonpatch.DecodePatch(data)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writePatch(w io.Writer, p jsonpatch.Patch, asCBOR bool) error {
	if !asCBOR {
		return writeJSON(w, p)
	}
	data, err := p.MarshalCBOR()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
