package main

import (
	"fmt"
	"io"

	"github.com/entrhq/gridrunner/pkg/capabilities"
	"github.com/entrhq/gridrunner/pkg/harness"
	"github.com/entrhq/gridrunner/pkg/settings"
	"github.com/gobwas/glob"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newResolveCmd(a *app) *cobra.Command {
	var (
		filter    string
		format    string
		writeBack string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the session capability set",
		Long: `Resolve merges the default capability table with overrides from --set,
the run file, the settings file and the environment, then prints the result.

With --write-back the materialized settings are saved to a YAML file that can
be passed to a later run with --settings-file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var matcher glob.Glob
			if filter != "" {
				g, err := glob.Compile(filter, '.')
				if err != nil {
					return fmt.Errorf("invalid filter %q: %w", filter, err)
				}
				matcher = g
			}

			cfg := a.harness.Setup()
			if err := printResolution(cmd.OutOrStdout(), cfg, matcher, format); err != nil {
				return err
			}

			if writeBack != "" {
				return a.saveSettings(writeBack)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only print capabilities matching this glob (e.g. 'record*')")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or yaml")
	cmd.Flags().StringVar(&writeBack, "write-back", "", "Save the materialized settings to this YAML file")
	return cmd
}

func printResolution(w io.Writer, cfg harness.SessionConfig, matcher glob.Glob, format string) error {
	entries := make([]capabilities.Entry, 0, cfg.Capabilities.Len())
	for _, e := range cfg.Capabilities.Entries() {
		if matcher == nil || matcher.Match(e.Name) {
			entries = append(entries, e)
		}
	}

	switch format {
	case "yaml":
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, e := range entries {
			var value yaml.Node
			if err := value.Encode(e.Value); err != nil {
				return fmt.Errorf("failed to encode %s: %w", e.Name, err)
			}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: e.Name}, &value)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(node); err != nil {
			return fmt.Errorf("failed to write yaml: %w", err)
		}
		return enc.Close()
	case "table":
		overridden := make(map[string]bool, len(cfg.Overridden))
		for _, name := range cfg.Overridden {
			overridden[name] = true
		}
		fmt.Fprintln(w, renderTable(entries, overridden))
		fmt.Fprintln(w, renderSummary(cfg))
		return nil
	default:
		return fmt.Errorf("unknown format %q (must be table or yaml)", format)
	}
}

func (a *app) saveSettings(path string) error {
	if a.file != nil && a.file.Path() == path {
		return a.file.Save()
	}

	out, err := settings.NewFileStore(path)
	if err != nil {
		return err
	}
	switch s := a.store.(type) {
	case *settings.MemoryStore:
		out.Merge(s.Snapshot())
	case *settings.FileStore:
		out.Merge(s.Snapshot())
	}
	if err := out.Save(); err != nil {
		return err
	}
	a.logger.Infof("Saved materialized settings to %s", path)
	return nil
}
