package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mathi-naickan/opensaf-sub000/internal/config"
	redundancyv1alpha1 "github.com/mathi-naickan/opensaf-sub000/pkg/apis/redundancy/v1alpha1"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	listOutputFormat string
	listConfigPath   string
	listPattern      string
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "list <sg|su|si|dep>",
		Short:     "List service groups, service units, service instances, or dependency edges",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"sg", "su", "si", "dep"},
		RunE:      runList,
	}

	cmd.Flags().StringVarP(&listOutputFormat, "output", "o", "table", "output format: table, json, yaml")
	cmd.Flags().StringVar(&listConfigPath, "config-path", "", "config tree directory (defaults to the user config directory)")
	cmd.Flags().StringVar(&listPattern, "name", "", "glob pattern to filter by name, e.g. 'payments-*'")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	kind := args[0]
	dir, ok := getResourceTypes[kind]
	if !ok {
		return fmt.Errorf("unknown resource type %q (expected one of sg, su, si, dep)", kind)
	}

	configPath := listConfigPath
	if configPath == "" {
		configPath = config.GetDefaultConfigPathOrPanic()
	}
	storage := config.NewStorageWithPath(configPath)

	names, err := storage.List(dir)
	if err != nil {
		return err
	}
	sort.Strings(names)

	if listPattern != "" {
		filtered := names[:0]
		for _, name := range names {
			if matchesWildcard(name, listPattern) {
				filtered = append(filtered, name)
			}
		}
		names = filtered
	}

	switch listOutputFormat {
	case "table":
		return printListTable(cmd, kind, dir, storage, names)
	case "json", "yaml":
		return printListStructured(cmd, dir, storage, names)
	default:
		return fmt.Errorf("unknown output format %q (expected table, json, or yaml)", listOutputFormat)
	}
}

// printListTable loads each object's spec so the table can show a couple of
// at-a-glance columns per resource kind, alongside the bare name.
func printListTable(cmd *cobra.Command, kind, dir string, storage *config.Storage, names []string) error {
	if len(names) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no %s objects found\n", kind)
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)

	switch kind {
	case "sg":
		t.AppendHeader(table.Row{"Name", "Model", "PreferredActive", "PreferredStandby", "Admin"})
		for _, name := range names {
			var spec redundancyv1alpha1.ServiceGroupSpec
			if err := loadSpec(storage, dir, name, &spec); err != nil {
				return err
			}
			t.AppendRow(table.Row{name, spec.RedundancyModel, spec.PreferredActiveSUs, spec.PreferredStandbySUs, spec.AdminState})
		}
	case "su":
		t.AppendHeader(table.Row{"Name", "ServiceGroup", "Node", "Rank", "Admin"})
		for _, name := range names {
			var spec redundancyv1alpha1.ServiceUnitSpec
			if err := loadSpec(storage, dir, name, &spec); err != nil {
				return err
			}
			t.AppendRow(table.Row{name, spec.ServiceGroup, spec.Node, spec.Rank, spec.AdminState})
		}
	case "si":
		t.AppendHeader(table.Row{"Name", "ServiceGroup", "Rank", "Admin"})
		for _, name := range names {
			var spec redundancyv1alpha1.ServiceInstanceSpec
			if err := loadSpec(storage, dir, name, &spec); err != nil {
				return err
			}
			t.AppendRow(table.Row{name, spec.ServiceGroup, spec.Rank, spec.AdminState})
		}
	case "dep":
		t.AppendHeader(table.Row{"Name", "ServiceGroup", "Sponsor", "Dependent", "RequiredHA", "ToleranceMS"})
		for _, name := range names {
			var spec redundancyv1alpha1.DependencyEdgeSpec
			if err := loadSpec(storage, dir, name, &spec); err != nil {
				return err
			}
			t.AppendRow(table.Row{name, spec.ServiceGroup, spec.Sponsor, spec.Dependent, spec.RequiredHA, spec.ToleranceMS})
		}
	}

	t.Render()
	return nil
}

// printListStructured renders the raw YAML documents for json/yaml output,
// keyed by object name.
func printListStructured(cmd *cobra.Command, dir string, storage *config.Storage, names []string) error {
	entries := make(map[string]interface{}, len(names))
	for _, name := range names {
		data, err := storage.Load(dir, name)
		if err != nil {
			return err
		}
		var raw interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parsing %s: %w", name, err)
		}
		entries[name] = raw
	}

	if listOutputFormat == "yaml" {
		out, err := yaml.Marshal(entries)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	}

	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func loadSpec(storage *config.Storage, dir, name string, out interface{}) error {
	data, err := storage.Load(dir, name)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

// matchesWildcard reports whether name matches a glob-style pattern
// supporting a single leading/trailing/surrounding "*" and "?" for any
// single character. An empty pattern matches everything.
func matchesWildcard(name, pattern string) bool {
	if pattern == "" {
		return true
	}
	if pattern == name {
		return true
	}

	switch {
	case strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*") && len(pattern) > 1:
		return strings.Contains(name, pattern[1:len(pattern)-1])
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(name, pattern[1:])
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(name, pattern[:len(pattern)-1])
	case strings.Contains(pattern, "?"):
		return matchesQuestionMark(name, pattern)
	default:
		return false
	}
}

func matchesQuestionMark(name, pattern string) bool {
	if len(name) != len(pattern) {
		return false
	}
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '?' {
			continue
		}
		if pattern[i] != name[i] {
			return false
		}
	}
	return true
}
