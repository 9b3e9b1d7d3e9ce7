package cmd

import (
	"fmt"

	"github.com/mathi-naickan/opensaf-sub000/internal/config"
	"github.com/mathi-naickan/opensaf-sub000/internal/dependency"
	"github.com/mathi-naickan/opensaf-sub000/internal/model"
	redundancyv1alpha1 "github.com/mathi-naickan/opensaf-sub000/pkg/apis/redundancy/v1alpha1"

	"github.com/spf13/cobra"
)

var checkConfigPath string

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <sg-name>",
		Short: "Validate a service group's dependency edges",
		Long: `Validates the dependency edges belonging to a service group: every
sponsor and dependent must name a service instance that exists in the group,
and the edges must not form a cycle.`,
		Args: cobra.ExactArgs(1),
		RunE: runCheck,
	}

	cmd.Flags().StringVar(&checkConfigPath, "config-path", "", "config tree directory (defaults to the user config directory)")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	sgName := args[0]

	configPath := checkConfigPath
	if configPath == "" {
		configPath = config.GetDefaultConfigPathOrPanic()
	}
	storage := config.NewStorageWithPath(configPath)

	siNames, err := storage.List("serviceinstances")
	if err != nil {
		return fmt.Errorf("listing service instances: %w", err)
	}
	siInGroup := make(map[model.SIName]bool)
	for _, name := range siNames {
		var spec redundancyv1alpha1.ServiceInstanceSpec
		if err := loadSpec(storage, "serviceinstances", name, &spec); err != nil {
			return err
		}
		if spec.ServiceGroup == sgName {
			siInGroup[model.SIName(name)] = true
		}
	}

	depNames, err := storage.List("dependencyedges")
	if err != nil {
		return fmt.Errorf("listing dependency edges: %w", err)
	}

	var edges []model.DependencyEdge
	var undefined []string
	for _, name := range depNames {
		var spec redundancyv1alpha1.DependencyEdgeSpec
		if err := loadSpec(storage, "dependencyedges", name, &spec); err != nil {
			return err
		}
		if spec.ServiceGroup != sgName {
			continue
		}

		sponsor, dependent := model.SIName(spec.Sponsor), model.SIName(spec.Dependent)
		if !siInGroup[sponsor] {
			undefined = append(undefined, fmt.Sprintf("%s: sponsor %q is not a service instance of %s", name, spec.Sponsor, sgName))
		}
		if !siInGroup[dependent] {
			undefined = append(undefined, fmt.Sprintf("%s: dependent %q is not a service instance of %s", name, spec.Dependent, sgName))
		}

		requiredHA := model.HAStandby
		if spec.RequiredHA == "ACTIVE" || spec.RequiredHA == "" {
			requiredHA = model.HAActive
		}
		edges = append(edges, model.DependencyEdge{
			Sponsor:     sponsor,
			Dependent:   dependent,
			RequiredHA:  requiredHA,
			ToleranceMS: spec.ToleranceMS,
		})
	}

	if len(undefined) > 0 {
		for _, msg := range undefined {
			fmt.Fprintln(cmd.OutOrStdout(), msg)
		}
		return fmt.Errorf("%d dependency edge(s) reference an undefined service instance", len(undefined))
	}

	if err := dependency.New().Load(edges); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d service instance(s), %d dependency edge(s), no cycles\n",
		sgName, len(siInGroup), len(edges))
	return nil
}
