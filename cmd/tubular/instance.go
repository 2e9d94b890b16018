package main

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"

	"github.com/tubularapp/tubular/internal/domain"
)

// newInstanceCommand creates the instance command group
func newInstanceCommand(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instance",
		Short: "Manage backend instances",
	}

	cmd.AddCommand(newInstanceListCommand(app))
	cmd.AddCommand(newInstanceAddCommand(app))
	cmd.AddCommand(newInstanceRemoveCommand(app))

	return cmd
}

func newInstanceListCommand(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured instances",
		RunE: func(cmd *cobra.Command, args []string) error {
			instances := app.store.Instances()
			if len(instances) == 0 {
				fmt.Println("No instances configured.")
				return nil
			}
			for _, inst := range instances {
				fmt.Printf("%s  %s\n", inst.ID, inst.Description())
			}
			return nil
		},
	}
}

func newInstanceAddCommand(app *appState) *cobra.Command {
	var (
		appKind     string
		name        string
		frontendURL string
		proxies     bool
	)

	cmd := &cobra.Command{
		Use:   "add <api-url>",
		Short: "Add a backend instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseApp(appKind)
			if err != nil {
				return err
			}

			instance := domain.NewInstance(kind, name, args[0])
			instance.FrontendURL = frontendURL
			instance.ProxiesVideos = proxies

			added, err := app.store.AddInstance(instance)
			if err != nil {
				return err
			}

			fmt.Printf("Added %s\n", added.Description())
			return nil
		},
	}

	cmd.Flags().StringVar(&appKind, "app", "invidious", "Backend kind: invidious|piped|demo")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&frontendURL, "frontend-url", "", "Frontend URL for share links (Piped)")
	cmd.Flags().BoolVar(&proxies, "proxies-videos", false, "Instance proxies video streams")

	return cmd
}

func newInstanceRemoveCommand(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id-or-name>",
		Short: "Remove an instance and every account on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instance, err := findInstance(app, args[0])
			if err != nil {
				return err
			}
			if err := app.store.RemoveInstance(instance.ID); err != nil {
				return err
			}
			fmt.Printf("Removed %s\n", instance.Description())
			return nil
		},
	}
}

// findInstance resolves an instance by exact id, then by fuzzy name match.
func findInstance(app *appState, query string) (domain.Instance, error) {
	if instance, ok := app.store.FindInstance(query); ok {
		return instance, nil
	}

	instances := app.store.Instances()
	names := make([]string, len(instances))
	for i, inst := range instances {
		names[i] = inst.Description()
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	if len(ranks) == 0 {
		return domain.Instance{}, fmt.Errorf("no instance matches %q: %w", query, domain.ErrInstanceNotFound)
	}
	sort.Sort(ranks)
	return instances[ranks[0].OriginalIndex], nil
}
