package main

import (
	"github.com/spf13/cobra"

	"github.com/loamstack/loam-go/model"
)

func newDatasetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "Inspect datasets in the session's organization",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List datasets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureSession(cmd); err != nil {
				return err
			}
			datasets, err := a.client.GetDatasets(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range datasets {
				cmd.Printf("%-40s %-30s %d package(s)\n", d.Content.NodeID, d.Content.Name, d.PackageCount)
			}
			return nil
		},
	}

	get := &cobra.Command{
		Use:   "get NODE_ID",
		Short: "Show one dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureSession(cmd); err != nil {
				return err
			}
			env, err := a.client.GetDataset(cmd.Context(), model.DatasetNodeID(args[0]))
			if err != nil {
				return err
			}
			cmd.Printf("id:       %s\nnode id:  %s\nname:     %s\npackages: %d\n",
				env.Content.ID, env.Content.NodeID, env.Content.Name, env.PackageCount)
			return nil
		},
	}

	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureSession(cmd); err != nil {
				return err
			}
			env, err := a.client.CreateDataset(cmd.Context(), model.CreateDatasetRequest{Name: args[0]})
			if err != nil {
				return err
			}
			cmd.Printf("created %s (%s)\n", env.Content.Name, env.Content.NodeID)
			return nil
		},
	}

	cmd.AddCommand(list, get, create)
	return cmd
}
