package main

import (
	"github.com/spf13/cobra"

	"github.com/loamstack/loam-go/model"
)

func newStatusCmd(a *app) *cobra.Command {
	var importID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which parts of an import the platform is still missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureSession(cmd); err != nil {
				return err
			}
			status, err := a.client.GetUploadStatus(cmd.Context(), model.ImportID(importID))
			if err != nil {
				return err
			}
			if status == nil || len(status.Files) == 0 {
				cmd.Println("all parts received")
				return nil
			}
			for _, f := range status.Files {
				cmd.Printf("%s: %d of %d part(s) missing %v\n",
					f.FileName, len(f.MissingParts), f.ExpectedTotalParts, f.MissingParts)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&importID, "import-id", "", "import identifier from the upload preview")
	_ = cmd.MarkFlagRequired("import-id")
	return cmd
}
