package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/spf13/cobra"

	"github.com/loamstack/loam-go/model"
	"github.com/loamstack/loam-go/progress"
)

func newUploadCmd(a *app) *cobra.Command {
	var (
		datasetID   string
		destination string
		baseDir     string
		recursive   bool
		appendTo    bool
	)

	cmd := &cobra.Command{
		Use:   "upload [flags] PATH...",
		Short: "Upload files or directories to a dataset",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureSession(cmd); err != nil {
				return err
			}

			fsys := billy.NewOSFS("/")
			uploads, err := collectUploads(fsys, args, baseDir, recursive)
			if err != nil {
				return err
			}
			if len(uploads) == 0 {
				return fmt.Errorf("nothing to upload")
			}

			for _, u := range uploads {
				kind := "application/octet-stream"
				if mt, err := mimetype.DetectFile(u.Path()); err == nil {
					kind = mt.String()
				}
				cmd.Printf("  %s (%s)\n", u.Path(), kind)
			}

			var dest *model.PackageID
			if destination != "" {
				id := model.PackageID(destination)
				dest = &id
			}

			manifests, err := a.client.UploadFiles(cmd.Context(),
				model.DatasetID(datasetID), dest, appendTo, uploads,
				progress.Func(func(u progress.Update) {
					cmd.Printf("\r%s: %.1f%%", u.FileName, u.PercentDone())
					if u.Done {
						cmd.Printf("\n")
					}
				}))
			if err != nil {
				return err
			}

			cmd.Printf("upload complete: %d package(s)\n", len(manifests))
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetID, "dataset", "", "target dataset id")
	cmd.Flags().StringVar(&destination, "destination", "", "existing package to append into")
	cmd.Flags().StringVar(&baseDir, "base-dir", "", "base directory destination paths are computed against")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "preserve directory structure, including the top directory")
	cmd.Flags().BoolVar(&appendTo, "append", false, "append files to an existing package")
	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

// collectUploads expands the argument list into file uploads. Directory
// arguments require --recursive and are walked in full.
func collectUploads(fsys *billy.FS, args []string, baseDir string, recursive bool) ([]*model.FileUpload, error) {
	var uploads []*model.FileUpload

	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		info, err := fsys.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}

		if !info.IsDir() {
			u, err := newUpload(fsys, baseDir, abs, recursive)
			if err != nil {
				return nil, err
			}
			uploads = append(uploads, u)
			continue
		}

		if !recursive {
			return nil, fmt.Errorf("%s is a directory; use --recursive", arg)
		}
		err = fsys.Walk(abs, func(path string, fi os.FileInfo, err error) error {
			if err != nil || fi.IsDir() {
				return err
			}
			u, err := model.NewRecursiveUpload(fsys, abs, path)
			if err != nil {
				return err
			}
			uploads = append(uploads, u)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return uploads, nil
}

func newUpload(fsys *billy.FS, baseDir, path string, recursive bool) (*model.FileUpload, error) {
	if recursive && baseDir != "" {
		return model.NewRecursiveUpload(fsys, baseDir, path)
	}
	return model.NewFlatUpload(fsys, baseDir, path)
}
