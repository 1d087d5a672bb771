package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jahid786-lang/vensar-drive/internal/domain"
	"github.com/Jahid786-lang/vensar-drive/internal/lock"
	"github.com/Jahid786-lang/vensar-drive/internal/logger"
	"github.com/Jahid786-lang/vensar-drive/internal/preview"
	"github.com/Jahid786-lang/vensar-drive/internal/progress"
	"github.com/Jahid786-lang/vensar-drive/internal/state"
	"github.com/Jahid786-lang/vensar-drive/internal/uploader"
)

func newUploadCmd(app *App) *cobra.Command {
	var folderID string

	cmd := &cobra.Command{
		Use:   "upload <path>...",
		Short: "Upload files or directories",
		Long:  "Upload files into a folder. Directory arguments are walked and their structure recreated on the backend.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flat, nested, err := collectSources(args)
			if err != nil {
				return err
			}
			if len(flat) == 0 && len(nested) == 0 {
				return fmt.Errorf("nothing to upload")
			}

			app.explorer.Open(folderID)

			// One uploader per data dir at a time keeps batch history
			// writes from interleaving.
			guard, err := lock.NewFileLock(app.cfg.State.DataDir)
			if err != nil {
				return err
			}
			if err := guard.Acquire(""); err != nil {
				return err
			}
			defer guard.Release()

			out := cmd.OutOrStdout()
			onProgress := retagBatch(guard, func(p domain.BatchProgress) {
				fmt.Fprintf(out, "\r%s %3d%%  (%d/%d) %s",
					progress.FormatBar(p.AggregatePercent, 30),
					p.AggregatePercent, p.FilesDone, p.FilesTotal, p.CurrentFile)
			})

			history, err := state.NewManager(app.cfg.State.DataDir)
			if err != nil {
				return err
			}
			defer history.Close()

			run := func(files []uploader.Source, dir bool) error {
				start := time.Now()
				var result *domain.BatchResult
				var batchErr error
				if dir {
					result, batchErr = app.explorer.UploadDirectory(cmd.Context(), files, onProgress)
				} else {
					result, batchErr = app.explorer.UploadFiles(cmd.Context(), files, onProgress)
				}
				fmt.Fprintln(out)
				if result == nil {
					return batchErr
				}

				record := state.RecordFor(result, folderID, start, time.Now(), batchErr)
				if err := history.SaveBatch(record); err != nil {
					return err
				}

				fmt.Fprintf(out, "batch %s: %d uploaded, %d failed, %d folders created, %s sent\n",
					result.BatchID, len(result.Uploaded), len(result.Failed),
					result.FoldersCreated, progress.FormatBytes(result.BytesSent))
				for _, item := range result.Failed {
					fmt.Fprintf(out, "  failed: %s: %v\n", item.Name, item.Err)
				}
				return batchErr
			}

			if len(flat) > 0 {
				if err := run(flat, false); err != nil {
					return err
				}
			}
			if len(nested) > 0 {
				if err := run(nested, true); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&folderID, "folder", "f", "", "target folder id (defaults to the root)")
	return cmd
}

// retagBatch wraps a progress callback so the data-dir lock always
// names the batch currently running. Batch ids are minted when a batch
// starts, so the first snapshot of each batch carries a new id.
func retagBatch(guard *lock.FileLock, next progress.Callback) progress.Callback {
	tagged := ""
	return func(p domain.BatchProgress) {
		if p.BatchID != "" && p.BatchID != tagged {
			tagged = p.BatchID
			if err := guard.Acquire(p.BatchID); err != nil {
				logger.Get().Warn("failed to retag upload lock", "error", err)
			}
		}
		next(p)
	}
}

// collectSources splits arguments into plain files and directory
// contents carrying relative paths.
func collectSources(paths []string) (flat, nested []uploader.Source, err error) {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}

		if !info.IsDir() {
			src, err := uploader.FromFile(p, "")
			if err != nil {
				return nil, nil, err
			}
			flat = append(flat, src)
			continue
		}

		base := filepath.Base(filepath.Clean(p))
		walkErr := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(p, path)
			if err != nil {
				return err
			}
			src, err := uploader.FromFile(path, filepath.ToSlash(filepath.Join(base, rel)))
			if err != nil {
				return err
			}
			nested = append(nested, src)
			return nil
		})
		if walkErr != nil {
			return nil, nil, walkErr
		}
	}
	return flat, nested, nil
}

func newDownloadCmd(app *App) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "download <file-id>",
		Short: "Download a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				outPath = args[0]
			}
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outPath, err)
			}
			defer f.Close()

			n, err := app.explorer.Download(cmd.Context(), args[0], f)
			if err != nil {
				os.Remove(outPath)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", outPath, progress.FormatBytes(n))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output path (defaults to the file id)")
	return cmd
}

func newPreviewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <file-id>",
		Short: "Resolve a preview source for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := app.explorer.Preview(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch src.Kind {
			case preview.KindURL:
				fmt.Fprintf(out, "%s\n", src.URL)
			case preview.KindBlob:
				defer src.Blob.Close()
				fmt.Fprintf(out, "no signed URL available; content must be fetched directly (%s)\n", src.MimeType)
			}
			return nil
		},
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent upload batches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := state.NewManager(app.cfg.State.DataDir)
			if err != nil {
				return err
			}
			defer history.Close()

			records, err := history.GetHistory(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "no uploads recorded")
				return nil
			}
			for _, r := range records {
				fmt.Fprintf(out, "%s  %-8s  %3d uploaded  %3d failed  %8s  %s\n",
					formatWhen(r.StartTime), r.Status, r.FilesUploaded, r.FilesFailed,
					progress.FormatBytes(r.BytesSent), r.BatchID)
				if r.Error != "" {
					fmt.Fprintf(out, "    %s\n", r.Error)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of batches to show")
	return cmd
}
