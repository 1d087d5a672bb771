package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMkdirCmd(app *App) *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "mkdir <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.explorer.Open(parentID)
			folder, err := app.explorer.CreateFolder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", folder.Name, folder.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&parentID, "parent", "p", "", "parent folder id (defaults to the root)")
	return cmd
}

func newRenameCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <folder|file> <id> <new-name>",
		Short: "Rename a folder or file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, name := args[0], args[1], args[2]
			switch kind {
			case "folder":
				folder, err := app.explorer.RenameFolder(cmd.Context(), id, name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "renamed folder %s to %s\n", id, folder.Name)
			case "file":
				file, err := app.explorer.RenameFile(cmd.Context(), id, name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "renamed file %s to %s\n", id, file.Name)
			default:
				return fmt.Errorf("unknown kind %q (want folder or file)", kind)
			}
			return nil
		},
	}
	return cmd
}

func newMvCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mv <folder|file> <id> <target-folder-id>",
		Short: "Move a folder or file (empty target means the root)",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id := args[0], args[1]
			target := ""
			if len(args) == 3 {
				target = args[2]
			}

			switch kind {
			case "folder":
				if _, err := app.explorer.MoveFolder(cmd.Context(), id, target); err != nil {
					return err
				}
			case "file":
				if _, err := app.explorer.MoveFile(cmd.Context(), id, target); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown kind %q (want folder or file)", kind)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved %s %s\n", kind, id)
			return nil
		},
	}
	return cmd
}

func newRmCmd(app *App) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "rm <folder|file> <id>",
		Short: "Delete a folder or file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id := args[0], args[1]
			out := cmd.OutOrStdout()

			switch kind {
			case "folder":
				if recursive {
					stats, err := app.explorer.DeleteFolderRecursive(cmd.Context(), id)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "deleted %d folders and %d files\n", stats.FoldersDeleted, stats.FilesDeleted)
					return nil
				}
				if err := app.explorer.DeleteFolder(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(out, "deleted folder %s\n", id)
			case "file":
				if err := app.explorer.DeleteFile(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(out, "deleted file %s\n", id)
			default:
				return fmt.Errorf("unknown kind %q (want folder or file)", kind)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "delete a folder with everything inside it")
	return cmd
}
