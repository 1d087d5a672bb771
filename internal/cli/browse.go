package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Jahid786-lang/vensar-drive/internal/domain"
	"github.com/Jahid786-lang/vensar-drive/internal/progress"
)

func newLsCmd(app *App) *cobra.Command {
	var folderID string

	cmd := &cobra.Command{
		Use:   "ls [folder-id]",
		Short: "List a folder's contents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				folderID = args[0]
			}
			app.explorer.Open(folderID)

			listing, err := app.explorer.List(cmd.Context())
			if err != nil {
				return err
			}

			crumbs, err := app.explorer.Breadcrumbs(cmd.Context())
			if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), renderTrail(crumbs))
			}

			out := cmd.OutOrStdout()
			for _, f := range listing.Folders {
				fmt.Fprintf(out, "%-12s %s/\n", f.ID, f.Name)
			}
			for _, f := range listing.Files {
				fmt.Fprintf(out, "%-12s %-40s %8s\n", f.ID, f.Name, progress.FormatBytes(f.Size))
			}
			if len(listing.Folders) == 0 && len(listing.Files) == 0 {
				fmt.Fprintln(out, "(empty)")
			}
			return nil
		},
	}
	return cmd
}

func newTreeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show the folder tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			roots, err := app.explorer.Tree(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, domain.RootFolderName)
			for _, root := range roots {
				printNode(out, root, 1)
			}
			return nil
		},
	}
}

func printNode(w io.Writer, node *domain.FolderNode, depth int) {
	fmt.Fprintf(w, "%s%s  [%s]\n", strings.Repeat("  ", depth), node.Name, node.ID)
	for _, child := range node.Children {
		printNode(w, child, depth+1)
	}
}

func newSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search folders and files by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.explorer.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, f := range result.Folders {
				fmt.Fprintf(out, "%-12s %s/\n", f.ID, f.Name)
			}
			for _, f := range result.Files {
				fmt.Fprintf(out, "%-12s %s\n", f.ID, f.Name)
			}
			if len(result.Folders) == 0 && len(result.Files) == 0 {
				fmt.Fprintln(out, "no matches")
			}
			return nil
		},
	}
}

func renderTrail(crumbs []domain.Crumb) string {
	names := make([]string, len(crumbs))
	for i, c := range crumbs {
		names[i] = c.Name
	}
	return strings.Join(names, " / ")
}
