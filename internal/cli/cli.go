// Package cli wires the command-line surface of the drive client.
package cli

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jahid786-lang/vensar-drive/internal/api"
	"github.com/Jahid786-lang/vensar-drive/internal/config"
	"github.com/Jahid786-lang/vensar-drive/internal/explorer"
	"github.com/Jahid786-lang/vensar-drive/internal/logger"
	"github.com/Jahid786-lang/vensar-drive/internal/preview"
	"github.com/Jahid786-lang/vensar-drive/internal/uploader"
)

// The process owns one global logger; repeated command runs inside a
// single process (tests) reuse the first initialization.
var (
	logInit sync.Once
	logErr  error
)

// App carries the shared wiring every command needs.
type App struct {
	cfg      *config.Config
	client   *api.Client
	explorer *explorer.Explorer

	configPath string
}

// NewRootCmd builds the vensar-drive command tree.
func NewRootCmd() *cobra.Command {
	app := &App{}

	root := &cobra.Command{
		Use:   "vensar-drive",
		Short: "Document drive client",
		Long:  "Browse, upload and manage documents on the Vensar drive backend.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "config file path")

	root.AddCommand(
		newLsCmd(app),
		newTreeCmd(app),
		newSearchCmd(app),
		newMkdirCmd(app),
		newRenameCmd(app),
		newMvCmd(app),
		newRmCmd(app),
		newUploadCmd(app),
		newDownloadCmd(app),
		newPreviewCmd(app),
		newHistoryCmd(app),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func (a *App) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logInit.Do(func() { logErr = logger.Init(cfg.LoggerConfig()) })
	if logErr != nil {
		return fmt.Errorf("failed to initialize logging: %w", logErr)
	}

	// The timeout bounds JSON calls only; uploads and downloads run
	// until their context is cancelled.
	timeout := cfg.Backend.Timeout
	if timeout <= 0 {
		timeout = api.DefaultTimeout
	}
	client, err := api.NewClient(cfg.Backend.BaseURL, api.StaticToken(cfg.Backend.Token),
		api.WithTimeout(timeout))
	if err != nil {
		return err
	}
	a.client = client

	policy := uploader.AbortOnFailure
	if cfg.Upload.ContinueOnError {
		policy = uploader.ContinueOnError
	}
	a.explorer = explorer.New(client,
		explorer.WithScope(cfg.DomainScope()),
		explorer.WithListTTL(cfg.Cache.ListTTL),
		explorer.WithTreeTTL(cfg.Cache.TreeTTL),
		explorer.WithPreviewOptions(preview.WithTTL(cfg.Cache.PreviewTTL)),
		explorer.WithUploadPolicy(policy),
	)
	return nil
}

func formatWhen(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
