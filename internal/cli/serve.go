package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/insulog/internal/config"
	"github.com/sakif/insulog/internal/server"
)

type serveOptions struct {
	port   int
	dbPath string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until interrupted.

Flags override the config file, the dotenv file and the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.ConfigPath, rootOpts.EnvFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = opts.port
			}
			if cmd.Flags().Changed("db") {
				cfg.Database.Path = opts.dbPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := cfg.NewLogger(cmd.ErrOrStderr())
			slog.SetDefault(logger)

			srv, err := server.New(cfg, logger)
			if err != nil {
				return err
			}
			return srv.Start()
		},
	}

	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "listen port (overrides config)")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides config)")

	return cmd
}
