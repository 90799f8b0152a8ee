// Package cli implements the ecoruta command: session management against the
// EcoRuta backend, resource listing, the portal server and the devserver.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/ecoruta/portal/internal/pkg/config"
	"github.com/ecoruta/portal/pkg/logger"
)

const annotationServer = "server"

type rootFlags struct {
	api       string
	store     string
	storePath string
	profile   string
	logLevel  string
	pretty    bool
}

// NewRootCmd creates the root cobra command of the ecoruta CLI.
func NewRootCmd() *cobra.Command {
	var flags rootFlags
	app := &App{}

	root := &cobra.Command{
		Use:   "ecoruta",
		Short: "EcoRuta client",
		Long:  "ecoruta signs in to the EcoRuta backend, keeps the session tokens and serves the portal.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg, flags)

			app.cfg = cfg
			app.log = logger.Init(logger.Options{
				Level:  cfg.LogLevel,
				Pretty: cfg.Pretty,
				Output: cmd.ErrOrStderr(),
			})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
		},
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.api, "api", "", "backend base URL (or ECORUTA_API_URL)")
	pf.StringVar(&flags.store, "store", "", "token store: file, memory, redis, mongo (or ECORUTA_STORE)")
	pf.StringVar(&flags.storePath, "store-path", "", "credentials file for the file store (or ECORUTA_STORE_PATH)")
	pf.StringVar(&flags.profile, "profile", "", "token profile for the redis and mongo stores (or ECORUTA_STORE_PROFILE)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (or ECORUTA_LOG_LEVEL)")
	pf.BoolVar(&flags.pretty, "pretty", false, "human-friendly log output (default for client commands)")

	root.AddCommand(
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newProfileCmd(app),
		newListCmd(app),
		newServeCmd(app),
		newDevserverCmd(app),
	)

	return root
}

// applyFlags lets explicitly set flags win over the environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f rootFlags) {
	changed := cmd.Flags().Changed
	if changed("api") {
		cfg.APIURL = f.api
	}
	if changed("store") {
		cfg.Store.Kind = f.store
	}
	if changed("store-path") {
		cfg.Store.Path = f.storePath
	}
	if changed("profile") {
		cfg.Store.Profile = f.profile
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	// Commands log for humans; servers emit JSON unless asked otherwise.
	switch {
	case changed("pretty"):
		cfg.Pretty = f.pretty
	case cmd.Annotations[annotationServer] == "":
		cfg.Pretty = true
	}
}
