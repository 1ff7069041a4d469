package app

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/hitoshi/portfolio/internal/config"
)

// コマンド名
const (
	CommandServe        = "serve"
	CommandWorker       = "worker"
	CommandMigrate      = "migrate"
	CommandSeed         = "seed"
	CommandHashPassword = "hash-password"
	// CommandHealthcheck はdistroless環境でのDockerヘルスチェック用。
	CommandHealthcheck = "healthcheck"
)

// NewRootCommand はportfolioのコマンドツリーを構築する。
// ログはwに出力する。サブコマンドなしで起動した場合はserveを実行する。
func NewRootCommand(w io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "portfolio",
		Short:         "Personal portfolio site with an admin CMS",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          withConfig(w, CommandServe, runServe),
	}

	root.AddCommand(
		&cobra.Command{
			Use:   CommandServe,
			Short: "Apply migrations and start the web server",
			Args:  cobra.NoArgs,
			RunE:  withConfig(w, CommandServe, runServe),
		},
		&cobra.Command{
			Use:   CommandWorker,
			Short: "Run background jobs (expired session cleanup)",
			Args:  cobra.NoArgs,
			RunE:  withConfig(w, CommandWorker, runWorker),
		},
		newMigrateCommand(w),
		newSeedCommand(w),
		&cobra.Command{
			Use:   CommandHashPassword,
			Short: "Read a password from stdin and print its bcrypt hash for ADMIN_PASSWORD_HASH",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runHashPassword(cmd.InOrStdin(), cmd.OutOrStdout())
			},
		},
		// healthcheck は軽量サブコマンドのため、設定読み込みをスキップする
		&cobra.Command{
			Use:   CommandHealthcheck,
			Short: "Probe the local /health endpoint",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return runHealthcheck(healthcheckPort())
			},
		},
	)

	return root
}

func newMigrateCommand(w io.Writer) *cobra.Command {
	up := func(cfg *config.Config) error { return runMigrateUp(cfg) }

	cmd := &cobra.Command{
		Use:   CommandMigrate,
		Short: "Apply all pending database migrations",
		Args:  cobra.NoArgs,
		RunE:  withConfig(w, CommandMigrate, up),
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return withConfig(w, CommandMigrate, func(cfg *config.Config) error {
				return runMigrateDown(cfg, steps)
			})(c, args)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending database migrations",
			Args:  cobra.NoArgs,
			RunE:  withConfig(w, CommandMigrate, up),
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, args []string) error {
				return withConfig(w, CommandMigrate, func(cfg *config.Config) error {
					return runMigrateVersion(cfg, c.OutOrStdout())
				})(c, args)
			},
		},
	)
	return cmd
}

func newSeedCommand(w io.Writer) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   CommandSeed,
		Short: "Import site, credentials and projects from a content directory",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return withConfig(w, CommandSeed, func(cfg *config.Config) error {
				if dir == "" {
					dir = cfg.SeedDir
				}
				return runSeed(cfg, dir)
			})(c, args)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "content directory (default: SEED_DIR)")
	return cmd
}

// withConfig は設定を読み込んでからrunを呼ぶRunEを返す。
func withConfig(w io.Writer, name string, run func(*config.Config) error) func(*cobra.Command, []string) error {
	return func(*cobra.Command, []string) error {
		cfg, err := Init(w)
		if err != nil {
			return err
		}
		logStart(name, cfg)
		return run(cfg)
	}
}
