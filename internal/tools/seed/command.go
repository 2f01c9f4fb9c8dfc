package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/platemenu/platemenu/internal/config"
	"github.com/platemenu/platemenu/internal/database"
	"github.com/platemenu/platemenu/internal/domain"
	"github.com/platemenu/platemenu/internal/tools/common"
	"github.com/platemenu/platemenu/internal/tools/ui"
)

type options struct {
	envFile   string
	demoEmail string
	ci        bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Database migration and seed tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().StringVar(&opts.demoEmail, "demo-email", "", "override demo owner email")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newMigrateCommand(opts), newApplyCommand(opts), newPurgePasscodesCommand(opts))
	return cmd
}

func newMigrateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed migrate", func(ctx context.Context) ([]string, error) {
				_, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				if err := database.Migrate(db); err != nil {
					return nil, err
				}
				return []string{"schema migrated: users, passcodes, restaurants, categories, dishes"}, nil
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "seed migrate", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Migrate and seed demo menu data",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed apply", func(ctx context.Context) ([]string, error) {
				_, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				if err := database.Migrate(db); err != nil {
					return nil, err
				}
				report, err := database.Seed(db, opts.demoEmail)
				if err != nil {
					return nil, err
				}
				if report.Noop {
					return []string{"demo data already present, nothing to do"}, nil
				}
				return []string{
					fmt.Sprintf("created users: %d", report.CreatedUsers),
					fmt.Sprintf("created restaurants: %d", report.CreatedRestaurants),
					fmt.Sprintf("created categories: %d", report.CreatedCategories),
					fmt.Sprintf("created dishes: %d", report.CreatedDishes),
				}, nil
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "seed apply", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func newPurgePasscodesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-passcodes",
		Short: "Delete expired one-time passcodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed purge-passcodes", func(ctx context.Context) ([]string, error) {
				_, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				res := db.Where("expires_at <= ?", time.Now().UTC()).Delete(&domain.Passcode{})
				if res.Error != nil {
					return nil, res.Error
				}
				return []string{fmt.Sprintf("deleted expired passcodes: %d", res.RowsAffected)}, nil
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "seed purge-passcodes", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func run(opts *options, title string, fn func(context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		return fn(context.Background())
	}
	return ui.Run(title, fn)
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
