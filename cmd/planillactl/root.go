package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"planillas/internal/config"
	"planillas/internal/database"
	"planillas/internal/repository"
	"planillas/internal/service"
)

// userServiceOpener builds the user service the commands operate on.
type userServiceOpener func(migrate bool) (service.UserService, error)

func openUserService(migrate bool) (service.UserService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := database.NewConnection(cfg.DB.DSN(), migrate || cfg.DB.AutoMigrate, zap.NewNop())
	if err != nil {
		return nil, err
	}
	return service.NewUserService(repository.NewUserRepository(db), repository.NewTransactionManager(db)), nil
}

func newRootCmd(open userServiceOpener) *cobra.Command {
	var migrate bool

	root := &cobra.Command{
		Use:           "planillactl",
		Short:         "Operator tool for the planillas service",
		Long:          "planillactl manages directory users. Database settings come from configs/.env and DB_* variables.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&migrate, "migrate", false, "create or update the users table before running")

	users := func() (service.UserService, error) {
		return open(migrate)
	}
	root.AddCommand(newUserCmd(users), newVersionCmd())
	return root
}
