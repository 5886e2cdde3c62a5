/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/suparena/docstore"
	"github.com/suparena/docstore/config"
	"github.com/suparena/docstore/connection"
)

// app holds the global flags and the connections opened for one command.
type app struct {
	configPath string
	connection string
	output     string
	verbose    bool

	manager *connection.Manager
	logger  *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "docstore",
		Short: "Inspect and edit documents through docstore repositories",
		Long: `docstore reads and writes documents in the collections of a configured
connection. Connections come from a YAML file (--config) or, without one,
from environment variables such as AWS_DDB_TABLE and DOCSTORE_DRIVER.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validateOutput(a.output)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to the YAML configuration file")
	flags.StringVar(&a.connection, "connection", config.DefaultConnection, "Connection to use")
	flags.StringVarP(&a.output, "output", "o", outputJSON, "Output format (json|yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newVersionCmd(a),
		newGetCmd(a),
		newSaveCmd(a),
		newFindCmd(a),
		newDeleteCmd(a),
	)
	return rootCmd
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath == "" {
		return config.FromEnv()
	}
	return config.Load(a.configPath)
}

// repository opens the configured connections on first use and returns a
// repository over collection.
func (a *app) repository(ctx context.Context, cmd *cobra.Command, collection string) (*docstore.Repository, error) {
	if a.manager == nil {
		cfg, err := a.loadConfig()
		if err != nil {
			return nil, err
		}
		logger, err := config.NewLogger(cfg.Log)
		if err != nil {
			return nil, err
		}
		logger.SetOutput(cmd.ErrOrStderr())
		if a.verbose {
			logger.SetLevel(logrus.DebugLevel)
		}

		manager := connection.NewManager()
		if err := connection.LoadAll(ctx, manager, cfg, logger); err != nil {
			return nil, err
		}
		a.manager, a.logger = manager, logger
	}

	return docstore.New(docstore.Config{
		Name:           collection,
		ConnectionName: a.connection,
		Connections:    a.manager,
		Logger:         a.logger,
	})
}

// withRepository runs fn against a repository over collection and closes
// the connections afterwards.
func (a *app) withRepository(cmd *cobra.Command, collection string, fn func(ctx context.Context, repo *docstore.Repository) error) (err error) {
	defer func() {
		if cerr := a.close(); err == nil {
			err = cerr
		}
	}()

	ctx := cmd.Context()
	repo, err := a.repository(ctx, cmd, collection)
	if err != nil {
		return err
	}
	return fn(ctx, repo)
}

func (a *app) close() error {
	if a.manager == nil {
		return nil
	}
	err := a.manager.CloseAll()
	a.manager = nil
	return err
}
