/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/suparena/docstore"
	"github.com/suparena/docstore/storagemodels"
)

func newGetCmd(a *app) *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:   "get [collection] [id]",
		Short: "Print one document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var params map[string]any
			if len(fields) > 0 {
				params = map[string]any{storagemodels.ParamFields: fields}
			}

			return a.withRepository(cmd, args[0], func(ctx context.Context, repo *docstore.Repository) error {
				e, err := repo.Get(ctx, args[1], params)
				if err != nil {
					return err
				}
				return write(cmd.OutOrStdout(), a.output, e.ToMap())
			})
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", nil, "Only load these fields")
	return cmd
}
