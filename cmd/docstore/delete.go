/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suparena/docstore"
	"github.com/suparena/docstore/document"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [collection] [id]",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepository(cmd, args[0], func(ctx context.Context, repo *docstore.Repository) error {
				e := repo.NewEntity(map[string]any{document.FieldID: args[1]})
				if err := repo.Delete(ctx, e); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Document deleted: %s/%s\n", args[0], args[1])
				return nil
			})
		},
	}
}
