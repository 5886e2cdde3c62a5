/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/suparena/docstore"
	"github.com/suparena/docstore/document"
)

func newSaveCmd(a *app) *cobra.Command {
	var (
		id       string
		data     string
		file     string
		existing bool
	)

	cmd := &cobra.Command{
		Use:   "save [collection]",
		Short: "Create or update a document",
		Long: `Save reads a JSON or YAML object from --data, --file or stdin and stores it.
Without --existing the document is created and an id taken by another
document is an error. With --existing the document with that id is
replaced, or created when it does not exist yet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, data, file)
			if err != nil {
				return err
			}
			fields, err := parseObject(raw)
			if err != nil {
				return err
			}
			if id != "" {
				fields[document.FieldID] = id
			}
			if existing && fields[document.FieldID] == nil {
				return fmt.Errorf("--existing needs an id")
			}

			return a.withRepository(cmd, args[0], func(ctx context.Context, repo *docstore.Repository) error {
				e := repo.NewEntity(fields)
				if existing {
					e.SetNew(false)
				}
				if _, err := repo.Save(ctx, e); err != nil {
					return err
				}
				return write(cmd.OutOrStdout(), a.output, e.ToMap())
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Document id (assigned by the store when empty)")
	cmd.Flags().StringVarP(&data, "data", "d", "", "Document as a JSON or YAML object")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the document from a file")
	cmd.Flags().BoolVar(&existing, "existing", false, "Replace the document instead of creating it")
	return cmd
}

func readInput(cmd *cobra.Command, data, file string) ([]byte, error) {
	switch {
	case data != "":
		return []byte(data), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		return b, nil
	default:
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return b, nil
	}
}
