/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suparena/docstore"
)

func newFindCmd(a *app) *cobra.Command {
	var (
		where    []string
		match    []string
		fields   []string
		limit    int
		pageSize int32
		count    bool
	)

	cmd := &cobra.Command{
		Use:   "find [collection] [finder]",
		Short: "List documents matching conditions",
		Long: `Find runs a finder ("all" by default) against a collection.
--where field=value adds an equality condition and --match field=pattern a
glob condition such as path=drafts/**.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			finder := docstore.FinderAll
			if len(args) == 2 {
				finder = args[1]
			}

			return a.withRepository(cmd, args[0], func(ctx context.Context, repo *docstore.Repository) error {
				q := repo.Find(finder, docstore.WithLimit(limit), docstore.WithPageSize(pageSize))
				for _, w := range where {
					field, value, err := parseAssignment(w)
					if err != nil {
						return err
					}
					q.Where(field, value)
				}
				for _, m := range match {
					field, pattern, ok := strings.Cut(m, "=")
					if !ok || field == "" {
						return fmt.Errorf("expected field=pattern, got %q", m)
					}
					q.WhereMatch(field, pattern)
				}
				if len(fields) > 0 {
					q.Select(fields...)
				}

				if count {
					n, err := q.Count(ctx)
					if err != nil {
						return err
					}
					return write(cmd.OutOrStdout(), a.output, map[string]int{"count": n})
				}

				entities, err := q.All(ctx)
				if err != nil {
					return err
				}
				return write(cmd.OutOrStdout(), a.output, entityMaps(entities))
			})
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&where, "where", "w", nil, "Equality condition field=value (repeatable)")
	flags.StringArrayVarP(&match, "match", "m", nil, "Glob condition field=pattern (repeatable)")
	flags.StringSliceVar(&fields, "fields", nil, "Only load these fields")
	flags.IntVarP(&limit, "limit", "n", 0, "Maximum number of documents")
	flags.Int32Var(&pageSize, "page-size", 0, "Documents per client request")
	flags.BoolVar(&count, "count", false, "Print the number of matches instead")
	return cmd
}
