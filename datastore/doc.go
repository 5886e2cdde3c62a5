/*
Package datastore defines the client contract docstore repositories delegate to.

A Client hands out Index handles, and an Index hands out Collection handles:

	type Collection interface {
	    GetDocument(ctx context.Context, id string, params map[string]any) (*storagemodels.RawDocument, error)
	    CreateDocument(ctx context.Context, doc *storagemodels.RawDocument) (*storagemodels.WriteResult, error)
	    UpdateDocument(ctx context.Context, doc *storagemodels.RawDocument) (*storagemodels.WriteResult, error)
	    DeleteDocument(ctx context.Context, id string) error
	    Search(ctx context.Context, params *storagemodels.QueryParams) (*storagemodels.Page, error)
	}

Implementations:
  - ddb: DynamoDB implementation with single-table key templates
  - sqlstore: SQL implementation on bun (sqlite, postgres, mysql)
  - mock: In-memory implementation for testing

Every implementation reports failures with the types from the errors package
so repositories can tell a missing document from a write conflict.
*/
package datastore
