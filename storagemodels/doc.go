/*
Package storagemodels defines the data structures exchanged between repositories and clients.

Key Types:

RawDocument:
A document as a client stores it: identifier, version and payload.

	raw := &RawDocument{
	    ID:     "123",
	    Fields: map[string]any{"title": "Hello"},
	}

QueryParams:
Parameters for searching one collection:

	params := &QueryParams{
	    Conditions: []Condition{
	        Eq("status", "published"),
	        Match("slug", "2025-*"),
	    },
	    Fields:   []string{"title"},
	    PageSize: 25,
	}

Search returns a Page; pass Page.Cursor back in QueryParams.Cursor to read
the next one. Matches evaluates conditions for clients that filter in process.

StreamOptions:
Configuration for streaming query results:

	opts := []StreamOption{
	    WithBufferSize(100),
	    WithPageSize(25),
	    WithProgressHandler(progressFunc),
	}

These types provide a consistent interface across different storage implementations.
*/
package storagemodels
