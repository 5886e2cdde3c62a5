/*
Package docstore maps repositories, entities and queries onto document-store
clients such as DynamoDB or a SQL database.

A Repository is bound to one named collection and one connection. It builds
entities from raw data, fetches them by id, saves them back and creates
deferred queries. Storage, indexing and versioning stay with the client
behind the connection.

Basic Usage:

	cfg, _ := config.Load("docstore.yaml")
	_ = connection.LoadAll(ctx, connection.Default(), cfg, logger)

	articles, _ := docstore.New(docstore.Config{Name: "articles"})

	a := articles.NewEntity(map[string]any{"title": "Hello"})
	_, err := articles.Save(ctx, a) // a.ID() and a.Version() are now set

	drafts, err := articles.Find("all").
		WhereMatch("path", "drafts/**").
		Limit(10).
		All(ctx)

Entity classes are looked up by name in a registry.TypeRegistry. A bare name
such as "Article" resolves to "App/Model/Document/Article" and a plugin name
such as "Blog.Article" to "Blog/Model/Document/Article". Without a configured
class, entities are *document.Document.

Typed wraps a repository for a struct type, and Locator hands out
repositories by name from shared defaults.
*/
package docstore
