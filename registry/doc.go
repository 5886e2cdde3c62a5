/*
Package registry manages entity class registration and key templates for docstore.

The registry system enables:
  - Resolving entity classes by conventional name instead of reflection
  - Custom entity types materialized by repositories
  - Flexible key patterns for the DynamoDB client through index maps

Type Registry:
Maps qualified class names to factories:

	registry.RegisterType("App/Model/Document/Article", func(fields map[string]any, opts ...document.Option) document.Entity {
	    return &Article{Document: document.New(fields, opts...)}
	})

Naming Convention:
Repositories resolve requested names before looking them up:

	registry.ClassName("App", "Article")          // "App/Model/Document/Article"
	registry.ClassName("App", "Blog.Post")        // "Blog/Model/Document/Post"

Index Map Registry:
Associates collection names with DynamoDB key patterns:

	registry.RegisterIndexMap("articles", map[string]string{
	    "PK": "ARTICLE",
	    "SK": "ARTICLE#{id}",
	})

The registries are thread-safe and should be populated during initialization,
typically in init() functions.
*/
package registry
