package testmodels

import "github.com/go-openapi/strfmt"

type Article struct {

	// Unique identifier for the article.
	// Required: true
	ID string `json:"id"`

	// Version token assigned by the store.
	Version int64 `json:"_version,omitempty"`

	// Title of the article.
	// Required: true
	Title string `json:"title"`

	// Author handle.
	Author string `json:"author,omitempty"`

	// Tags attached to the article.
	Tags []string `json:"tags,omitempty"`

	// Number of views.
	Views int `json:"views,omitempty"`

	// Timestamp when the article was published.
	// Format: date-time
	PublishedAt *strfmt.DateTime `json:"publishedAt,omitempty"`
}
