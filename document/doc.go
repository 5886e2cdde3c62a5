/*
Package document defines the Entity contract and the generic Document used to
materialize stored documents.

A Document keeps its data in a field map. The identifier lives in the "id"
field and the store-assigned version in "_version", so both show up in ToMap.

Lifecycle:

	doc := document.New(map[string]any{"title": "Hello"}) // new, clean
	doc.Set("body", "...")                                // dirty: [body]
	doc.MarkPersisted("abc", 1)                           // not new, clean, id/_version set

Documents are new by default; pass WithMarkNew(false) for data that already
exists in the store. Only Set, Unset and Patch mark fields dirty.

Custom entity classes embed *Document:

	type Article struct {
	    *document.Document
	}

	func (a *Article) Title() string {
	    s, _ := a.Get("title").(string)
	    return s
	}

and are made available through the registry package.

Decode and Encode move between field maps and tagged structs.
*/
package document
