/*
Package ddb provides a DynamoDB implementation of the datastore client.

An index is a DynamoDB table and a collection is a set of items sharing a
key template. Templates are registered per collection in the registry
package and expanded with the document's values:

	registry.RegisterIndexMap("users", map[string]string{
	    "PK":     "USER",            // one partition for the collection
	    "SK":     "USER#{id}",       // becomes "USER#123"
	    "GSI1PK": "EMAIL#{email}",   // written as an extra attribute
	})

Collections without a template use registry.DefaultIndexMap, which keeps
each collection in its own partition sorted by id. The macros {_index},
{_type} and {id} expand to the table name, the collection name and the
document id; any other macro names a document field.

Items carry PK, SK, id, _type, _version, fields, created_at and updated_at.
Creates are conditional on the key being free, updates are upserts that
increment _version and check it when the caller supplies one, and deletes
fail on missing items. Search queries the collection's partition, pushes
equality and existence conditions into a filter expression and retries
throttled requests.
*/
package ddb
