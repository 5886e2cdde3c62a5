/*
Package connection manages the named connections repositories are bound to.

A Connection pairs a datastore client with a default index. Connections are
registered with a Manager, usually the process-wide Default one, and looked
up by name or alias:

	cfg, _ := config.Load("docstore.yaml")
	if err := connection.LoadAll(ctx, connection.Default(), cfg, logger); err != nil {
	    return err
	}
	defer connection.Default().CloseAll()

Open maps a driver name to a client: dynamodb, sqlite, postgres, mysql or
memory.
*/
package connection
