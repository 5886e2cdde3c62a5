/*
Package config loads docstore configuration.

A configuration file is YAML with ${VAR} references expanded from the
environment; .env files are loaded first with godotenv:

	log:
	  level: info
	  format: text
	connections:
	  default:
	    driver: dynamodb
	    index: ${AWS_DDB_TABLE}
	    region: ${AWS_REGION}
	  local:
	    driver: sqlite
	    dsn: docstore.db
	    auto_migrate: true

FromEnv builds the same structure from AWS_* and DOCSTORE_* variables, and
Watch reloads a file as it changes.
*/
package config
