// Package inventory is the typed client for the Racktables inventory database.
//
// Racktables keeps machines in the Object table, free-text tags in TagTree and
// TagStorage, typed attributes in AttributeValue, IPv4 allocations in
// IPv4Allocation and network ports in Port. The numeric identifiers that the
// schema uses for attributes, object types and dictionary entries are exposed
// as named constants (see attributes.go) instead of being spread through SQL.
//
// Every accessor issues a parameterised query through GORM and returns typed
// values. A failed query is always returned as an error wrapping ErrQuery;
// an empty result is an empty map or slice with a nil error, so callers can
// tell "no rows" from "the database failed".
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	store := inventory.New(db)
//	machines, err := store.ActiveServers(ctx)
package inventory
