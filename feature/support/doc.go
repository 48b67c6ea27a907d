// Package support reports the maintenance status of physical servers: OEM
// service tag, hardware model, support end and hardware warranty end.
//
// Retired servers are left out. The CLI prints the report as a fixed-width
// table:
//
//	+-------------++--------------------------------++----...
//	| Service Tag ||             Server             ||  ...
//
// and the API serves it as JSON on GET /support (or the same table with
// ?format=table).
package support
