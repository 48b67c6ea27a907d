// Package server holds the configuration of the read-only lookup API.
//
// The serve command builds a Fiber app from it; the machines feature uses
// CacheTTL to decide how long a listing is shared between requests.
package server
