// Package machines provides read-only inventory lookups: active machines,
// name search, address owners and free addresses of a network.
//
// The same Service backs the CLI commands and the HTTP routes:
//
//	GET /machines
//	GET /machines/search/:pattern
//	GET /ips/:ip
//	GET /networks/:name/free?offset=N
//
// Machine listings are coalesced with singleflight and cached for the
// configured TTL, so a burst of API requests issues one set of queries.
package machines
