// Package utils provides small conversion helpers shared by the inventory,
// the interface parser and the reconciliation engine.
//
// IPv4 addresses are stored by Racktables as unsigned 32-bit integers in
// network byte order. IPToInt and IntToIP convert between that form and the
// dotted-quad text used everywhere else, and round-trip for every valid IPv4
// literal.
//
// MAC addresses are kept in the canonical Racktables form: twelve uppercase
// hex characters without separators. SentinelMAC marks an unknown address.
package utils
