// Package remote runs shell commands on managed machines over SSH.
//
// A Client opens a fresh connection for every command. Authentication uses,
// in order, the SSH agent, an optional private key file and an optional
// password. When a login is refused the next candidate user is tried: the
// current OS user first, then the configured users, then any user bound to a
// host name prefix.
//
// Run captures stdout and stderr as lines. Stream copies them to writers as
// they arrive, each line prefixed with a colored marker. A command that exits
// non-zero is not an error; failing to connect or authenticate is reported as
// a *TransportError.
package remote
