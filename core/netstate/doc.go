// Package netstate parses the output of `ip addr list` into the observed
// interface state of a single machine.
//
// The parser is a single pass over the output lines with one piece of state,
// the interface currently being described:
//
//	3: eth0: <BROADCAST,MULTICAST,UP,LOWER_UP> mtu 1500 ...   starts "eth0"
//	    link/ether 00:11:22:33:44:55 brd ff:ff:ff:ff:ff:ff    sets its MAC
//	    inet 10.0.0.5/24 brd 10.0.0.255 scope global eth0     adds a CIDR
//
// Every other line is ignored. An address or MAC line seen before any
// interface header is reported as a *ParseError.
//
// Filtering of loopback and bridge interfaces happens after parsing with
// State.Without.
package netstate
