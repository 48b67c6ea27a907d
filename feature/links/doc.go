// Package links creates one symlink per active machine pointing at a fastssh
// helper script, so `web-01` on the PATH logs into web-01.
//
// Existing paths are never replaced: a run only adds links for machines
// that appeared since the previous one.
package links
