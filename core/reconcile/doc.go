// Package reconcile compares the live network and OS state of every active
// machine with what the Racktables inventory records for it.
//
// The Engine drives two capabilities: an Inventory (the typed Racktables
// accessors) and an Executor (one SSH command per call). Machines are visited
// one at a time. For each machine the engine:
//
//  1. runs `ip a l` and parses the listing, skipping the machine on a
//     transport or parse failure
//  2. loads the recorded addresses and ports of the machine
//  3. reports MAC mismatches and ports missing from the inventory
//  4. registers addresses that are unambiguous and free fleet-wide, and
//     reports conflicts with addresses already held by another machine
//
// Nothing is ever deallocated or overwritten. Interfaces the inventory knows
// about but the machine no longer shows, and machines that cannot be reached,
// are left as they are.
//
// SyncOSVersions is the sibling flow: it reads /etc/debian_version and
// records the release when it is absent or differs.
//
// # Output
//
// Every run produces a Report that can be serialised to JSON and archived.
// While running, the engine also writes one line per finding to its output
// writer, prefixed with a marker:
//
//	$ rackops reconcile interfaces
//	* web-01                          machine reached
//	  + eth0 10.0.0.5 allocated       write
//	  ! eth1 MAC mismatch ...         warning
//	  !! eth2 10.0.0.9 conflicts ...  conflict or error
//
// # Usage Example
//
//	engine := reconcile.NewEngine(inventory.New(db), sshClient, logger, os.Stdout, reconcile.Options{})
//	report, err := engine.ReconcileInterfaces(ctx)
package reconcile
