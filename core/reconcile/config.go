package reconcile

// Config holds the defaults of reconciliation runs.
type Config struct {
	// IgnoredInterfaces are left out of every decision. lo and kvm are
	// always ignored, whatever this list holds.
	IgnoredInterfaces []string `mapstructure:"ignored_interfaces" default:"lo,kvm"`
	// Upload archives every run report in object storage.
	Upload bool `mapstructure:"upload" default:"false"`
}
