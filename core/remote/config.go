package remote

// Config holds configuration for SSH sessions to managed machines.
type Config struct {
	// Port is the SSH port of every machine.
	Port int `mapstructure:"port" default:"22"`
	// Users are tried in order after the current OS user when authentication fails.
	Users []string `mapstructure:"users" default:"root"`
	// HostUsers adds users for hosts whose name starts with a prefix ("prefix=user").
	HostUsers []string `mapstructure:"host_users" default:"vpc-nat=admin"`
	// Password is offered when key based authentication fails.
	Password string `mapstructure:"password" default:""`
	// KeyFile is an optional private key used for public key authentication.
	KeyFile string `mapstructure:"key_file" default:""`
	// UseAgent enables the SSH agent found through SSH_AUTH_SOCK.
	UseAgent bool `mapstructure:"use_agent" default:"true"`
	// TimeoutSeconds bounds connection setup and the handshake.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"60"`
	// Domain is appended to bare machine names when dialing (optional).
	Domain string `mapstructure:"domain" default:""`
}
