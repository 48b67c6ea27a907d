package links

// Config holds the defaults of the fastssh link generator.
type Config struct {
	// FastSSH is the script every link points to.
	FastSSH string `mapstructure:"fastssh" default:""`
	// Dir is where links are created. Empty means the working directory.
	Dir string `mapstructure:"dir" default:""`
}
