// Package config loads the rackops configuration.
//
// LoadConfig reads an optional .env file with godotenv, then lets Viper map
// environment variables onto nested keys (DATABASE_HOST -> database.host).
// Defaults come from the `default` struct tags of each section, walked by
// reflection so every key is known to AutomaticEnv. List values such as
// SSH_USERS or RECONCILE_IGNORED_INTERFACES are comma separated.
//
// # Sections
//
//   - log: level and encoding
//   - database: Racktables MySQL connection
//   - ssh: port, login users, credentials and timeouts
//   - reconcile: ignored interfaces, report upload
//   - storage: S3/MinIO report archive
//   - server: lookup API port, API key, listing cache
//   - links: fastssh script and link directory
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
package config
