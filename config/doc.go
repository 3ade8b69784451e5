// Package config handles loading and parsing of configuration from YAML files,
// environment variables and command line flags. It defines the application
// configuration structure including the served address, the status endpoint,
// the refresh interval and the list of monitored services.
package config
