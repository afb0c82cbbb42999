// Package config loads service configuration with viper from defaults, an
// optional config file, LTDSTATUS_* environment variables and bound CLI
// flags, in increasing order of precedence.
package config
