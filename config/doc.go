// Package config loads the configuration of a process that makes API calls
// through apikit.
//
// Values come from a YAML file, then a .env file, then the environment.
// Environment variables map onto nested keys by splitting on underscores, so
// APIKIT_CLIENT_BASE_URL sets client.base_url for a loader with prefix
// "APIKIT".
//
//	cfg, err := config.Load("billing")
//	if err != nil {
//	    return err
//	}
//	c, err := cfg.NewClient(client.WithRegistry(reg))
//
// Services with more settings embed Config and call LoadConfig directly.
package config
