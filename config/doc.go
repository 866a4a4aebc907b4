// Package config loads the configuration of a beankit process.
//
// Values come from a YAML file (config.yml, searched in ./cmd/beankit,
// ./config and the working directory), optionally a .env file, and
// BEANKIT_-prefixed environment variables, which take precedence:
//
//	cfg, err := config.Load(config.WithConfigFile("config.yml"))
//
//	BEANKIT_CONTAINER_INVALIDATION=direct
//	BEANKIT_LOGGING_LEVEL=debug
package config
