// Package config loads environment variables into tagged structs.
//
// A .env file in the working directory is read once on first use; variables
// already present in the environment win. Struct fields are described with
// github.com/caarlos0/env tags:
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
package config
