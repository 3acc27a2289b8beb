// Package config loads typed configuration structs from environment
// variables with github.com/caarlos0/env/v11, after reading an optional
// .env file through github.com/joho/godotenv.
//
// Every infrastructure package in this module ships its own Config struct
// (pg.Config, redis.Config, httpserver.Config and so on) and the process
// entry point loads them with Load or MustLoad.
package config
