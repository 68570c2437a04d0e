// Package config loads env-tagged configuration structs, bootstrapping a
// .env file in development. Each package owns its own Config struct; this
// package only does the parsing.
package config
