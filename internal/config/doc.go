// Package config loads librarian's settings.
//
// Values are layered, lowest precedence first:
//  1. built-in defaults (Default)
//  2. the TOML file, ~/.librarian/config.toml unless a path is given
//  3. a .env file in the working directory or the config directory
//  4. LIBRARIAN_* environment variables, plus DISCORD_TOKEN
//
// Watch reloads the file when it changes so admin roles can be edited
// without a restart.
package config
