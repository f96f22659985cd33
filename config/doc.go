// Package config loads client configuration in layers: built-in defaults,
// then JSON files, then LATTICE_* environment variables, with validation at
// the end. The environment names (LATTICE_HOST, LATTICE_CREDS_FILE,
// LATTICE_RPC_TIMEOUT_MILLIS) are the same ones responder hosts read, so a
// deployment configures the whole lattice from one environment.
package config
