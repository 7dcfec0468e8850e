// Package app wires configuration, storage, connectors and services into
// the components every surface shares.
package app
