// Package cmd implements the command-line interface of the dRelay server. It provides
// a hierarchical command structure for running the relay and for load testing it.
//
// The package is organized into several subpackages:
//
//   - serve: Command for starting and configuring the relay server
//   - bot: Load generator that simulates players against a running relay
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See drelay -help for a list of all commands.
package cmd
