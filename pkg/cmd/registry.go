// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"log/slog"

	"github.com/ana-fx/mail-blast-sub001/pkg/registry"
)

// NewRegistry creates a node type registry populated with every built-in
// trigger, action, and condition type.
func NewRegistry(logger *slog.Logger) *registry.Registry {
	reg := registry.NewRegistry(logger)
	reg.RegisterBuiltins()

	return reg
}
