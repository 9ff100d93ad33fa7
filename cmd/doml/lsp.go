package main

import (
	"github.com/chazu/doml/bindings"
	"github.com/chazu/doml/server"
)

// handleLSPCommand serves the language server on stdio until the client
// disconnects.
func handleLSPCommand() {
	reg, err := bindings.NewRegistry()
	if err != nil {
		fatalf("registering bindings: %v", err)
	}
	if err := server.NewLSP(reg).Run(); err != nil {
		fatalf("language server: %v", err)
	}
}
