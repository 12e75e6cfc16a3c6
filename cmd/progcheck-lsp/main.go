// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"log"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"progcheck/internal/config"
	"progcheck/internal/lsp"
)

const lsName = "progcheck" // Name identifier for the language server

var (
	version = "0.1.0"        // Server version
	handler protocol.Handler // Protocol handler instance (wired up below)
)

func main() {
	configPath := flag.String("config", config.FileName, "Path to the configuration file")
	verbosity := flag.Int("verbosity", 1, "Log verbosity (0 notice, 1 info, 2 debug)")
	flag.Parse()

	// Logs go to stderr; stdout carries the protocol.
	commonlog.Configure(*verbosity, nil)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Println("Error loading configuration:", err)
		os.Exit(1)
	}

	progcheckHandler := lsp.NewHandler(cfg)

	handler = protocol.Handler{
		Initialize:                     progcheckHandler.Initialize,
		Initialized:                    progcheckHandler.Initialized,
		Shutdown:                       progcheckHandler.Shutdown,
		SetTrace:                       progcheckHandler.SetTrace,
		TextDocumentDidOpen:            progcheckHandler.TextDocumentDidOpen,
		TextDocumentDidClose:           progcheckHandler.TextDocumentDidClose,
		TextDocumentDidChange:          progcheckHandler.TextDocumentDidChange,
		TextDocumentCompletion:         progcheckHandler.TextDocumentCompletion,
		TextDocumentSemanticTokensFull: progcheckHandler.TextDocumentSemanticTokensFull,
	}

	// debug=false keeps glsp's own message tracing off
	s := server.NewServer(&handler, lsName, false)

	log.Printf("Starting progcheck LSP server %s...", version)

	err = s.RunStdio()
	if err != nil {
		log.Println("Error starting progcheck LSP server:", err)
		os.Exit(1)
	}
}
