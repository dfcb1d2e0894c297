// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"ccaot/internal/lspserver"
)

const lsName = "ccc"

var (
	version = "0.0.1"
	handler protocol.Handler
)

type includeDirs []string

func (d *includeDirs) String() string     { return strings.Join(*d, ",") }
func (d *includeDirs) Set(v string) error { *d = append(*d, v); return nil }

func main() {
	var userDirs includeDirs
	flag.Var(&userDirs, "I", "add a directory to the quoted-include search path (repeatable)")
	flag.Parse()

	commonlog.Configure(1, nil)

	h := lspserver.NewHandler([]string(userDirs))

	handler = protocol.Handler{
		Initialize:            h.Initialize,
		Initialized:           h.Initialized,
		Shutdown:              h.Shutdown,
		TextDocumentDidOpen:   h.TextDocumentDidOpen,
		TextDocumentDidClose:  h.TextDocumentDidClose,
		TextDocumentDidChange: h.TextDocumentDidChange,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Println("Starting ccc LSP server...")

	if err := s.RunStdio(); err != nil {
		log.Println("Error starting ccc LSP server:", err)
		os.Exit(1)
	}
}
