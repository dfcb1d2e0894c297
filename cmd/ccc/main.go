// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"ccaot/internal/diag"
	"ccaot/internal/pipeline"
)

type includeDirs []string

func (d *includeDirs) String() string     { return strings.Join(*d, ",") }
func (d *includeDirs) Set(v string) error { *d = append(*d, v); return nil }

func main() {
	var userDirs includeDirs
	var emitIR bool
	flag.Var(&userDirs, "I", "add a directory to the quoted-include search path (repeatable)")
	flag.BoolVar(&emitIR, "emit-ir", true, "print the lowered textual IR on success")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("usage: ccc [-I dir]... [-emit-ir] <file.c>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	res, err := pipeline.Compile(path, []string(userDirs), nil)
	if err != nil {
		reportFailure(path, err)
		os.Exit(1)
	}

	if emitIR {
		fmt.Print(res.IRText)
	}
	color.Green("compiled %s", path)
}

func reportFailure(path string, err *diag.Error) {
	source, readErr := os.ReadFile(path)
	if readErr != nil {
		color.Red("%s", err.Error())
		return
	}
	r := diag.NewReporter(string(source))
	color.Red("compilation failed")
	fmt.Print(r.Format(err))
}
