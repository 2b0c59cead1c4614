// Command um runs a Universal Machine program: a stream of big-endian
// 32-bit words read from a file, or from standard input when no file
// is given.
package main

import (
	"bufio"
	"fmt"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/yann-ybi/rum/pkg/disasm"
	"github.com/yann-ybi/rum/pkg/engine"
	"github.com/yann-ybi/rum/pkg/loader"
	"github.com/yann-ybi/rum/pkg/umlog"
)

func main() {
	os.Exit(run())
}

func run() int {
	verbose := getopt.BoolLong("verbose", 'v', "trace each instruction to stderr")
	help := getopt.BoolLong("help", 'h', "show usage and exit")
	getopt.SetParameters("[program-file]")
	getopt.Parse()

	if *help {
		getopt.Usage()
		return 0
	}

	log := umlog.New(os.Stderr, *verbose)

	in, err := openProgram(getopt.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, "um:", err)
		return 1
	}
	defer in.Close()

	program, err := loader.Load(in)
	if err != nil {
		fmt.Fprintln(os.Stderr, "um:", err)
		return 1
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	m := engine.New(program, os.Stdin, out)
	if *verbose {
		m.Trace = func(pc, word uint32) {
			log.Trace(pc, disasm.One(word))
		}
	}

	runErr := m.Run()
	out.Flush()
	if runErr != nil {
		log.Fault(runErr, m.PC(), m.LastWord())
		fmt.Fprintln(os.Stderr, "um:", runErr)
		return 1
	}
	return 0
}

// openProgram opens the program file named by args[0], or returns
// stdin when no positional argument was given.
func openProgram(args []string) (*os.File, error) {
	if len(args) == 0 {
		return os.Stdin, nil
	}
	return os.Open(args[0])
}
