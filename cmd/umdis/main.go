// Command umdis disassembles a Universal Machine program file to
// stdout, one instruction per line, without executing it.
package main

import (
	"bufio"
	"fmt"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/yann-ybi/rum/pkg/disasm"
	"github.com/yann-ybi/rum/pkg/loader"
)

func main() {
	os.Exit(run())
}

func run() int {
	help := getopt.BoolLong("help", 'h', "show usage and exit")
	getopt.SetParameters("[program-file]")
	getopt.Parse()

	if *help {
		getopt.Usage()
		return 0
	}

	in, err := openProgram(getopt.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, "umdis:", err)
		return 1
	}
	defer in.Close()

	program, err := loader.Load(in)
	if err != nil {
		fmt.Fprintln(os.Stderr, "umdis:", err)
		return 1
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	for pc, word := range program {
		fmt.Fprintf(out, "%6d  %s\n", pc, disasm.One(word))
	}
	return 0
}

func openProgram(args []string) (*os.File, error) {
	if len(args) == 0 {
		return os.Stdin, nil
	}
	return os.Open(args[0])
}
