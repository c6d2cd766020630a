package main

import (
	"fmt"
	"os"

	"github.com/lucas-albers-lz4/kubedeps/pkg/exitcodes"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if code, ok := exitcodes.IsExitCodeError(err); ok {
			os.Exit(code)
		}
		os.Exit(exitcodes.ExitGeneralRuntimeError)
	}
}
