//go:build pprof
// +build pprof

package main

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
)

func init() {
	addr := os.Getenv("INSTRUMENTATION_BRIDGE_PPROF_ADDR")
	if addr == "" {
		addr = "localhost:6060"
	}
	go func() {
		err := http.ListenAndServe(addr, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start http server for pprof on %s: %v", addr, err)
		}
	}()
}
