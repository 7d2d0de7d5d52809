/*
flag Package sets up cli flags shared across binaries

Usage:

	Call Setup from main before using any flag value. Flags listed here are
	service-agnostic; service dependent flags belong in their respective
	package. Setup is deliberately not run from init so test binaries keep
	control of the flag set.
*/

package flag

import (
	"flag"
)

const (
	APIServer = "api_server"
)

var (
	IsDevelopment bool
	ServiceName   = APIServer
	Addr          string
)

// Setup registers and parses the shared flags. Call exactly once, from main.
func Setup() {
	flag.BoolVar(&IsDevelopment, "dev", true, "set to true if the current run is for development. default value is true")
	flag.StringVar(&ServiceName, "service", APIServer, "service name reported in logs")
	flag.StringVar(&Addr, "addr", ":8080", "address the api server listens on")
	flag.Parse()
}
