package main

// version, buildHost and buildDate are set via -ldflags at release build
// time; a local `go build` keeps the defaults below.
var (
	version   = "dev"
	buildHost = "unknown"
	buildDate = "unknown"
)
