// Package config carries the runtime switches for the graph core as an
// explicit struct handed to whichever component needs them.
package config

// Config enumerates the runtime switches.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// TraceExecution logs every node invocation with its inputs.
	TraceExecution bool

	// DumpObjectStore logs the object-store contents after each run.
	DumpObjectStore bool

	// StopOnError aborts a batch run at the first failing node instead of
	// continuing with the remaining orderable nodes.
	StopOnError bool
}

// Default returns the switches as the editor ships them.
func Default() Config {
	return Config{
		LogLevel: "info",
	}
}
