package main

import (
	"heatmon/cmd"
	"heatmon/pkg/crash"
)

func main() {
	// Globaler Crash-Handler - fängt alle unbehandelten Panics ab
	// und schreibt einen Report in heatmon_crash.log
	defer crash.Handler()

	cmd.Execute()
}
