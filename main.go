package main

import (
	"mclang-up/cmd" // CLI definition and workflow wiring
)

// main is the program entry point.
// It delegates to cmd.Execute() which parses the flags, runs the install or update
// workflow and exits with its status code.
//
// mclang-up bootstraps the mclang toolchain from source:
//   - Prompts for an install location and branch, then asks for confirmation
//   - Clones (or unpacks) every component and builds it with cargo
//   - Stages binaries into <root>/bin and the standard library into <root>/stdlib
//   - Records branch and revisions in <root>/receipt.json
//
// Any failing step stops the run with a non-zero exit status; nothing is rolled back.
func main() {
	cmd.Execute()
}
