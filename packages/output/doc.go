// Package output prints hookshot progress and diagnostics to the terminal.
//
// The Console printer colors its output with fatih/color unless disabled,
// and only shows Detail lines in verbose mode.
package output
