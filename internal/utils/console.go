package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// DebugMode controls whether PrintDebug output is visible.
var DebugMode = false

// QuietMode controls whether verbose messages are suppressed (errors/warnings still shown)
var QuietMode = false

// Stdout and Stderr are the writers used by the printers below.
// Tests swap them for buffers.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// projectPrefix is the standard tag for all logs.
const projectPrefix = "[GSUB]"

// ---------------------------------------------------------
// 1. Private Color Definitions
// ---------------------------------------------------------

var (
	red      = color.New(color.FgRed).SprintFunc()
	green    = color.New(color.FgGreen).SprintFunc()
	yellow   = color.New(color.FgYellow).SprintFunc()
	blueBold = color.New(color.FgBlue, color.Bold).SprintFunc()
	magenta  = color.New(color.FgMagenta).SprintFunc()
	cyan     = color.New(color.FgCyan).SprintFunc()
	gray     = color.New(color.FgWhite).SprintFunc() // FgWhite = Gray in ANSI
)

// ---------------------------------------------------------
// 2. Semantic Styles
// ---------------------------------------------------------

// StyleError formats critical failure messages (Red).
func StyleError(msg string) string { return red(msg) }

// StyleSuccess formats success messages (Green).
func StyleSuccess(msg string) string { return green(msg) }

// StyleWarning formats non-critical warnings (Yellow).
func StyleWarning(msg string) string { return yellow(msg) }

// StyleHint formats helpful tips or suggestions (Cyan).
func StyleHint(msg string) string { return cyan(msg) }

// StyleNote formats neutral notes or annotations (Magenta).
func StyleNote(msg string) string { return magenta(msg) }

// StyleInfo formats status labels or properties (Magenta)
func StyleInfo(msg string) string { return magenta(msg) }

// StyleDebug formats low-level technical info (Gray).
func StyleDebug(msg string) string { return gray(msg) }

// StyleCommand formats shell commands or flags (Gray/Faint).
func StyleCommand(cmd string) string { return gray(cmd) }

// StyleNumber formats counts, sizes, or IDs (Magenta).
func StyleNumber(num interface{}) string {
	return magenta(fmt.Sprintf("%v", num))
}

// StylePath formats file paths (Bold Blue).
func StylePath(path string) string { return blueBold(path) }

// StyleName formats names, identifiers, or keys (Yellow).
func StyleName(name string) string { return yellow(name) }

// ---------------------------------------------------------
// 3. Log Printers
// ---------------------------------------------------------

// PrintMessage prints a standard info message.
// Output: [GSUB] Message...
func PrintMessage(format string, a ...interface{}) {
	if QuietMode {
		return
	}
	msg := fmt.Sprintf(format, a...)
	fmt.Fprintf(Stdout, "%s %s\n", projectPrefix, msg)
}

// PrintSuccess prints a success message with a Green tag.
// Output: [GSUB][PASS] Writing to water.pbs
func PrintSuccess(format string, a ...interface{}) {
	if QuietMode {
		return
	}
	msg := fmt.Sprintf(format, a...)
	tag := StyleSuccess("[PASS]")
	fmt.Fprintf(Stdout, "%s%s %s\n", projectPrefix, tag, msg)
}

// PrintError prints an error message with a Red tag to Stderr.
// Output: [GSUB][ERR] Something failed.
func PrintError(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	tag := StyleError("[ERR] ")
	fmt.Fprintf(Stderr, "%s%s %s\n", projectPrefix, tag, msg)
}

// PrintWarning prints a warning with a Yellow tag to Stderr.
// Output: [GSUB][WARN] You usually want to use all the cores on a node.
func PrintWarning(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	tag := StyleWarning("[WARN]")
	fmt.Fprintf(Stderr, "%s%s %s\n", projectPrefix, tag, msg)
}

// PrintHint prints a helpful hint with a Cyan tag.
// Output: [GSUB][HINT] Please run 'qsub job.pbs' to submit to the scheduler
func PrintHint(format string, a ...interface{}) {
	if QuietMode {
		return
	}
	msg := fmt.Sprintf(format, a...)
	tag := StyleHint("[HINT]")
	fmt.Fprintf(Stdout, "%s%s %s\n", projectPrefix, tag, msg)
}

// PrintNote prints a note with a Magenta tag.
// Output: [GSUB][NOTE] You must include %LindaWorkers in your input file.
func PrintNote(format string, a ...interface{}) {
	if QuietMode {
		return
	}
	msg := fmt.Sprintf(format, a...)
	tag := StyleNote("[NOTE]")
	fmt.Fprintf(Stdout, "%s%s %s\n", projectPrefix, tag, msg)
}

// PrintDebug prints a debug message with a Gray tag (only if DebugMode is true).
// Output: [GSUB][DBG]  Executing: hyakalloc chem
func PrintDebug(format string, a ...interface{}) {
	if DebugMode {
		msg := fmt.Sprintf(format, a...)
		tag := StyleDebug("[DBG] ")
		fmt.Fprintf(Stderr, "%s%s %s\n", projectPrefix, tag, msg)
	}
}
