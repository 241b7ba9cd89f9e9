package cmdutil

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

var (
	loadingSpinner = spinner.New(spinner.CharSets[0], time.Millisecond*100)
)

func PrintE(message string) {
	println()
	color.Red(message)
}

func Print(message string) {
	_, _ = fmt.Fprintln(os.Stdout, message)
}

func PrintS(message string) {
	color.Green(message)
}

func PrintW(message string) {
	color.Yellow(message)
}

// PrintJSON renders a result value as indented JSON on stdout.
func PrintJSON(value interface{}) {
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		PrintE(err.Error())
		return
	}
	Print(string(out))
}

func StartLoading(message string) {
	loadingSpinner.Prefix = message
	loadingSpinner.Start()
}

func StopLoading() {
	loadingSpinner.Stop()
}
