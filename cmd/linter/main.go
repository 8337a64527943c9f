// Command linter runs the danglingtimer analyzer over the given packages.
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/MikhailRaia/url-submitter/cmd/linter/analyzer"
)

func main() {
	singlechecker.Main(analyzer.Analyzer)
}
