// The staticlint binary bundles the project's static analysis into a single
// multichecker: selected passes from the Go toolchain, the ineffassign and
// nilerr analyzers, a configurable staticcheck subset, and the project's own
// noosexit analyzer.
//
// The staticcheck subset is read from a config.json file placed next to the
// binary; it lists the enabled analyzer names (e.g. "SA1000").
package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"honnef.co/go/tools/staticcheck"

	"github.com/gordonklaus/ineffassign/pkg/ineffassign"
	"github.com/gostaticanalysis/nilerr"

	"extracker/cmd/staticlint/noosexit"
)

// ConfigFileName is the JSON file listing enabled staticcheck analyzers.
const ConfigFileName = `config.json`

type configData struct {
	Staticcheck []string
}

func main() {
	analyzers := []*analysis.Analyzer{
		copylock.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		printf.Analyzer,
		structtag.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,

		ineffassign.Analyzer,
		nilerr.Analyzer,

		noosexit.Analyzer,
	}

	enabled := map[string]bool{}
	for _, name := range readStaticcheckConfig() {
		enabled[name] = true
	}

	for _, v := range staticcheck.Analyzers {
		if enabled[v.Analyzer.Name] {
			analyzers = append(analyzers, v.Analyzer)
		}
	}

	multichecker.Main(analyzers...)
}

func readStaticcheckConfig() []string {
	binary, err := os.Executable()
	if err != nil {
		panic(err)
	}

	data, err := os.ReadFile(filepath.Join(filepath.Dir(binary), ConfigFileName))
	if err != nil {
		panic(err)
	}

	var cfg configData
	if err = json.Unmarshal(data, &cfg); err != nil {
		panic(err)
	}

	return cfg.Staticcheck
}
