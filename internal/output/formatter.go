package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rpgo/allocation-planner/internal/domain"
)

// Formatter renders a rebalance plan. Output must depend only on the plan.
type Formatter interface {
	Format(plan *domain.RebalancePlan) ([]byte, error)
	// Name is the canonical format name used on the command line
	Name() string
}

// FormatterFunc lets a plain function serve as a Formatter
type FormatterFunc struct {
	ID string
	F  func(*domain.RebalancePlan) ([]byte, error)
}

func (ff FormatterFunc) Format(p *domain.RebalancePlan) ([]byte, error) { return ff.F(p) }
func (ff FormatterFunc) Name() string                                   { return ff.ID }

// WriteFormatted runs a formatter and writes output to a timestamped file in dir.
// The formatter name is part of the file name so formats sharing an extension never collide.
func WriteFormatted(f Formatter, plan *domain.RebalancePlan, dir, ext string) (string, error) {
	filename := fmt.Sprintf("rebalance_plan_%s_%s.%s", f.Name(), time.Now().Format("20060102_150405"), ext)
	if dir != "" {
		filename = filepath.Join(dir, filename)
	}
	return filename, WriteFormattedTo(f, plan, filename)
}

// WriteFormattedTo runs a formatter and writes output to path.
func WriteFormattedTo(f Formatter, plan *domain.RebalancePlan, path string) error {
	data, err := f.Format(plan)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

var builtInFormatters = []Formatter{
	ConsoleVerboseFormatter{},
	CSVSummarizer{},
	CSVDetailedExporter{},
	ConsoleFormatter{},
	HTMLFormatter{},
	JSONFormatter{},
	YAMLFormatter{},
	MarkdownFormatter{},
	TerminalFormatter{},
	MsgpackFormatter{},
}

var formattersByName = func() map[string]Formatter {
	m := make(map[string]Formatter, len(builtInFormatters))
	for _, f := range builtInFormatters {
		m[f.Name()] = f
	}
	return m
}()

// GetFormatterByName returns the formatter for a canonical name or alias, or nil.
func GetFormatterByName(name string) Formatter {
	return formattersByName[NormalizeFormatName(name)]
}

// aliasMap maps alternate spellings to canonical format names
var aliasMap = map[string]string{
	"console-verbose": "console",
	"verbose":         "console",
	"summary":         "console-lite",
	"csv-detailed":    "detailed-csv",
	"csv-holdings":    "detailed-csv",
	"csv-actions":     "csv",
	"html-report":     "html",
	"json-pretty":     "json",
	"yml":             "yaml",
	"md":              "markdown",
	"pretty":          "terminal",
	"mpk":             "msgpack",
}

// NormalizeFormatName lowercases name and resolves aliases
func NormalizeFormatName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if mapped, ok := aliasMap[n]; ok {
		return mapped
	}
	return n
}

// FileExtension returns the file extension used when a format is written to disk.
func FileExtension(name string) string {
	n := NormalizeFormatName(name)
	switch {
	case strings.Contains(n, "csv"):
		return "csv"
	case strings.HasPrefix(n, "console"), n == "terminal":
		return "txt"
	case n == "markdown":
		return "md"
	}
	return n
}

// AvailableFormatterNames lists canonical names, sorted
func AvailableFormatterNames() []string {
	return sortedKeys(formattersByName)
}

// AvailableFormatAliases lists alias names, sorted
func AvailableFormatAliases() []string {
	return sortedKeys(aliasMap)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
