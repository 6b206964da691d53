package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rpgo/allocation-planner/internal/domain"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for format names with no registered formatter.
var ErrUnsupportedFormat = errors.New("unsupported report format")

func unsupported(format string) error {
	return fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, format, strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
}

// GenerateReport writes the plan in the given format to a timestamped file in dir.
// "all" writes the verbose console report and both CSV exports.
func GenerateReport(plan *domain.RebalancePlan, format, dir string) ([]string, error) {
	if f := GetFormatterByName(format); f != nil {
		name, err := WriteFormatted(f, plan, dir, FileExtension(f.Name()))
		if err != nil {
			return nil, err
		}
		return []string{name}, nil
	}
	if NormalizeFormatName(format) != "all" {
		return nil, unsupported(format)
	}
	var written []string
	for _, f := range []Formatter{ConsoleVerboseFormatter{}, CSVSummarizer{}, CSVDetailedExporter{}} {
		name, err := WriteFormatted(f, plan, dir, FileExtension(f.Name()))
		if err != nil {
			return written, err
		}
		written = append(written, name)
	}
	return written, nil
}

// Render writes the plan in the given format to w.
func Render(w io.Writer, plan *domain.RebalancePlan, format string) error {
	f := GetFormatterByName(format)
	if f == nil {
		return unsupported(format)
	}
	data, err := f.Format(plan)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// SaveConfiguration writes a portfolio as YAML.
func SaveConfiguration(p *domain.Portfolio, filename string) error {
	b, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0644)
}
