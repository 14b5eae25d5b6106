package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"

	"proxybench/internal/health"
	"proxybench/internal/scenario"
)

const bannerWidth = 60

// Printer renders harness progress and results for the terminal. It
// implements scenario.Progress.
type Printer struct {
	w       io.Writer
	scheme  *ColorScheme
	noColor bool
	quiet   bool
}

// NewPrinter creates a printer for w. Colors are used only when w is a
// terminal and noColor is unset. Quiet suppresses progress output but not
// the final summary.
func NewPrinter(w io.Writer, noColor, quiet bool) *Printer {
	plain := noColor || !isTerminal(w)
	scheme := DefaultColorScheme()
	if plain {
		scheme = NoColorScheme()
	}
	return &Printer{w: w, scheme: scheme, noColor: plain, quiet: quiet}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ScenarioStart implements scenario.Progress
func (p *Printer) ScenarioStart(s scenario.Scenario) {
	if p.quiet {
		return
	}
	banner := strings.Repeat("=", bannerWidth)
	fmt.Fprintln(p.w, p.scheme.Banner.Sprint(banner))
	fmt.Fprintf(p.w, "%s: %d users x %d requests\n",
		p.scheme.Highlight.Sprint(s.Key()), s.Users, s.Requests)
	fmt.Fprintln(p.w, p.scheme.Banner.Sprint(banner))
}

// ScenarioDone implements scenario.Progress
func (p *Printer) ScenarioDone(s scenario.Scenario, result *scenario.Result) {
	if p.quiet || result == nil || result.LoadTest == nil {
		return
	}
	stats := result.LoadTest

	rate := p.scheme.Success
	switch {
	case stats.SuccessRate < 0.5:
		rate = p.scheme.Error
	case stats.SuccessRate < 0.95:
		rate = p.scheme.Warn
	}

	fmt.Fprintf(p.w, "  %s %s\n", p.scheme.Label.Sprint("Success Rate:"),
		rate.Sprintf("%.1f%%", stats.SuccessRate*100))
	fmt.Fprintf(p.w, "  %s %.1f\n", p.scheme.Label.Sprint("Requests/sec:"), stats.RequestsPerSecond)
	fmt.Fprintf(p.w, "  %s %.3fs\n", p.scheme.Label.Sprint("Avg Response:"), stats.AvgResponseTime.Float())
	if stats.P95ResponseTime > 0 {
		fmt.Fprintf(p.w, "  %s %.3fs\n", p.scheme.Label.Sprint("P95 Response:"), stats.P95ResponseTime.Float())
	}
	if len(stats.ErrorBreakdown) > 0 {
		fmt.Fprintf(p.w, "  %s\n", p.scheme.Label.Sprint("Errors:"))
		for _, kind := range sortedKeys(stats.ErrorBreakdown) {
			fmt.Fprintf(p.w, "    %s: %d\n", kind, stats.ErrorBreakdown[kind])
		}
	}
	fmt.Fprintln(p.w)
}

// Summary prints the final per-scenario table.
func (p *Printer) Summary(report *scenario.Report) {
	if report == nil || report.Len() == 0 {
		return
	}
	fmt.Fprintln(p.w, p.scheme.Banner.Sprint(strings.Repeat("=", bannerWidth)))
	fmt.Fprintf(p.w, "%-24s | %8s | %8s | %8s\n", "Scenario", "Success", "RPS", "Avg")
	fmt.Fprintln(p.w, strings.Repeat("-", bannerWidth))

	for _, key := range report.Keys() {
		result := report.Get(key)
		if result == nil || result.LoadTest == nil {
			continue
		}
		stats := result.LoadTest
		fmt.Fprintf(p.w, "%-24s | %7.1f%% | %8.1f | %7.3fs\n",
			key, stats.SuccessRate*100, stats.RequestsPerSecond, stats.AvgResponseTime.Float())
	}
}

// Checks prints health probe results, one line per service.
func (p *Printer) Checks(checks []health.Check) {
	noColor := p.noColor
	for _, check := range checks {
		icon := SuccessIcon(noColor)
		detail := fmt.Sprintf("%d", check.StatusCode)
		if !check.OK() {
			icon = ErrorIcon(noColor)
			if !check.Required {
				icon = WarningIcon(noColor)
			}
			if check.Err != nil {
				detail = check.Err.Error()
			}
		}
		fmt.Fprintf(p.w, "%s %-12s %s (%s)\n", icon, check.Name, check.URL, detail)
	}
}

// Errorf prints an error line regardless of quiet mode.
func (p *Printer) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s %s\n", p.scheme.Error.Sprint("error:"), fmt.Sprintf(format, args...))
}

// Infof prints a progress line unless quiet.
func (p *Printer) Infof(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.w, format+"\n", args...)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
