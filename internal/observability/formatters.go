package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/BAWSA3/brandos/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxFindingsToShow is the number of findings displayed per agent
	maxFindingsToShow = 3
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCorpus outputs a summary of the assembled corpus.
func (p *Printer) PrintCorpus(corpus *types.Corpus) {
	if corpus == nil || corpus.Len() == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Handle:   @%s\n", corpus.Handle))
	sb.WriteString(fmt.Sprintf("Items:    %d\n", corpus.Len()))
	sb.WriteString("Sources:  ")
	names := make([]string, 0, len(corpus.Sources))
	for _, kind := range types.AllSources() {
		if corpus.HasSource(kind) {
			names = append(names, string(kind))
		}
	}
	sb.WriteString(strings.Join(names, ", "))

	p.printBox("CORPUS", sb.String())
}

// PrintFingerprint outputs a human-readable summary of the voice
// fingerprint.
func (p *Printer) PrintFingerprint(fp *types.Fingerprint) {
	if fp == nil {
		return
	}

	var sb strings.Builder
	for _, dim := range []string{
		types.ToneFormality,
		types.ToneEnergy,
		types.ToneConfidence,
		types.ToneWarmth,
		types.ToneDirectness,
	} {
		sb.WriteString(fmt.Sprintf("%-12s %s %d\n", dim, bar(fp.ToneScores[dim]), fp.ToneScores[dim]))
	}
	if len(fp.Keywords) > 0 {
		sb.WriteString("\nKeywords: ")
		count := min(len(fp.Keywords), 8)
		sb.WriteString(strings.Join(fp.Keywords[:count], ", "))
		sb.WriteString("\n")
	}
	sb.WriteString("\n" + fp.VoiceSummary)
	if fp.LowEvidence {
		sb.WriteString("\n(low evidence)")
	}

	p.printBox("VOICE FINGERPRINT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReport outputs the unified report with per-agent scores and top
// findings.
func (p *Printer) PrintReport(report *types.UnifiedReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	if report.OverallScore != nil {
		sb.WriteString(fmt.Sprintf("Overall:  %.1f / 100\n", *report.OverallScore))
	} else {
		sb.WriteString("Overall:  n/a (all agents failed)\n")
	}
	if report.Degraded {
		sb.WriteString("Status:   degraded\n")
	}
	sb.WriteString("\n")

	for _, kind := range types.AllAgents() {
		agentReport, ok := report.Agents[kind]
		if !ok {
			continue
		}
		if agentReport.Errored() {
			sb.WriteString(fmt.Sprintf("%s: failed (%s)\n", kind, agentReport.Error))
			continue
		}
		sb.WriteString(fmt.Sprintf("%s: %d\n", kind, agentReport.Score))
		count := min(len(agentReport.Findings), maxFindingsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", agentReport.Findings[i].Title))
		}
		if len(agentReport.Findings) > maxFindingsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(agentReport.Findings)-maxFindingsToShow))
		}
	}

	p.printBox(fmt.Sprintf("BRAND REPORT: @%s", report.Handle), strings.TrimSuffix(sb.String(), "\n"))
}

// bar renders a 0-100 score as a ten-segment gauge.
func bar(score int) string {
	filled := score / 10
	if filled > 10 {
		filled = 10
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}
