package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/pylon/pkg/rules"
)

// formatBold returns the string formatted as bold using pterm
func formatBold(s string) string {
	// Only apply formatting if output is a terminal
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return s
	}
	return pterm.Bold.Sprint(s)
}

// formatUpper returns the string in uppercase
func formatUpper(s string) string {
	return strings.ToUpper(s)
}

// initTemplateFormatting adds custom formatting functions to Cobra templates
func initTemplateFormatting() {
	cobra.AddTemplateFuncs(template.FuncMap{
		"bold":  formatBold,
		"upper": formatUpper,
	})
}

// renderPipelines prints the rule table in registration order
func renderPipelines(w io.Writer, all []*rules.Rule) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		pterm.DisableStyling()
	}

	data := pterm.TableData{
		{"ID", "NAME", "GLOB", "BASE DIR", "OPS", "SPECIFICITY"},
	}
	for _, rule := range all {
		data = append(data, []string{
			fmt.Sprintf("%d", rule.ID),
			rule.Name,
			rule.TargetGlob.String(),
			rule.BaseDir.String(),
			fmt.Sprintf("%d", len(rule.Ops)),
			rule.TargetGlob.Specificity().String(),
		})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(w).Render()
}
