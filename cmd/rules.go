package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/cloudcitycakeco/cakeorders/internal/config"
	"github.com/cloudcitycakeco/cakeorders/internal/notification"
	"github.com/cloudcitycakeco/cakeorders/internal/order"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// NewRulesCmd returns the "rules" subcommand that validates the rules file
// and prints the workflow and the notification rules.
func NewRulesCmd(cfg *config.AppConfig) *cobra.Command {
	var (
		file    string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Validate and print the order workflow and notification rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noColor {
				lipgloss.SetColorProfile(termenv.Ascii)
			}
			path := cfg.RulesFile
			if cmd.Flags().Changed("file") {
				path = file
			}

			notifCfg, err := config.LoadNotificationConfig(path)
			if err != nil {
				return err
			}
			wf, err := notifCfg.Workflow()
			if err != nil {
				return fmt.Errorf("invalid workflow: %w", err)
			}
			rules, err := notification.RulesFromConfig(notifCfg, wf)
			if err != nil {
				return fmt.Errorf("invalid rules: %w", err)
			}

			printRules(cmd.OutOrStdout(), wf, rules)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Rules file to check (overrides CAKEORDERS_RULES_FILE)")
	cmd.Flags().BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "Disable colored output")
	return cmd
}

func printRules(w io.Writer, wf *order.Workflow, rules *notification.RuleSet) {
	fmt.Fprintln(w, headerStyle.Render("Workflow"))
	for _, s := range wf.Statuses() {
		next := wf.Next(s)
		targets := make([]string, 0, len(next))
		for _, n := range next {
			targets = append(targets, string(n))
		}
		label := string(s)
		if s == wf.Initial() {
			label += " (initial)"
		}
		if len(targets) == 0 {
			fmt.Fprintf(w, "  %-22s %s\n", label, dimStyle.Render("terminal"))
			continue
		}
		fmt.Fprintf(w, "  %-22s -> %s\n", label, strings.Join(targets, ", "))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Notification rules (%d)", rules.Len())))
	for _, r := range rules.Rules() {
		from := "any"
		if len(r.From) > 0 {
			parts := make([]string, 0, len(r.From))
			for _, f := range r.From {
				parts = append(parts, string(f))
			}
			from = strings.Join(parts, "|")
		}
		fmt.Fprintf(w, "  %s  %s -> %s via %s\n",
			nameStyle.Render(fmt.Sprintf("%-20s", r.Name)), from, r.Trigger, r.Channel)
	}
}
