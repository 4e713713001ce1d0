package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

type envCheck struct {
	Name         string
	Key          string
	FallbackKey  string
	Default      string
	Description  string
	Secret       bool
	RequiredWhen func(getenv func(string) string) bool
}

type envState int

const (
	envOK envState = iota
	envWarning
	envMissing
)

type envResult struct {
	Check        envCheck
	State        envState
	Value        string
	UsedFallback bool
}

func always(func(string) string) bool { return true }

func providerIs(name string) func(func(string) string) bool {
	return func(getenv func(string) string) bool {
		provider := strings.ToLower(getenv("LLM_PROVIDER"))
		if provider == "" {
			provider = "gemini"
		}
		return provider == name
	}
}

var envChecks = []envCheck{
	{Name: "LLM Provider", Key: "LLM_PROVIDER", Default: "gemini", Description: "Which LLM to use (gemini or openai)"},
	{Name: "Gemini API Key", Key: "GEMINI_API_KEY", FallbackKey: "GOOGLE_AI_API_KEY", Secret: true, RequiredWhen: providerIs("gemini"),
		Description: "API key for Google Gemini AI (get it from https://ai.google.dev/)"},
	{Name: "Gemini Model", Key: "GEMINI_MODEL", Default: "gemini-2.5-pro", Description: "Which Gemini model to use"},
	{Name: "OpenAI API Key", Key: "OPENAI_API_KEY", Secret: true, RequiredWhen: providerIs("openai"),
		Description: "API key for OpenAI (only needed if LLM_PROVIDER=openai)"},
	{Name: "Admin Password Hash", Key: "ADMIN_PASSWORD_HASH", Secret: true, RequiredWhen: always,
		Description: "bcrypt hash of the admin password (dashboard hash-password <pw>)"},
	{Name: "Auth Secret", Key: "AUTH_SECRET", Secret: true, Description: "Signs session cookies; sessions end on restart without it"},
	{Name: "Resend API Key", Key: "RESEND_API_KEY", Secret: true, Description: "Newsletter provider key"},
	{Name: "Resend Audience", Key: "RESEND_AUDIENCE_ID", Description: "Newsletter audience id"},
	{Name: "Database", Key: "DATABASE_URL", Secret: true, Default: "in-memory quota", Description: "postgres:// or sqlite:// URL for quota and usage"},
}

// mask shows the first 8 and last 4 characters of long secrets
func mask(value string) string {
	if len(value) > 12 {
		return value[:8] + "..." + value[len(value)-4:]
	}
	return "***masked***"
}

func runEnvChecks(checks []envCheck, getenv func(string) string) ([]envResult, bool) {
	results := make([]envResult, 0, len(checks))
	hasErrors := false
	for _, check := range checks {
		res := envResult{Check: check}
		value := getenv(check.Key)
		if value == "" && check.FallbackKey != "" {
			if value = getenv(check.FallbackKey); value != "" {
				res.UsedFallback = true
			}
		}
		switch {
		case value != "":
			res.State = envOK
			res.Value = value
			if check.Secret {
				res.Value = mask(value)
			}
		case check.RequiredWhen != nil && check.RequiredWhen(getenv):
			res.State = envMissing
			hasErrors = true
		default:
			res.State = envWarning
		}
		results = append(results, res)
	}
	return results, hasErrors
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

func printEnvResults(out io.Writer, results []envResult) {
	for _, r := range results {
		switch r.State {
		case envOK:
			fmt.Fprintln(out, okStyle.Render("✔ "+r.Check.Name))
			fmt.Fprintf(out, "   %s: %s\n", r.Check.Key, r.Value)
			if r.UsedFallback {
				fmt.Fprintln(out, dimStyle.Render("   (using fallback: "+r.Check.FallbackKey+")"))
			}
		case envMissing:
			fmt.Fprintln(out, errStyle.Render("✘ "+r.Check.Name))
			fmt.Fprintf(out, "   %s: NOT SET\n", r.Check.Key)
			fmt.Fprintln(out, dimStyle.Render("   "+r.Check.Description))
		default:
			def := r.Check.Default
			if def == "" {
				def = "none"
			}
			fmt.Fprintln(out, warnStyle.Render("! "+r.Check.Name))
			fmt.Fprintf(out, "   %s: NOT SET (using default: %s)\n", r.Check.Key, def)
			fmt.Fprintln(out, dimStyle.Render("   "+r.Check.Description))
		}
		fmt.Fprintln(out)
	}
}

func newCheckEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-env",
		Short: "Report which environment variables are configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			results, hasErrors := runEnvChecks(envChecks, os.Getenv)
			printEnvResults(out, results)

			fmt.Fprintln(out, strings.Repeat("=", 60))
			if hasErrors {
				fmt.Fprintln(out, errStyle.Render("Configuration has ERRORS"))
				return fmt.Errorf("required environment variables are missing")
			}
			fmt.Fprintln(out, okStyle.Render("Configuration is usable"))
			return nil
		},
	}
}
