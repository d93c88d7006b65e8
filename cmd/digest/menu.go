package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"community-digest/pkg/config"
)

var (
	colorPrimary   = lipgloss.Color("45")  // Cyan
	colorHighlight = lipgloss.Color("214") // Amber
	colorMuted     = lipgloss.Color("241") // Gray
	colorSuccess   = lipgloss.Color("78")  // Green
	colorError     = lipgloss.Color("196") // Red

	headerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	optionKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorHighlight).
			Width(5)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Width(26)

	statusStyle  = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
)

var menuOptions = []struct {
	key   string
	label string
}{
	{"1", "📧 Generate & Send Digest"},
	{"2", "👀 Preview Only (No Email)"},
	{"3", "⚙️  View Current Settings"},
	{"4", "📂 Open Output Folder"},
	{"5", "❌ Exit"},
}

func renderHeader() string {
	return headerStyle.Render(
		titleStyle.Render("🚀 The Weekly Sync") + "\n" +
			mutedStyle.Render("Your AI-Powered Community Digest Generator"),
	)
}

func renderMenu() string {
	var b strings.Builder
	for _, opt := range menuOptions {
		b.WriteString(optionKeyStyle.Render("["+opt.key+"]") + opt.label + "\n")
	}
	return b.String()
}

func renderSettings(cfg *config.Config) string {
	var b strings.Builder

	b.WriteString(sectionStyle.Render("📡 Monitored Communities") + "\n")
	for _, community := range cfg.Communities {
		b.WriteString("  r/" + strings.TrimPrefix(community, "r/") + "\n")
	}

	rows := [][2]string{
		{"Posts per community", strconv.Itoa(cfg.Fetch.PostsPerCommunity)},
		{"Time window", cfg.Fetch.TimeWindow},
		{"Delay between requests", strconv.FormatFloat(cfg.Fetch.DelayBetweenRequests, 'f', -1, 64) + "s"},
		{"Max retries", strconv.Itoa(cfg.Fetch.MaxRetries)},
		{"Stories to include", cfg.Newsletter.StoriesToInclude},
		{"Output file", cfg.OutputPath()},
		{"Model", cfg.LLM.Model},
		{"API key", presence(cfg.LLM.APIKey != "")},
		{"Send on completion", strconv.FormatBool(cfg.Email.SendOnCompletion)},
		{"SMTP", presence(cfg.Email.SMTP.Host != "" && cfg.Email.SMTP.User != "")},
	}

	b.WriteString(sectionStyle.Render("⚙️  Settings") + "\n")
	for _, row := range rows {
		b.WriteString("  " + labelStyle.Render(row[0]) + row[1] + "\n")
	}

	source := cfg.Path
	if source == "" {
		source = "built-in defaults"
	}
	b.WriteString("\n" + mutedStyle.Render("Loaded from "+source+". Edit "+config.DefaultPath+" to change these settings.") + "\n")
	return b.String()
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "missing"
}

// interactive runs the menu until exit, end of input or cancellation
func (a *app) interactive(ctx context.Context, in io.Reader) {
	fmt.Fprintln(a.out, renderHeader())

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Fprintln(a.out)
		fmt.Fprint(a.out, renderMenu())
		fmt.Fprint(a.out, "\nEnter your choice (1-5): ")

		var choice string
		select {
		case <-ctx.Done():
			fmt.Fprintln(a.out, "\n"+statusStyle.Render("👋 Goodbye!"))
			return
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(a.out, "\n"+statusStyle.Render("👋 Goodbye!"))
				return
			}
			choice = strings.TrimSpace(line)
		}

		switch choice {
		case "1":
			_ = a.generate(ctx, true)
		case "2":
			_ = a.generate(ctx, false)
		case "3":
			a.showSettings()
		case "4":
			a.openOutput()
		case "5":
			fmt.Fprintln(a.out, statusStyle.Render("👋 Goodbye!"))
			return
		default:
			fmt.Fprintln(a.out, errorStyle.Render("Invalid choice. Please enter 1-5."))
		}
	}
}

func (a *app) showSettings() {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		fmt.Fprintln(a.out, errorStyle.Render("❌ "+err.Error()))
		return
	}
	fmt.Fprint(a.out, renderSettings(cfg))
}

func (a *app) openOutput() {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		fmt.Fprintln(a.out, errorStyle.Render("❌ "+err.Error()))
		return
	}

	dir := cfg.Newsletter.OutputDirectory
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintln(a.out, errorStyle.Render("❌ "+err.Error()))
		return
	}

	open := a.openFolder
	if open == nil {
		open = openFolder
	}
	if err := open(dir); err != nil {
		fmt.Fprintln(a.out, errorStyle.Render("❌ Could not open "+dir+": "+err.Error()))
		return
	}
	fmt.Fprintln(a.out, successStyle.Render("📂 Opened: ")+dir)
}

func openFolder(dir string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("explorer", dir)
	case "darwin":
		cmd = exec.Command("open", dir)
	default:
		cmd = exec.Command("xdg-open", dir)
	}
	return cmd.Start()
}
