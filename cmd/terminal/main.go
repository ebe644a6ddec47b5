package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

const themeEnv = "HYBRID_WARDEN_THEME"

func main() {
	themeFlag := flag.String("theme", "", "UI theme, see --list-themes (default from "+themeEnv+")")
	listThemes := flag.Bool("list-themes", false, "List the available themes and exit")
	flag.Parse()

	if *listThemes {
		for _, name := range ListThemes() {
			fmt.Println(name)
		}
		return
	}

	name := *themeFlag
	if name == "" {
		name = os.Getenv(themeEnv)
	}
	st, err := GetTheme(ThemeName(name))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v (use --list-themes)\n", err)
		os.Exit(2)
	}

	// The console owns stdout, so logs go to a file unless configured otherwise.
	if os.Getenv("LOGGING_OUTPUT") == "" {
		_ = os.Setenv("LOGGING_OUTPUT", "file")
	}

	if _, err := tea.NewProgram(initialModel(st), tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "console error: %v\n", err)
		os.Exit(1)
	}
}
