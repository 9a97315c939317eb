package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/sayaka-go/sayaka/internal/sayakaconfig"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactively write a first-run config.yaml",
	Long: `setup prompts for the Misskey server host, the path to a token
file, a default color palette, and the terminal background, then writes
config.yaml to the config directory (honoring $XDG_CONFIG_HOME). The
first three are the settings --server/--token/--color can override on
every later run.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := sayakaconfig.Load()
	if err != nil {
		return fmt.Errorf("sayaka setup: load existing config: %w", err)
	}

	var tokenPath string
	var darkTheme = "dark"
	if !cfg.Display.DarkMode {
		darkTheme = "light"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Misskey server host").
				Placeholder("misskey.example").
				Value(&cfg.Server),
			huh.NewInput().
				Title("Path to a file containing your API token").
				Placeholder("~/.config/sayaka/token").
				Value(&tokenPath),
			huh.NewSelect[string]().
				Title("Default color palette").
				Options(
					huh.NewOption("Adaptive (best quality)", "adaptive"),
					huh.NewOption("xterm 256-color", "xterm256"),
					huh.NewOption("Fixed 256-color", "rgb332"),
					huh.NewOption("16-color (VGA)", "vga16"),
					huh.NewOption("Grayscale", "gray"),
				).
				Value(&cfg.Image.Palette),
			huh.NewSelect[string]().
				Title("Terminal background").
				Options(
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
				).
				Value(&darkTheme),
		),
	)

	if tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0); err == nil {
		defer tty.Close()
		form = form.WithInput(tty).WithOutput(tty)
	}

	if err := form.Run(); err != nil {
		return fmt.Errorf("sayaka setup: %w", err)
	}

	if tokenPath != "" {
		b, err := os.ReadFile(tokenPath)
		if err != nil {
			return fmt.Errorf("sayaka setup: read token file: %w", err)
		}
		cfg.Token = string(b)
	}
	cfg.Display.DarkMode = darkTheme == "dark"

	if err := sayakaconfig.Save(cfg); err != nil {
		return fmt.Errorf("sayaka setup: %w", err)
	}

	path, _ := sayakaconfig.GetConfigPath()
	fmt.Printf("sayaka: wrote %s\n", path)
	return nil
}
