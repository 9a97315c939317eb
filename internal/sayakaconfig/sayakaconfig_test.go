package sayakaconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sayaka-go/sayaka/internal/rimg"
)

func TestLoadAppliesDefaultsWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Display.Color {
		t.Error("expected color default true")
	}
	if cfg.Image.ResizeMode != "highquality" {
		t.Errorf("resize_mode default = %q", cfg.Image.ResizeMode)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	confDir := filepath.Join(dir, "sayaka")
	if err := os.MkdirAll(confDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	content := "server: https://misskey.example\ntoken: abc123\ndisplay:\n  nsfw: show\n"
	if err := os.WriteFile(filepath.Join(confDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server != "https://misskey.example" || cfg.Token != "abc123" {
		t.Errorf("server/token = %q/%q", cfg.Server, cfg.Token)
	}
	if cfg.Display.NSFW != "show" {
		t.Errorf("expected nsfw: show to be read from config file, got %q", cfg.Display.NSFW)
	}
}

func TestImageOptAppliesDiffuseAndPalette(t *testing.T) {
	cfg := &Config{Image: ImageConfig{Diffuse: "atkinson", Palette: "vga16", Gain: 0.5}}
	opt := cfg.ImageOpt()
	if opt.Diffuse != rimg.DiffuseAtkinson {
		t.Errorf("Diffuse = %v", opt.Diffuse)
	}
	if opt.Color.Mode != rimg.ColorVGA16 {
		t.Errorf("Color.Mode = %v", opt.Color.Mode)
	}
	if opt.Gain != 128 {
		t.Errorf("Gain = %d, want 128", opt.Gain)
	}
}

func TestResizeAxisDefaultsToBoth(t *testing.T) {
	cfg := &Config{}
	if cfg.ResizeAxis() != rimg.ResizeBoth {
		t.Error("expected ResizeBoth default")
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Server = "misskey.example"
	cfg.Display.DarkMode = false
	cfg.Image.Palette = "xterm256"

	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load after Save: %v", err)
	}
	if got.Server != cfg.Server {
		t.Errorf("Server = %q, want %q", got.Server, cfg.Server)
	}
	if got.Display.DarkMode != cfg.Display.DarkMode {
		t.Errorf("DarkMode = %v, want %v", got.Display.DarkMode, cfg.Display.DarkMode)
	}
	if got.Image.Palette != cfg.Image.Palette {
		t.Errorf("Palette = %q, want %q", got.Image.Palette, cfg.Image.Palette)
	}
}
