// Package sayakaconfig loads the on-disk configuration of the sayaka
// command: the Misskey server/token pair, display preferences, and the
// image-processing defaults its flags can override. sixelv does not
// read it; it starts from rimg.DefaultImageOpt and its own flags.
package sayakaconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sayaka-go/sayaka/internal/rimg"
)

// Config is the unmarshalled shape of config.yaml.
type Config struct {
	Server string `mapstructure:"server" yaml:"server"`
	Token  string `mapstructure:"token" yaml:"token"`

	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Image   ImageConfig   `mapstructure:"image" yaml:"image"`
	NGWord  string        `mapstructure:"ngword_file" yaml:"ngword_file"`
}

// DisplayConfig controls rendering-level behavior shared by both CLIs.
type DisplayConfig struct {
	Color        bool   `mapstructure:"color" yaml:"color"`
	ShowImage    bool   `mapstructure:"show_image" yaml:"show_image"`
	NSFW         string `mapstructure:"nsfw" yaml:"nsfw"` // "hide", "alt", "blur", or "show"
	ShowCW       bool   `mapstructure:"show_cw" yaml:"show_cw"`
	Font         string `mapstructure:"font" yaml:"font"`
	MaxImageCols int    `mapstructure:"max_image_cols" yaml:"max_image_cols"`
	EAWAmbiguous string `mapstructure:"eaw_ambiguous" yaml:"eaw_ambiguous"` // "narrow" or "wide"
	DarkMode     bool   `mapstructure:"dark_mode" yaml:"dark_mode"`
	Encoding     string `mapstructure:"encoding" yaml:"encoding"` // "utf8", "eucjp", "jis"
}

// ImageConfig mirrors the sixelv-specific resize/quantize defaults.
type ImageConfig struct {
	Width          int     `mapstructure:"width" yaml:"width"`
	Height         int     `mapstructure:"height" yaml:"height"`
	ResizeMode     string  `mapstructure:"resize_mode" yaml:"resize_mode"` // "simple" or "highquality"
	ResizeAxisName string  `mapstructure:"resize_axis" yaml:"resize_axis"` // "both", "width", "height"
	Diffuse        string  `mapstructure:"diffuse" yaml:"diffuse"`
	Palette        string  `mapstructure:"palette" yaml:"palette"`
	Gain           float64 `mapstructure:"gain" yaml:"gain"`
	SixelOrMode    bool    `mapstructure:"sixel_or" yaml:"sixel_or"`
	SixelTransBG   bool    `mapstructure:"sixel_transbg" yaml:"sixel_transbg"`
	SuppressPal    bool    `mapstructure:"suppress_palette" yaml:"suppress_palette"`
	BlurhashNear   bool    `mapstructure:"blurhash_nearest" yaml:"blurhash_nearest"`
}

// GetConfigDir returns the XDG config directory for sayaka, honoring
// $XDG_CONFIG_HOME the same way the surrounding ecosystem does.
func GetConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sayaka"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "sayaka"), nil
}

// GetConfigPath returns the default config.yaml location.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func defaults() map[string]any {
	return map[string]any{
		"display.color":          true,
		"display.show_image":     true,
		"display.nsfw":           "hide",
		"display.show_cw":        false,
		"display.max_image_cols": 0,
		"display.eaw_ambiguous":  "narrow",
		"display.dark_mode":      true,
		"display.encoding":       "utf8",
		"image.width":            0,
		"image.height":           0,
		"image.resize_mode":      "highquality",
		"image.resize_axis":      "both",
		"image.diffuse":          "floyd-steinberg",
		"image.palette":          "adaptive",
		"image.gain":             1.0,
		"image.sixel_or":         false,
		"image.sixel_transbg":    false,
		"image.suppress_palette": false,
		"image.blurhash_nearest": false,
	}
}

// Load reads config.yaml from the XDG config directory (and the
// current directory, as a fallback) merged over the built-in
// defaults. A missing file is not an error: every field has a usable
// zero-override default.
func Load() (*Config, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("sayakaconfig: config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.AddConfigPath(".")
	v.SetEnvPrefix("SAYAKA")
	v.AutomaticEnv()

	for key, val := range defaults() {
		v.SetDefault(key, val)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("sayakaconfig: read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("sayakaconfig: unmarshal: %w", err)
	}
	return &cfg, nil
}

// Save writes cfg to the default config.yaml location, creating the
// config directory if needed. Used by the interactive `sayaka setup`
// wizard; Load's viper-based reader can read back whatever this writes
// since both agree on the mapstructure/yaml tag names.
func Save(cfg *Config) error {
	dir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("sayakaconfig: config dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("sayakaconfig: create config dir: %w", err)
	}
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("sayakaconfig: marshal config: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("sayakaconfig: write config: %w", err)
	}
	return nil
}

var diffuseNames = map[string]rimg.Diffuse{
	"none":            rimg.DiffuseNone,
	"sfl":             rimg.DiffuseSFL,
	"floyd-steinberg": rimg.DiffuseFS,
	"atkinson":        rimg.DiffuseAtkinson,
	"jajuni":          rimg.DiffuseJaJuNi,
	"stucki":          rimg.DiffuseStucki,
	"burkes":          rimg.DiffuseBurkes,
	"two":             rimg.DiffuseTwo,
	"three":           rimg.DiffuseThree,
	"rgb":             rimg.DiffuseRGB,
}

var paletteNames = map[string]rimg.ColorMode{
	"gray":     rimg.ColorGray,
	"rgb8":     rimg.ColorRGB8,
	"vga16":    rimg.ColorVGA16,
	"rgb332":   rimg.ColorRGB332,
	"xterm256": rimg.ColorXterm256,
	"adaptive": rimg.ColorAdaptive,
}

// ImageOpt translates the loaded ImageConfig into the options struct
// internal/reduct and internal/sixel consume. Unrecognized diffuse or
// palette names fall back to DefaultImageOpt's choice.
func (c *Config) ImageOpt() rimg.ImageOpt {
	opt := rimg.DefaultImageOpt()
	if d, ok := diffuseNames[c.Image.Diffuse]; ok {
		opt.Diffuse = d
	}
	if m, ok := paletteNames[c.Image.Palette]; ok {
		opt.Color = rimg.ColorTag{Mode: m, Count: opt.Color.Count}
	}
	opt.OutputOrMode = c.Image.SixelOrMode
	opt.OutputTransBG = c.Image.SixelTransBG
	opt.SuppressPalette = c.Image.SuppressPal
	if c.Image.Gain > 0 {
		opt.Gain = int(c.Image.Gain * 256)
	}
	if c.Image.ResizeMode == "simple" {
		opt.Method = rimg.Simple
	} else {
		opt.Method = rimg.HighQuality
	}
	return opt
}

// ResizeAxis translates the configured resize-axis name into the
// rimg.ResizeAxis enum used by PreferredSize.
func (c *Config) ResizeAxis() rimg.ResizeAxis {
	switch c.Image.ResizeAxisName {
	case "width":
		return rimg.ResizeWidth
	case "height":
		return rimg.ResizeHeight
	case "long":
		return rimg.ResizeLong
	case "short":
		return rimg.ResizeShort
	default:
		return rimg.ResizeBoth
	}
}
