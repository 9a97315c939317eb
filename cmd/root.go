package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sayaka-go/sayaka/internal/cachepolicy"
	"github.com/sayaka-go/sayaka/internal/iconrender"
	"github.com/sayaka-go/sayaka/internal/misskey"
	"github.com/sayaka-go/sayaka/internal/ngword"
	"github.com/sayaka-go/sayaka/internal/noteprint"
	"github.com/sayaka-go/sayaka/internal/sayakaconfig"
	sig "github.com/sayaka-go/sayaka/internal/signal"
	"github.com/sayaka-go/sayaka/internal/stream"
	"github.com/sayaka-go/sayaka/internal/streamstate"
	"github.com/sayaka-go/sayaka/internal/termstate"
)

var (
	flagHome         bool
	flagLocal        bool
	flagPlay         string
	flagServer       string
	flagToken        string
	flagColor        string
	flagShowImage    string
	flagNSFW         string
	flagShowCW       bool
	flagFont         string
	flagMaxImageCols int
	flagEAWAmbig     int
	flagEAWNarrow    int
	flagDark         bool
	flagLight        bool
	flagEUCJP        bool
	flagJIS          bool
	flagRecord       string
	flagNGWordFile   string
)

var rootCmd = &cobra.Command{
	Use:   "sayaka",
	Short: "Stream and render a Misskey timeline in the terminal",
	Long: `sayaka follows a Misskey home or local timeline (or replays a
recorded session with --play) and renders each note's text, attachments,
and avatar directly to the terminal, using SIXEL graphics where supported.
This build has no live network transport: without --play, --home and
--local end with an error instead of following a timeline.

Examples:
  sayaka --home --server misskey.example --token ~/.config/sayaka/token
  sayaka --local --server misskey.example --token ~/.config/sayaka/token
  sayaka --play recording.ndjson`,
	RunE: runSayaka,
}

func init() {
	rootCmd.Flags().BoolVar(&flagHome, "home", false, "Follow the home timeline (needs --token)")
	rootCmd.Flags().BoolVar(&flagLocal, "local", false, "Follow the local timeline")
	rootCmd.Flags().StringVar(&flagPlay, "play", "", "Replay newline-delimited JSON frames from a file (or '-' for stdin) instead of connecting")
	rootCmd.Flags().StringVar(&flagServer, "server", "", "Misskey server host")
	rootCmd.Flags().StringVar(&flagToken, "token", "", "Path to a file containing the API token")
	rootCmd.Flags().StringVar(&flagColor, "color", "", "Palette: gray, rgb8, vga16, rgb332, xterm256 or adaptive (other values fall back to adaptive)")
	rootCmd.Flags().StringVar(&flagShowImage, "show-image", "", "auto|yes|no")
	rootCmd.Flags().StringVar(&flagNSFW, "nsfw", "", "hide|alt|blur|show")
	rootCmd.Flags().BoolVar(&flagShowCW, "show-cw", false, "Always expand content-warned bodies")
	rootCmd.Flags().StringVar(&flagFont, "font", "", "Terminal cell size WxH, e.g. 7x14")
	rootCmd.Flags().IntVar(&flagMaxImageCols, "max-image-cols", 0, "Cap rendered image width in columns (0 = no cap)")
	rootCmd.Flags().IntVar(&flagEAWAmbig, "eaw-a", 0, "East-Asian-Ambiguous width override (1 or 2); accepted but has no effect")
	rootCmd.Flags().IntVar(&flagEAWNarrow, "eaw-n", 0, "East-Asian-Narrow width override (1 or 2); accepted but has no effect")
	rootCmd.Flags().BoolVar(&flagDark, "dark", false, "Force dark background theme")
	rootCmd.Flags().BoolVar(&flagLight, "light", false, "Force light background theme")
	rootCmd.Flags().BoolVar(&flagEUCJP, "euc-jp", false, "EUC-JP output; accepted but has no effect, output is always UTF-8")
	rootCmd.Flags().BoolVar(&flagJIS, "jis", false, "ISO-2022-JP output; accepted but has no effect, output is always UTF-8")
	rootCmd.Flags().StringVar(&flagRecord, "record", "", "Append each raw frame to this file as it streams")
	rootCmd.Flags().StringVar(&flagNGWordFile, "ngword", "", "Path to an NG-word rule file (JSON)")
}

// Execute runs the sayaka entry point.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSayaka(cmd *cobra.Command, args []string) error {
	cfg, err := sayakaconfig.Load()
	if err != nil {
		return fmt.Errorf("sayaka: load config: %w", err)
	}
	applyOverrides(cfg)

	term := termstate.New()
	cols, rows, err := term.Size()
	if err != nil {
		cols, rows = 80, 24
	}
	darkMode := cfg.Display.DarkMode
	if flagDark {
		darkMode = true
	}
	if flagLight {
		darkMode = false
	}
	if !flagDark && !flagLight {
		_, _, _, dark := term.BackgroundColor()
		darkMode = dark
	}

	sheet := noteprint.DefaultStylesheet(darkMode)

	showImage := cfg.Display.ShowImage && term.SupportsSixel()

	dataDir, err := sayakaconfig.GetConfigDir()
	if err != nil {
		return fmt.Errorf("sayaka: data dir: %w", err)
	}
	cacheDir := filepath.Join(dataDir, "cache")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("sayaka: cache dir: %w", err)
	}
	policy := cachepolicy.New(cacheDir)
	if err := policy.Prune(time.Now()); err != nil {
		fmt.Fprintln(os.Stderr, "sayaka: cache prune:", err)
	}

	fontW, fontH := parseFont(cfg.Display.Font, flagFont)
	_ = fontW
	if flagColor != "" {
		cfg.Image.Palette = flagColor
	}
	icon := iconrender.New(policy, cfg.Image.Palette, "sayaka", fontH, clampCols(cols, cfg.Display.MaxImageCols), rows, cfg.ImageOpt(), showImage)

	printer := noteprint.New(noteprint.Options{
		Sheet:      sheet,
		ShowImage:  showImage,
		ShowCW:     cfg.Display.ShowCW || flagShowCW,
		NSFW:       nsfwPolicy(cfg.Display.NSFW),
		MaxCols:    cols,
		FontHeight: fontH,
	}, icon)

	var ngm *ngword.Matcher
	if flagNGWordFile != "" {
		f, err := os.Open(flagNGWordFile)
		if err != nil {
			return fmt.Errorf("sayaka: open ngword file: %w", err)
		}
		defer f.Close()
		ngm, err = ngword.Load(f)
		if err != nil {
			return fmt.Errorf("sayaka: load ngword file: %w", err)
		}
	}

	statePath := filepath.Join(dataDir, "streamstate.db")
	store, err := streamstate.Open(statePath)
	if err != nil {
		return fmt.Errorf("sayaka: open streamstate: %w", err)
	}
	defer store.Close()

	ctx, cancel := sig.NotifyContext()
	defer cancel()

	var recorder *stream.RecordingWriter
	if flagRecord != "" {
		f, err := os.Create(flagRecord)
		if err != nil {
			return fmt.Errorf("sayaka: open record file: %w", err)
		}
		defer f.Close()
		recorder = stream.NewRecordingWriter(f)
	}

	newTransport := func() stream.Transport {
		var t stream.Transport = stream.NewReplayTransport(flagPlay)
		if recorder != nil {
			t = recordingTransport{Transport: t, rec: recorder}
		}
		return t
	}

	onNote := func(n misskey.Note) error {
		firstSeen, err := store.MarkSeen(ctx, streamstate.KindNote, n.ID)
		if err != nil {
			return err
		}
		if !firstSeen {
			return nil
		}
		if ngm != nil && ngm.Matches(n.Author.ID, n.Text) {
			return nil
		}
		fmt.Println(printer.Print(n))
		return nil
	}

	if flagPlay == "" {
		return fmt.Errorf("sayaka: live streaming transport is not wired in this build; use --play=<file> to replay a recording")
	}

	model := stream.New(ctx, newTransport, onNote)
	_, err = tea.NewProgram(model).Run()
	if err != nil {
		return err
	}
	return model.Err()
}

func applyOverrides(cfg *sayakaconfig.Config) {
	if flagServer != "" {
		cfg.Server = flagServer
	}
	if flagToken != "" {
		if b, err := os.ReadFile(flagToken); err == nil {
			cfg.Token = string(b)
		}
	}
	if flagShowImage != "" {
		cfg.Display.ShowImage = flagShowImage != "no"
	}
	if flagNSFW != "" {
		cfg.Display.NSFW = flagNSFW
	}
	if flagMaxImageCols > 0 {
		cfg.Display.MaxImageCols = flagMaxImageCols
	}
}

func nsfwPolicy(name string) noteprint.NSFWPolicy {
	switch name {
	case "show":
		return noteprint.NSFWShow
	case "blur":
		return noteprint.NSFWBlur
	case "alt":
		return noteprint.NSFWAlt
	default:
		return noteprint.NSFWHide
	}
}

// parseFont parses a "WxH" font-cell size, cli taking precedence over
// config; falls back to 7x14 (a common terminal cell size) if neither
// is set or the string doesn't parse.
func parseFont(configured, cli string) (w, h int) {
	spec := cli
	if spec == "" {
		spec = configured
	}
	if spec != "" {
		if n, err := fmt.Sscanf(spec, "%dx%d", &w, &h); err == nil && n == 2 && w > 0 && h > 0 {
			return w, h
		}
	}
	return 7, 14
}

func clampCols(terminalCols, maxCols int) int {
	if maxCols > 0 && maxCols < terminalCols {
		return maxCols
	}
	return terminalCols
}

// recordingTransport tees every frame it relays through rec before
// handing it to the caller, implementing --record on top of any
// Transport without that Transport needing to know about recording.
type recordingTransport struct {
	stream.Transport
	rec *stream.RecordingWriter
}

func (t recordingTransport) Frames(ctx context.Context) (<-chan stream.Frame, <-chan error) {
	frames, errs := t.Transport.Frames(ctx)
	out := make(chan stream.Frame)
	go func() {
		defer close(out)
		for fr := range frames {
			if err := t.rec.Write(fr); err != nil {
				fmt.Fprintln(os.Stderr, "sayaka: record:", err)
			}
			select {
			case out <- fr:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, errs
}
