package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sayaka-go/sayaka/internal/imgdecode"
	"github.com/sayaka-go/sayaka/internal/reduct"
	"github.com/sayaka-go/sayaka/internal/rimg"
	"github.com/sayaka-go/sayaka/internal/sixel"
)

var (
	sixelvWidth          int
	sixelvHeight          int
	sixelvPage            int
	sixelvResizeQuality   string
	sixelvDiffuse         string
	sixelvResizeAxis      string
	sixelvGain            float64
	sixelvCDM             float64
	sixelvOutputFormat    string
	sixelvOutputFile      string
	sixelvOrMode          bool
	sixelvTransBG         bool
	sixelvSuppressPalette bool
	sixelvBlurhashNearest bool
)

var sixelvCmd = &cobra.Command{
	Use:   "sixelv <file>",
	Short: "Decode, resize, and render a single image as SIXEL, BMP, or ASCII art",
	Long: `sixelv is a standalone image viewer sharing sayaka's decode/resize/
quantize/encode pipeline: it reads one image file (or "-" for stdin),
reduces it to a terminal-displayable form, and writes the encoded result
to stdout (or -o <file>).`,
	Args: cobra.ExactArgs(1),
	RunE: runSixelv,
}

func init() {
	sixelvCmd.Flags().IntVarP(&sixelvWidth, "width", "w", 0, "Target width in pixels (0 = auto from height/aspect)")
	sixelvCmd.Flags().IntVarP(&sixelvHeight, "height", "h", 0, "Target height in pixels (0 = auto from width/aspect)")
	sixelvCmd.Flags().IntVarP(&sixelvPage, "page", "p", 0, "Page index for multi-frame formats")
	sixelvCmd.Flags().StringVarP(&sixelvResizeQuality, "resize-quality", "r", "high", "simple|high")
	sixelvCmd.Flags().StringVarP(&sixelvDiffuse, "diffuse", "d", "sfl", "Error-diffusion kernel name")
	sixelvCmd.Flags().StringVar(&sixelvResizeAxis, "resize-axis", "both", "both|width|height|long|short")
	sixelvCmd.Flags().Float64Var(&sixelvGain, "gain", 0, "Brightness gain multiplier (0 = identity)")
	sixelvCmd.Flags().Float64Var(&sixelvCDM, "cdm", 0, "Differential color attenuator, 0..1")
	sixelvCmd.Flags().StringVarP(&sixelvOutputFormat, "output-format", "O", "sixel", "sixel|bmp|ascii")
	sixelvCmd.Flags().StringVarP(&sixelvOutputFile, "output", "o", "", "Output file (default stdout)")
	sixelvCmd.Flags().BoolVar(&sixelvOrMode, "sixel-or", false, "Encode using bit-plane OR-composition instead of the normal RLE passes")
	sixelvCmd.Flags().BoolVar(&sixelvTransBG, "sixel-transbg", false, "Treat background color as transparent")
	sixelvCmd.Flags().BoolVar(&sixelvSuppressPalette, "suppress-palette", false, "Omit the palette preamble (assume the terminal already has it loaded)")
	sixelvCmd.Flags().BoolVar(&sixelvBlurhashNearest, "blurhash-nearest", false, "Treat the argument as a blurhash string instead of a file path")
	rootCmd.AddCommand(sixelvCmd)
}

// ExecuteSixelv runs the sixelv entry point directly, bypassing the
// sayaka root command (sixelv ships as its own binary, not a sayaka
// subcommand — it is also registered under rootCmd so `sayaka sixelv`
// works as a convenience alias).
func ExecuteSixelv() {
	// cobra runs the root of a command's tree, so detach sixelv first.
	rootCmd.RemoveCommand(sixelvCmd)
	if err := sixelvCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSixelv(cmd *cobra.Command, args []string) error {
	target := args[0]

	var img *rimg.ImageBuffer
	if sixelvBlurhashNearest {
		w, h := sixelvWidth, sixelvHeight
		if w == 0 {
			w = 32
		}
		if h == 0 {
			h = 32
		}
		decoded, err := imgdecode.DecodeString(target, 1.0, w, h)
		if err != nil {
			return fmt.Errorf("sixelv: decode blurhash: %w", err)
		}
		img = decoded
	} else {
		var src io.Reader
		if target == "-" {
			src = os.Stdin
		} else {
			f, err := os.Open(target)
			if err != nil {
				return fmt.Errorf("sixelv: open %s: %w", target, err)
			}
			defer f.Close()
			src = f
		}
		reg := imgdecode.NewRegistry()
		outcome := reg.DecodeStream(src)
		switch outcome.Status {
		case imgdecode.NotMine:
			return fmt.Errorf("sixelv: %s: unrecognized image format", target)
		case imgdecode.Failed:
			return fmt.Errorf("sixelv: %s: %w", target, outcome.Err)
		}
		img = outcome.Image
	}

	opt := rimg.DefaultImageOpt()
	if d, ok := diffuseFlagNames[sixelvDiffuse]; ok {
		opt.Diffuse = d
	}
	if sixelvResizeQuality == "simple" {
		opt.Method = rimg.Simple
	}
	opt.OutputOrMode = sixelvOrMode
	opt.OutputTransBG = sixelvTransBG
	opt.SuppressPalette = sixelvSuppressPalette
	if sixelvGain > 0 {
		opt.Gain = int(sixelvGain * 256)
	}
	if sixelvCDM > 0 {
		opt.CDM = int(sixelvCDM * 256)
	}

	axis := resizeAxisFlagNames[sixelvResizeAxis]
	dstW, dstH := rimg.PreferredSize(img.Width, img.Height, axis, sixelvWidth, sixelvHeight)
	if dstW == 0 || dstH == 0 {
		return fmt.Errorf("sixelv: requested size too small to render")
	}

	red := reduct.New(opt)
	resized, err := red.Resize(img, dstW, dstH)
	if err != nil {
		return fmt.Errorf("sixelv: resize: %w", err)
	}
	quantized, err := red.Quantize(resized)
	if err != nil {
		return fmt.Errorf("sixelv: quantize: %w", err)
	}

	out := os.Stdout
	if sixelvOutputFile != "" {
		f, err := os.Create(sixelvOutputFile)
		if err != nil {
			return fmt.Errorf("sixelv: create %s: %w", sixelvOutputFile, err)
		}
		defer f.Close()
		out = f
	}

	switch sixelvOutputFormat {
	case "bmp":
		return writeBMP(out, quantized)
	case "ascii":
		return writeASCII(out, quantized)
	default:
		enc := sixel.NewEncoder(opt.OutputOrMode, opt.OutputTransBG, opt.SuppressPalette)
		payload, err := enc.Encode(quantized)
		if err != nil {
			return fmt.Errorf("sixelv: encode: %w", err)
		}
		_, err = out.Write(payload)
		return err
	}
}

var diffuseFlagNames = map[string]rimg.Diffuse{
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

var resizeAxisFlagNames = map[string]rimg.ResizeAxis{
	"both":   rimg.ResizeBoth,
	"width":  rimg.ResizeWidth,
	"height": rimg.ResizeHeight,
	"long":   rimg.ResizeLong,
	"short":  rimg.ResizeShort,
}
