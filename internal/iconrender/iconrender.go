// Package iconrender wires the cache/decode/reduce/encode pipeline
// into the noteprint.IconRenderer seam: fetch (or reuse a cached
// copy of) an attachment URL, decode it, resize and quantize it to
// the terminal's current palette, and encode it as a SIXEL block.
package iconrender

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sayaka-go/sayaka/internal/cachepolicy"
	"github.com/sayaka-go/sayaka/internal/imgdecode"
	"github.com/sayaka-go/sayaka/internal/reduct"
	"github.com/sayaka-go/sayaka/internal/rimg"
	"github.com/sayaka-go/sayaka/internal/sixel"
)

// Renderer is the concrete noteprint.IconRenderer: it downloads (or
// reuses a cached render of) an image URL and returns the finished
// SIXEL escape sequence, or "" if image output is disabled, the
// terminal doesn't support SIXEL, or the fetch/decode/encode pipeline
// fails for any reason (a missing icon is never fatal to printing a
// note).
type Renderer struct {
	cache       cachepolicy.Policy
	colorName   string
	fontHeight  int
	handle      string
	enabled     bool
	opt         rimg.ImageOpt
	cols, rows  int
	httpClient  *http.Client
}

// New builds a Renderer. enabled gates the whole pipeline (set false
// when the terminal doesn't support SIXEL or --show-image=no); cols
// and rows bound the rendered icon's cell size. Whether a sensitive
// attachment should be rendered at all is noteprint's call, not this
// package's — Renderer renders whatever it's asked to.
func New(cache cachepolicy.Policy, colorName, handle string, fontHeight, cols, rows int, opt rimg.ImageOpt, enabled bool) *Renderer {
	return &Renderer{
		cache: cache, colorName: colorName, handle: handle, fontHeight: fontHeight,
		enabled: enabled, opt: opt, cols: cols, rows: rows,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// RenderIcon implements noteprint.IconRenderer.
func (r *Renderer) RenderIcon(url string, sensitive bool) string {
	if !r.enabled || url == "" {
		return ""
	}

	path := r.cache.IconPath(r.colorName, r.fontHeight, r.handle, url)
	if out, err := os.ReadFile(path); err == nil {
		return string(out)
	}

	raw, err := r.fetch(url)
	if err != nil {
		return ""
	}
	out, err := r.renderSixel(raw)
	if err != nil {
		return ""
	}
	_ = os.WriteFile(path, []byte(out), 0o644)
	return out
}

// RenderBlurhash implements noteprint.IconRenderer: it decodes hash
// directly (no network fetch) at the attachment's declared aspect
// ratio and renders it through the same resize/quantize/encode
// pipeline RenderIcon uses, for NSFWBlur placeholders.
func (r *Renderer) RenderBlurhash(hash string, width, height int) string {
	if !r.enabled || hash == "" {
		return ""
	}
	if width <= 0 {
		width = 32
	}
	if height <= 0 {
		height = 32
	}
	img, err := imgdecode.DecodeString(hash, 1.0, width, height)
	if err != nil {
		return ""
	}
	out, err := r.quantizeAndEncode(img)
	if err != nil {
		return ""
	}
	return out
}

func (r *Renderer) fetch(url string) ([]byte, error) {
	resp, err := r.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("iconrender: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("iconrender: fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (r *Renderer) renderSixel(raw []byte) (string, error) {
	reg := imgdecode.NewRegistry()
	outcome := reg.DecodeStream(bytes.NewReader(raw))
	if outcome.Status != imgdecode.Ok {
		return "", fmt.Errorf("iconrender: decode: %v", outcome.Err)
	}
	return r.quantizeAndEncode(outcome.Image)
}

// quantizeAndEncode runs a decoded raster through this Renderer's
// configured resize/quantize/encode pipeline, the step RenderIcon and
// RenderBlurhash share once they each have an ImageBuffer in hand.
func (r *Renderer) quantizeAndEncode(img *rimg.ImageBuffer) (string, error) {
	dstW, dstH := rimg.PreferredSize(img.Width, img.Height, rimg.ResizeBoth, r.cols, r.rows)
	if dstW == 0 || dstH == 0 {
		return "", fmt.Errorf("iconrender: image too small to render")
	}

	red := reduct.New(r.opt)
	resized, err := red.Resize(img, dstW, dstH)
	if err != nil {
		return "", err
	}
	quantized, err := red.Quantize(resized)
	if err != nil {
		return "", err
	}

	enc := sixel.NewEncoder(r.opt.OutputOrMode, r.opt.OutputTransBG, r.opt.SuppressPalette)
	payload, err := enc.Encode(quantized)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
