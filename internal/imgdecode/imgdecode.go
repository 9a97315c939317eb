// Package imgdecode detects an image's wire format from its leading
// bytes and decodes it into the working rimg.ImageBuffer model. Each
// registered decoder reports one of three outcomes rather than a bare
// error: it did not recognize the stream at all, it recognized the
// stream but could not decode it, or it succeeded — collapsing the
// first two into a single error return (as the original C dispatcher
// did) hides exactly the bug class this package is built to avoid.
package imgdecode

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/sayaka-go/sayaka/internal/peek"
	"github.com/sayaka-go/sayaka/internal/rimg"
)

// Status is the tri-state result of attempting one decoder against a
// stream.
type Status int

const (
	// NotMine means the magic bytes do not belong to this decoder; the
	// dispatcher should try the next one.
	NotMine Status = iota
	// Failed means the magic bytes matched but decoding itself failed;
	// the dispatcher must stop and surface the error, not fall through.
	Failed
	// Ok means decoding succeeded.
	Ok
)

// Outcome is what a Decoder.Decode call returns.
type Outcome struct {
	Status Status
	Image  *rimg.ImageBuffer
	Err    error
}

// ErrJXLUnavailable is returned for a correctly sniffed JPEG XL stream:
// the format is recognized, but no decoder is available to read it.
var ErrJXLUnavailable = fmt.Errorf("imgdecode: JPEG XL recognized but no decoder is available")

// Decoder recognizes and decodes one image format.
type Decoder interface {
	Name() string
	// Sniff inspects the first few bytes (already peeked, rewindable)
	// and reports whether this decoder wants to attempt a full decode.
	Sniff(magic []byte) bool
	// Decode consumes r (positioned at the start of the stream) and
	// attempts a full decode.
	Decode(r io.Reader) (*rimg.ImageBuffer, error)
}

// Registry holds the ordered set of decoders tried against an incoming
// stream.
type Registry struct {
	decoders []Decoder
}

// NewRegistry builds the registry with every decoder this package
// ships, in a fixed probe order.
func NewRegistry() *Registry {
	return &Registry{decoders: []Decoder{
		pngDecoder{}, jpegDecoder{}, gifDecoder{}, bmpDecoder{},
		tiffDecoder{}, webpDecoder{}, jxlSniffer{}, blurhashDecoder{},
	}}
}

// DecodeStream peeks enough of src to sniff a format, then dispatches
// to the first decoder whose Sniff matches, returning that decoder's
// Outcome. If no decoder recognizes the stream, Status is NotMine.
func (reg *Registry) DecodeStream(src io.Reader) Outcome {
	ps := peek.New(src)
	magicHandle := ps.OpenForPeek()
	magic := make([]byte, 32)
	n, _ := io.ReadFull(magicHandle, magic)
	magic = magic[:n]

	for _, d := range reg.decoders {
		if !d.Sniff(magic) {
			continue
		}
		readHandle := ps.OpenForRead()
		img, err := d.Decode(readHandle)
		if err != nil {
			return Outcome{Status: Failed, Err: fmt.Errorf("imgdecode: %s: %w", d.Name(), err)}
		}
		return Outcome{Status: Ok, Image: img}
	}
	return Outcome{Status: NotMine}
}

// fromGoImage converts a decoded stdlib/x/image image.Image into an
// rimg.ImageBuffer in ARGB32, the lossless intermediate every decoder
// in this package converges on before the reductor takes over.
func fromGoImage(src image.Image) *rimg.ImageBuffer {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := rimg.New(w, h, rimg.ARGB32)
	hasAlpha := false
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			o := y*out.Stride() + x*4
			out.Buf[o] = byte(r >> 8)
			out.Buf[o+1] = byte(g >> 8)
			out.Buf[o+2] = byte(b >> 8)
			out.Buf[o+3] = byte(a >> 8)
			if a>>8 < 0x80 {
				hasAlpha = true
			}
		}
	}
	out.HasAlpha = hasAlpha
	return out
}

type pngDecoder struct{}

func (pngDecoder) Name() string { return "png" }
func (pngDecoder) Sniff(magic []byte) bool {
	return bytes.HasPrefix(magic, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})
}
func (pngDecoder) Decode(r io.Reader) (*rimg.ImageBuffer, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, err
	}
	return fromGoImage(img), nil
}

type jpegDecoder struct{}

func (jpegDecoder) Name() string { return "jpeg" }
func (jpegDecoder) Sniff(magic []byte) bool {
	return bytes.HasPrefix(magic, []byte{0xff, 0xd8, 0xff})
}
func (jpegDecoder) Decode(r io.Reader) (*rimg.ImageBuffer, error) {
	img, err := jpeg.Decode(r)
	if err != nil {
		return nil, err
	}
	return fromGoImage(img), nil
}

type gifDecoder struct{}

func (gifDecoder) Name() string { return "gif" }
func (gifDecoder) Sniff(magic []byte) bool {
	return bytes.HasPrefix(magic, []byte("GIF87a")) || bytes.HasPrefix(magic, []byte("GIF89a"))
}
func (gifDecoder) Decode(r io.Reader) (*rimg.ImageBuffer, error) {
	img, err := gif.Decode(r)
	if err != nil {
		return nil, err
	}
	return fromGoImage(img), nil
}

type bmpDecoder struct{}

func (bmpDecoder) Name() string { return "bmp" }
func (bmpDecoder) Sniff(magic []byte) bool {
	return bytes.HasPrefix(magic, []byte("BM"))
}
func (bmpDecoder) Decode(r io.Reader) (*rimg.ImageBuffer, error) {
	img, err := bmp.Decode(r)
	if err != nil {
		return nil, err
	}
	return fromGoImage(img), nil
}

type tiffDecoder struct{}

func (tiffDecoder) Name() string { return "tiff" }
func (tiffDecoder) Sniff(magic []byte) bool {
	return bytes.HasPrefix(magic, []byte("II*\x00")) || bytes.HasPrefix(magic, []byte("MM\x00*"))
}
func (tiffDecoder) Decode(r io.Reader) (*rimg.ImageBuffer, error) {
	img, err := tiff.Decode(r)
	if err != nil {
		return nil, err
	}
	return fromGoImage(img), nil
}

type webpDecoder struct{}

func (webpDecoder) Name() string { return "webp" }
func (webpDecoder) Sniff(magic []byte) bool {
	return len(magic) >= 12 && bytes.HasPrefix(magic, []byte("RIFF")) && bytes.Equal(magic[8:12], []byte("WEBP"))
}
func (webpDecoder) Decode(r io.Reader) (*rimg.ImageBuffer, error) {
	img, err := webp.Decode(r)
	if err != nil {
		return nil, err
	}
	return fromGoImage(img), nil
}

// jxlSniffer recognizes both JPEG XL container forms (the bare
// codestream and the ISOBMFF box form) but always fails the decode,
// surfacing ErrJXLUnavailable rather than a generic parse error — the
// distinct-error fix for the bug named in spec §9.
type jxlSniffer struct{}

func (jxlSniffer) Name() string { return "jxl" }
func (jxlSniffer) Sniff(magic []byte) bool {
	bareCodestream := bytes.HasPrefix(magic, []byte{0xff, 0x0a})
	isobmff := bytes.HasPrefix(magic, []byte{0x00, 0x00, 0x00, 0x0c, 'J', 'X', 'L', ' ', 0x0d, 0x0a, 0x87, 0x0a})
	return bareCodestream || isobmff
}
func (jxlSniffer) Decode(io.Reader) (*rimg.ImageBuffer, error) {
	return nil, ErrJXLUnavailable
}
