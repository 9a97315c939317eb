package imgdecode

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/sayaka-go/sayaka/internal/rimg"
)

const blurhashChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz#$%*+,-.:;=?@[]^_{|}~"

// blurhashDecoder reconstructs the small DCT-basis thumbnail a
// blurhash string encodes. Notes never carry blurhash as an attached
// file; iconrender's RenderBlurhash and sixelv call DecodeString
// directly against a blurhash string, ahead of (or instead of) fetching
// the real file.
type blurhashDecoder struct{}

func (blurhashDecoder) Name() string { return "blurhash" }

// Sniff never matches during the normal format-probe dispatch: a
// blurhash is a short base83 string, not a byte stream with magic
// bytes, so it is only ever invoked directly via DecodeString.
func (blurhashDecoder) Sniff(magic []byte) bool { return false }

func (blurhashDecoder) Decode(io.Reader) (*rimg.ImageBuffer, error) {
	return nil, fmt.Errorf("imgdecode: blurhash has no stream form, call DecodeString")
}

func base83Decode(s string) (int, error) {
	v := 0
	for _, r := range s {
		idx := strings.IndexRune(blurhashChars, r)
		if idx < 0 {
			return 0, fmt.Errorf("imgdecode: blurhash: invalid base83 character %q", r)
		}
		v = v*83 + idx
	}
	return v, nil
}

func signedPow(v float64, exp float64) float64 {
	sign := 1.0
	if v < 0 {
		sign = -1.0
		v = -v
	}
	return sign * math.Pow(v, exp)
}

func srgbToLinear(v int) float64 {
	f := float64(v) / 255
	if f <= 0.04045 {
		return f / 12.92
	}
	return math.Pow((f+0.055)/1.055, 2.4)
}

func linearToSRGB(v float64) int {
	v = clamp01(v)
	var f float64
	if v <= 0.0031308 {
		f = v * 12.92
	} else {
		f = 1.055*math.Pow(v, 1/2.4) - 0.055
	}
	n := int(f*255 + 0.5)
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func decodeDC(v int) [3]float64 {
	return [3]float64{
		srgbToLinear(v >> 16),
		srgbToLinear((v >> 8) & 0xff),
		srgbToLinear(v & 0xff),
	}
}

func decodeAC(v int, maxVal float64) [3]float64 {
	r := v / (19 * 19)
	g := (v / 19) % 19
	b := v % 19
	return [3]float64{
		signedPow((float64(r)-9)/9, 2) * maxVal,
		signedPow((float64(g)-9)/9, 2) * maxVal,
		signedPow((float64(b)-9)/9, 2) * maxVal,
	}
}

// DecodeString renders a blurhash string at the requested pixel size
// into an ARGB32 ImageBuffer, reconstructing the DCT-basis thumbnail
// the hash encodes: a 1-character size field, a DC (average color)
// component, and AC components (up to 9x9 components in all, the DC
// one included) describing the low-frequency
// variation the original image had, each weighted by cosine basis
// functions over (x, y).
func DecodeString(hash string, punch float64, width, height int) (*rimg.ImageBuffer, error) {
	if len(hash) < 6 {
		return nil, fmt.Errorf("imgdecode: blurhash: string too short")
	}
	sizeFlag, err := base83Decode(hash[0:1])
	if err != nil {
		return nil, err
	}
	numY := sizeFlag/9 + 1
	numX := sizeFlag%9 + 1

	if len(hash) != 4+2*numX*numY {
		return nil, fmt.Errorf("imgdecode: blurhash: length mismatch for %dx%d components", numX, numY)
	}

	quantMaxAC, err := base83Decode(hash[1:2])
	if err != nil {
		return nil, err
	}
	maxAC := (float64(quantMaxAC) + 1) / 166

	dc, err := base83Decode(hash[2:6])
	if err != nil {
		return nil, err
	}

	if punch <= 0 {
		punch = 1
	}

	colors := make([][3]float64, numX*numY)
	colors[0] = decodeDC(dc)
	for i := 1; i < numX*numY; i++ {
		v, err := base83Decode(hash[4+i*2 : 4+i*2+2])
		if err != nil {
			return nil, err
		}
		colors[i] = decodeAC(v, maxAC*punch)
	}

	img := rimg.New(width, height, rimg.ARGB32)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var rgb [3]float64
			for j := 0; j < numY; j++ {
				for i := 0; i < numX; i++ {
					basis := math.Cos(math.Pi * float64(x) * float64(i) / float64(width)) *
						math.Cos(math.Pi * float64(y) * float64(j) / float64(height))
					c := colors[j*numX+i]
					rgb[0] += c[0] * basis
					rgb[1] += c[1] * basis
					rgb[2] += c[2] * basis
				}
			}
			o := y*img.Stride() + x*4
			img.Buf[o] = byte(linearToSRGB(rgb[0]))
			img.Buf[o+1] = byte(linearToSRGB(rgb[1]))
			img.Buf[o+2] = byte(linearToSRGB(rgb[2]))
			img.Buf[o+3] = 0xff
		}
	}
	return img, nil
}
