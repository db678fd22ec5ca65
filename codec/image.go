package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"path"
	"strings"

	ico "github.com/biessek/golang-ico"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/wippyai/arrayio/errors"
	"github.com/wippyai/arrayio/value"
)

// Format is an image output container.
type Format uint8

const (
	FormatPNG Format = iota
	FormatJPEG
	FormatBMP
	FormatGIF
	FormatICO
)

// JPEGQuality is the quality used for JPEG output.
const JPEGQuality = 100

func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatBMP:
		return "bmp"
	case FormatGIF:
		return "gif"
	case FormatICO:
		return "ico"
	default:
		return "png"
	}
}

// FormatFromPath selects the output format from a file extension.
// Unknown or missing extensions select PNG.
func FormatFromPath(p string) Format {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(p), ".")) {
	case "jpg", "jpeg":
		return FormatJPEG
	case "bmp":
		return FormatBMP
	case "gif":
		return FormatGIF
	case "ico":
		return FormatICO
	default:
		return FormatPNG
	}
}

// Image is an encoded value together with the channel layout it was built
// from: 1 gray, 2 gray+alpha, 3 RGB, 4 RGBA.
type Image struct {
	image.Image
	Channels int
}

// EncodeImage converts a rank 2 or rank 3 array into an image.
//
// Numeric elements map to floor(f*255), saturated to 0..255 with NaN read
// as 0. Byte elements map to min(b, 1)*255 with unset bytes read as 0.
func EncodeImage(v value.Value) (*Image, error) {
	rank := v.Rank()
	if rank != 2 && rank != 3 {
		return nil, errors.RankMismatch(errors.PhaseEncode, rank,
			fmt.Sprintf("Image must be a rank 2 or 3 numeric array, but it is rank %d", rank))
	}

	px, err := channelBytes(v)
	if err != nil {
		return nil, err
	}

	shape := v.Shape()
	height, width, channels := shape[0], shape[1], 1
	if rank == 3 {
		channels = shape[2]
	}
	rect := image.Rect(0, 0, width, height)

	switch channels {
	case 1:
		return &Image{Image: &image.Gray{Pix: px, Stride: width, Rect: rect}, Channels: 1}, nil
	case 2:
		// Go has no gray+alpha image type, so this layout is widened to
		// RGBA and written out as such.
		img := image.NewNRGBA(rect)
		for i := 0; i < width*height; i++ {
			g, a := px[i*2], px[i*2+1]
			copy(img.Pix[i*4:], []uint8{g, g, g, a})
		}
		return &Image{Image: img, Channels: 2}, nil
	case 3:
		img := image.NewNRGBA(rect)
		for i := 0; i < width*height; i++ {
			copy(img.Pix[i*4:], []uint8{px[i*3], px[i*3+1], px[i*3+2], 0xff})
		}
		return &Image{Image: img, Channels: 3}, nil
	case 4:
		return &Image{Image: &image.NRGBA{Pix: px, Stride: width * 4, Rect: rect}, Channels: 4}, nil
	default:
		return nil, errors.ChannelCount(errors.PhaseEncode, channels)
	}
}

func channelBytes(v value.Value) ([]uint8, error) {
	switch v.Kind() {
	case value.KindNum:
		nums := v.Nums()
		out := make([]uint8, len(nums))
		for i, f := range nums {
			out[i] = numChannel(f)
		}
		return out, nil
	case value.KindByte:
		bs := v.Bytes()
		out := make([]uint8, len(bs))
		for i, b := range bs {
			out[i] = min(b.Or(0), 1) * 255
		}
		return out, nil
	default:
		return nil, errors.TypeMismatch(errors.PhaseEncode, "Image must be a numeric array")
	}
}

func numChannel(f float64) uint8 {
	x := math.Floor(f * 255)
	if !(x > 0) {
		return 0
	}
	if x >= 255 {
		return 255
	}
	return uint8(x)
}

// EncodeImageBytes encodes v and serializes it in the given format.
func EncodeImageBytes(v value.Value, format Format) ([]byte, error) {
	img, err := EncodeImage(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch format {
	case FormatJPEG:
		err = jpeg.Encode(&buf, img.Image, &jpeg.Options{Quality: JPEGQuality})
	case FormatBMP:
		err = bmp.Encode(&buf, img.Image)
	case FormatGIF:
		err = gif.Encode(&buf, img.Image, nil)
	case FormatICO:
		err = ico.Encode(&buf, img.Image)
	default:
		err = png.Encode(&buf, img.Image)
	}
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "Failed to write image")
	}
	return buf.Bytes(), nil
}

// DecodeImage decodes any registered image format into a byte array
// shaped [height, width, 4] holding non-premultiplied RGBA.
func DecodeImage(data []byte) (value.Value, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return value.Value{}, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "Failed to read image")
	}

	b := src.Bounds()
	rgba, ok := src.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) || rgba.Stride != b.Dx()*4 {
		rgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	}

	bs := make([]value.Byte, len(rgba.Pix))
	for i, p := range rgba.Pix {
		bs[i] = value.B(p)
	}
	out, err := value.NewBytes([]int{b.Dy(), b.Dx(), 4}, bs)
	if err != nil {
		panic(fmt.Sprintf("decoded image buffer inconsistent with bounds: %v", err))
	}
	return out, nil
}
