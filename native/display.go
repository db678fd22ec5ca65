package native

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/term"

	"github.com/wippyai/arrayio/capability"
)

const (
	fallbackCols = 80
	fallbackRows = 24

	// alpha below this is drawn as background
	alphaCutoff = 128
)

// TerminalDisplay draws images into the terminal with half-block
// characters, two pixel rows per text row.
type TerminalDisplay struct {
	out capability.Console
	// Profile forces a colour profile; nil detects it from stdout.
	Profile *termenv.Profile
	// Width and Height cap the drawing area in cells. Zero uses the
	// terminal size.
	Width  int
	Height int
}

// NewTerminalDisplay creates a display that prints through out.
func NewTerminalDisplay(out capability.Console) *TerminalDisplay {
	return &TerminalDisplay{out: out}
}

func (d *TerminalDisplay) ShowImage(ctx context.Context, img image.Image) error {
	cols, rows := d.size()
	scaled := FitImage(img, cols, (rows-1)*2)
	Logger().Debug("display image",
		zap.Int("src_width", img.Bounds().Dx()),
		zap.Int("src_height", img.Bounds().Dy()),
		zap.Int("width", scaled.Bounds().Dx()),
		zap.Int("height", scaled.Bounds().Dy()))
	d.out.Print(ctx, RenderHalfBlocks(scaled, d.renderer()))
	return nil
}

func (d *TerminalDisplay) size() (int, int) {
	cols, rows := d.Width, d.Height
	if cols <= 0 || rows <= 0 {
		w, h, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || w <= 0 || h <= 0 {
			w, h = fallbackCols, fallbackRows
		}
		if cols <= 0 {
			cols = w
		}
		if rows <= 0 {
			rows = h
		}
	}
	if rows < 2 {
		rows = 2
	}
	return cols, rows
}

func (d *TerminalDisplay) renderer() *lipgloss.Renderer {
	if d.Profile != nil {
		return lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(*d.Profile))
	}
	return lipgloss.DefaultRenderer()
}

// FitImage scales img so its long edge fills the maxW x maxH box while
// keeping the aspect ratio. Enlarging uses nearest neighbour and
// shrinking uses Catmull-Rom.
func FitImage(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 || maxW <= 0 || maxH <= 0 {
		return img
	}

	nw, nh := maxW, h*maxW/w
	if nh > maxH {
		nw, nh = w*maxH/h, maxH
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	if nw == w && nh == h {
		return img
	}

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	var scaler draw.Interpolator = draw.CatmullRom
	if nw > w {
		scaler = draw.NearestNeighbor
	}
	scaler.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// RenderHalfBlocks renders img using the upper half block for the top pixel
// of each cell and the cell background for the bottom one. Transparent
// pixels are left unpainted.
func RenderHalfBlocks(img image.Image, r *lipgloss.Renderer) string {
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top, topOK := pixel(img, x, y)
			var bottom color.NRGBA
			bottomOK := false
			if y+1 < b.Max.Y {
				bottom, bottomOK = pixel(img, x, y+1)
			}

			switch {
			case topOK && bottomOK:
				sb.WriteString(r.NewStyle().
					Foreground(hex(top)).
					Background(hex(bottom)).
					Render("▀"))
			case topOK:
				sb.WriteString(r.NewStyle().Foreground(hex(top)).Render("▀"))
			case bottomOK:
				sb.WriteString(r.NewStyle().Foreground(hex(bottom)).Render("▄"))
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func pixel(img image.Image, x, y int) (color.NRGBA, bool) {
	c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	return c, c.A >= alphaCutoff
}

func hex(c color.NRGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
