package native

import (
	"context"
	"image"
	"image/color"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

type captureConsole struct {
	out strings.Builder
}

func (c *captureConsole) Print(_ context.Context, s string) { c.out.WriteString(s) }

func plainRenderer() *lipgloss.Renderer {
	return lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.Ascii))
}

func opaque(v uint8) color.NRGBA { return color.NRGBA{R: v, G: v, B: v, A: 255} }

func TestRenderHalfBlocks(t *testing.T) {
	transparent := color.NRGBA{}
	tests := []struct {
		name   string
		pixels [][]color.NRGBA
		want   string
	}{
		{
			name:   "both opaque",
			pixels: [][]color.NRGBA{{opaque(10), opaque(20)}, {opaque(30), opaque(40)}},
			want:   "▀▀\n",
		},
		{
			name:   "transparency",
			pixels: [][]color.NRGBA{{transparent, opaque(1), transparent}, {opaque(2), transparent, transparent}},
			want:   "▄▀ \n",
		},
		{
			name:   "odd height",
			pixels: [][]color.NRGBA{{opaque(1)}, {opaque(2)}, {opaque(3)}},
			want:   "▀\n▀\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, w := len(tt.pixels), len(tt.pixels[0])
			img := image.NewNRGBA(image.Rect(0, 0, w, h))
			for y, row := range tt.pixels {
				for x, c := range row {
					img.SetNRGBA(x, y, c)
				}
			}
			if got := RenderHalfBlocks(img, plainRenderer()); got != tt.want {
				t.Errorf("RenderHalfBlocks = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderHalfBlocks_TrueColor(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	r := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.TrueColor))

	got := RenderHalfBlocks(img, r)
	if !strings.Contains(got, "▀") || !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected coloured half block, got %q", got)
	}
}

func TestFitImage(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		maxW, maxH int
		wantW      int
		wantH      int
	}{
		{"enlarge wide", 2, 1, 80, 46, 80, 40},
		{"enlarge tall", 1, 4, 80, 20, 5, 20},
		{"shrink square", 100, 100, 10, 40, 10, 10},
		{"exact", 8, 8, 8, 8, 8, 8},
		{"never zero", 1000, 1, 10, 10, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewGray(image.Rect(0, 0, tt.w, tt.h))
			got := FitImage(img, tt.maxW, tt.maxH).Bounds()
			if got.Dx() != tt.wantW || got.Dy() != tt.wantH {
				t.Errorf("FitImage = %dx%d, want %dx%d", got.Dx(), got.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestTerminalDisplay_ShowImage(t *testing.T) {
	console := &captureConsole{}
	d := NewTerminalDisplay(console)
	profile := termenv.Ascii
	d.Profile = &profile
	d.Width, d.Height = 4, 3

	img := image.NewGray(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	if err := d.ShowImage(context.Background(), img); err != nil {
		t.Fatalf("ShowImage: %v", err)
	}
	want := "▀▀▀▀\n▀▀▀▀\n"
	if console.out.String() != want {
		t.Errorf("output = %q, want %q", console.out.String(), want)
	}
}
