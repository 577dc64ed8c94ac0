package report

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// ErrFigureClosed is returned when drawing on or encoding a closed Figure.
var ErrFigureClosed = errors.New("report: figure is closed")

// FigureOptions sets the physical size and resolution of a figure.
type FigureOptions struct {
	// WidthIn and HeightIn are the figure size in inches.
	WidthIn  float64
	HeightIn float64
	// DPI converts inches and font points to pixels.
	DPI float64
}

// DefaultFigureOptions is a 12x8 inch figure at 300 DPI.
func DefaultFigureOptions() FigureOptions {
	return FigureOptions{WidthIn: 12, HeightIn: 8, DPI: 300}
}

// Figure is a drawing canvas with its fonts. Every Figure must be closed;
// Close releases the font faces and makes further use return ErrFigureClosed.
type Figure struct {
	dc    *gg.Context
	opt   FigureOptions
	faces map[string]font.Face
}

// font roles and their sizes in points.
var faceSizes = map[string]struct {
	ttf  []byte
	size float64
}{
	"title": {gobold.TTF, 16},
	"label": {goregular.TTF, 12},
	"tick":  {goregular.TTF, 10},
	"value": {gobold.TTF, 10},
}

// NewFigure allocates a canvas of opt.WidthIn*opt.DPI by opt.HeightIn*opt.DPI
// pixels and loads its fonts.
func NewFigure(opt FigureOptions) (*Figure, error) {
	if opt.WidthIn <= 0 || opt.HeightIn <= 0 || opt.DPI <= 0 {
		return nil, fmt.Errorf("report: invalid figure size %vx%v in at %v dpi", opt.WidthIn, opt.HeightIn, opt.DPI)
	}
	w := int(opt.WidthIn * opt.DPI)
	h := int(opt.HeightIn * opt.DPI)

	fig := &Figure{dc: gg.NewContext(w, h), opt: opt, faces: make(map[string]font.Face, len(faceSizes))}
	for role, fs := range faceSizes {
		face, err := loadFont(fs.ttf, fs.size, opt.DPI)
		if err != nil {
			fig.Close()
			return nil, fmt.Errorf("report: load %s font: %w", role, err)
		}
		fig.faces[role] = face
	}
	return fig, nil
}

// Size returns the canvas size in pixels.
func (f *Figure) Size() (w, h int) {
	if f.dc == nil {
		return 0, 0
	}
	return f.dc.Width(), f.dc.Height()
}

// Image returns the rendered image, or nil once closed.
func (f *Figure) Image() image.Image {
	if f.dc == nil {
		return nil
	}
	return f.dc.Image()
}

// WritePNG encodes the canvas as PNG to w.
func (f *Figure) WritePNG(w io.Writer) error {
	if f.dc == nil {
		return ErrFigureClosed
	}
	return f.dc.EncodePNG(w)
}

// Close releases the fonts and the canvas. It is safe to call more than once.
func (f *Figure) Close() error {
	var errs []error
	for role, face := range f.faces {
		if err := face.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s font: %w", role, err))
		}
	}
	f.faces = nil
	f.dc = nil
	return errors.Join(errs...)
}

// px converts a length in inches to pixels.
func (f *Figure) px(in float64) float64 { return in * f.opt.DPI }

// loadFont loads a TrueType font at size points for the given resolution.
func loadFont(ttf []byte, size, dpi float64) (font.Face, error) {
	ft, err := truetype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(ft, &truetype.Options{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	}), nil
}
