package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
)

// Image formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// NormalizeFormat resolves an explicit format or, when empty, infers it from
// path's extension. Unknown extensions default to PNG.
func NormalizeFormat(format, path string) (string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".svg":
			format = FormatSVG
		default:
			format = FormatPNG
		}
	}
	if format != FormatPNG && format != FormatSVG {
		return "", fmt.Errorf("unsupported format %q (want png or svg)", format)
	}
	return format, nil
}

// Encode writes the scene in the given format.
func (s *Scene) Encode(w io.Writer, format string) error {
	switch format {
	case FormatPNG:
		return s.encodePNG(w)
	case FormatSVG:
		return s.encodeSVG(w)
	default:
		return fmt.Errorf("unsupported format %q (want png or svg)", format)
	}
}

// DataURL renders the scene as a base64 data URL.
func (s *Scene) DataURL(format string) (string, error) {
	var buf bytes.Buffer
	if err := s.Encode(&buf, format); err != nil {
		return "", err
	}
	mime := "image/png"
	if format == FormatSVG {
		mime = "image/svg+xml"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Save writes the scene to path, creating parent directories.
func (s *Scene) Save(path, format string) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Encode(file, format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (s *Scene) encodePNG(w io.Writer) error {
	dc := gg.NewContext(s.Width, s.Height)
	dc.SetFontFace(basicfont.Face7x13)

	for _, sh := range s.shapes {
		switch sh.kind {
		case shapeRect:
			dc.DrawRectangle(sh.x, sh.y, sh.w, sh.h)
			fillStroke(dc, sh)
		case shapePolygon:
			tracePath(dc, sh)
			dc.ClosePath()
			fillStroke(dc, sh)
		case shapePolyline:
			tracePath(dc, sh)
			fillStroke(dc, sh)
		case shapeText:
			dc.SetHexColor(sh.fill)
			dc.DrawStringAnchored(sh.text, sh.x, sh.y, sh.anchor, 0)
		}
	}
	return dc.EncodePNG(w)
}

func tracePath(dc *gg.Context, sh shape) {
	dc.NewSubPath()
	for i, p := range sh.points {
		if i == 0 {
			dc.MoveTo(p.X, p.Y)
			continue
		}
		dc.LineTo(p.X, p.Y)
	}
}

func fillStroke(dc *gg.Context, sh shape) {
	if sh.fill != "" {
		dc.SetHexColor(sh.fill)
		dc.FillPreserve()
	}
	if sh.stroke != "" {
		dc.SetHexColor(sh.stroke)
		dc.SetLineWidth(sh.width)
		dc.StrokePreserve()
	}
	dc.ClearPath()
}

func (s *Scene) encodeSVG(w io.Writer) error {
	canvas := svg.New(w)
	canvas.Start(s.Width, s.Height)
	for _, sh := range s.shapes {
		switch sh.kind {
		case shapeRect:
			canvas.Rect(px(sh.x), px(sh.y), px(sh.w), px(sh.h), style(sh))
		case shapePolygon:
			xs, ys := coords(sh)
			canvas.Polygon(xs, ys, style(sh))
		case shapePolyline:
			xs, ys := coords(sh)
			canvas.Polyline(xs, ys, style(sh))
		case shapeText:
			canvas.Text(px(sh.x), px(sh.y), sh.text,
				fmt.Sprintf("fill:%s;font-size:%gpx;font-family:monospace;text-anchor:%s", sh.fill, sh.size, textAnchor(sh.anchor)))
		}
	}
	canvas.End()
	return nil
}

func coords(sh shape) ([]int, []int) {
	xs := make([]int, len(sh.points))
	ys := make([]int, len(sh.points))
	for i, p := range sh.points {
		xs[i], ys[i] = px(p.X), px(p.Y)
	}
	return xs, ys
}

func style(sh shape) string {
	fill := "none"
	if sh.fill != "" {
		fill = sh.fill
	}
	if sh.stroke == "" {
		return "fill:" + fill
	}
	return fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%g", fill, sh.stroke, sh.width)
}

func textAnchor(a float64) string {
	switch {
	case a >= 1:
		return "end"
	case a > 0:
		return "middle"
	default:
		return "start"
	}
}

func px(v float64) int {
	return int(math.Round(v))
}
