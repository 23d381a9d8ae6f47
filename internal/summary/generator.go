// Package summary renders the post-refresh PNG artifact. Generation is
// best-effort: callers log and swallow failures, never propagate them.
package summary

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	artifactName = "summary.png"

	imageWidth  = 800
	imageHeight = 600
)

// TopCountry is one of the highest-GDP entries rendered on the artifact.
type TopCountry struct {
	Name         string
	EstimatedGDP decimal.Decimal
}

// Data is the input contract for one artifact render.
type Data struct {
	TotalCountries int64
	TopCountries   []TopCountry
	LastRefreshed  time.Time
}

// Generator writes the summary artifact to a well-known location.
type Generator interface {
	Generate(data Data) error
	ArtifactPath() string
}

type pngGenerator struct {
	cacheDir string
}

func NewGenerator(cacheDir string) Generator {
	return &pngGenerator{cacheDir: cacheDir}
}

func (g *pngGenerator) ArtifactPath() string {
	return filepath.Join(g.cacheDir, artifactName)
}

// Generate renders the artifact and replaces any prior one atomically,
// so readers of the artifact path never observe a partial file.
func (g *pngGenerator) Generate(data Data) error {
	img := image.NewRGBA(image.Rect(0, 0, imageWidth, imageHeight))
	drawGradient(img)

	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}

	white := image.NewUniform(color.White)

	title, err := newFace(fnt, 32)
	if err != nil {
		return err
	}
	drawCentered(img, title, white, "Country Currency Summary", 60)

	body, err := newFace(fnt, 24)
	if err != nil {
		return err
	}
	drawCentered(img, body, white, fmt.Sprintf("Total Countries: %d", data.TotalCountries), 110)

	heading, err := newFace(fnt, 26)
	if err != nil {
		return err
	}
	drawCentered(img, heading, white, "Top 5 Countries by Estimated GDP", 170)

	list, err := newFace(fnt, 18)
	if err != nil {
		return err
	}
	y := 220
	for i, country := range data.TopCountries {
		line := fmt.Sprintf("%d. %s - %s", i+1, country.Name, formatUSD(country.EstimatedGDP))
		drawAt(img, list, white, line, 50, y)
		y += 40
	}

	footer, err := newFace(fnt, 16)
	if err != nil {
		return err
	}
	drawCentered(img, footer, white,
		fmt.Sprintf("Last Refreshed: %s", data.LastRefreshed.Format("1/2/2006, 3:04:05 PM")),
		imageHeight-40)

	return g.write(img)
}

func (g *pngGenerator) write(img image.Image) error {
	if err := os.MkdirAll(g.cacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(g.cacheDir, artifactName+".*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), g.ArtifactPath())
}

func newFace(fnt *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build %gpt face: %w", size, err)
	}
	return face, nil
}

func drawGradient(img *image.RGBA) {
	top := color.RGBA{R: 0x1e, G: 0x3a, B: 0x8a, A: 0xff}
	bottom := color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		t := float64(y-bounds.Min.Y) / float64(bounds.Dy())
		line := color.RGBA{
			R: lerp(top.R, bottom.R, t),
			G: lerp(top.G, bottom.G, t),
			B: lerp(top.B, bottom.B, t),
			A: 0xff,
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetRGBA(x, y, line)
		}
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

func drawCentered(img *image.RGBA, face font.Face, src *image.Uniform, text string, y int) {
	drawer := &font.Drawer{Dst: img, Src: src, Face: face}
	width := drawer.MeasureString(text)
	drawer.Dot = fixed.Point26_6{
		X: (fixed.I(imageWidth) - width) / 2,
		Y: fixed.I(y),
	}
	drawer.DrawString(text)
}

func drawAt(img *image.RGBA, face font.Face, src *image.Uniform, text string, x, y int) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  src,
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}

// formatUSD renders a whole-dollar figure with thousands separators.
func formatUSD(amount decimal.Decimal) string {
	digits := amount.Round(0).String()
	negative := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	if negative {
		return "-$" + b.String()
	}
	return "$" + b.String()
}
