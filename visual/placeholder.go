package visual

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	placeholderWidth  = 512
	placeholderHeight = 512
	footerLabel       = "PLACEHOLDER"
)

// backgroundColorFromSeed derives a saturated, legible background color
// deterministically from the character's seed: seed mod 12 picks one of
// 12 palette colors, none of them near-black or near-white. Seeds that
// are congruent mod 12 share a color.
func backgroundColorFromSeed(seed uint32) color.RGBA {
	palette := []color.RGBA{
		{230, 126, 34, 255},  // orange
		{41, 128, 185, 255},  // blue
		{39, 174, 96, 255},   // green
		{142, 68, 173, 255},  // purple
		{192, 57, 43, 255},   // red
		{22, 160, 133, 255},  // teal
		{211, 84, 0, 255},    // burnt orange
		{44, 62, 80, 255},    // slate
		{243, 156, 18, 255},  // amber
		{127, 140, 141, 255}, // gray
		{155, 89, 182, 255},  // violet
		{46, 204, 113, 255},  // emerald
	}
	return palette[int(seed%uint32(len(palette)))]
}

// initials extracts up to two uppercase initials from a character name,
// e.g. "Harry Potter" -> "HP", "Dobby" -> "D".
func initials(name string) string {
	fields := strings.Fields(name)
	var out []rune
	for _, f := range fields {
		r := []rune(f)
		if len(r) == 0 {
			continue
		}
		out = append(out, r[0])
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return strings.ToUpper(string(out))
}

// contrastingTextColor picks black or white text, whichever reads more
// clearly against bg, using the standard relative-luminance heuristic.
func contrastingTextColor(bg color.RGBA) color.RGBA {
	luminance := 0.299*float64(bg.R) + 0.587*float64(bg.G) + 0.114*float64(bg.B)
	if luminance > 140 {
		return color.RGBA{0, 0, 0, 255}
	}
	return color.RGBA{255, 255, 255, 255}
}

// drawCenteredString draws s with face, centered horizontally around
// centerX at baseline y, in the given color.
func drawCenteredString(img draw.Image, face font.Face, s string, centerX, y int, c color.RGBA) {
	width := font.MeasureString(face, s).Ceil()
	start := centerX - width/2

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(start), Y: fixed.I(y)},
	}
	drawer.DrawString(s)
}

// GeneratePlaceholder renders a deterministic PNG bitmap for a character:
// a solid background color derived from seed, the character's initials
// in contrasting text (the 7x13 basicfont face), and a footer label marking it as a
// placeholder rather than a real generated portrait.
func GeneratePlaceholder(name string, seed uint32) ([]byte, error) {
	bg := backgroundColorFromSeed(seed)
	fg := contrastingTextColor(bg)

	img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	// Stamp the initials one pixel apart in each direction to fake a
	// heavier, more legible weight; basicfont has no native scaling.
	for _, offset := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		drawCenteredString(img, face, initials(name), placeholderWidth/2+offset[0], placeholderHeight/2+offset[1], fg)
	}
	drawCenteredString(img, face, footerLabel, placeholderWidth/2, placeholderHeight-20, fg)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
