package thumbs

import (
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gobwas/glob"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
)

// ImagePattern is the extension allow-list, matched against lower-cased names.
const ImagePattern = "*.{png,jpg,jpeg,bmp,gif}"

var imageGlob = glob.MustCompile(ImagePattern)

// IsImage reports whether name carries an allow-listed image extension.
func IsImage(name string) bool {
	return imageGlob.Match(strings.ToLower(name))
}

// Decode opens an image file, applies its EXIF orientation and scales it to
// fit within edge pixels. It returns the thumbnail and the original size.
func Decode(path string, edge int) (image.Image, image.Point, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, image.Point{}, err
	}
	return Fit(img, edge), img.Bounds().Size(), nil
}

// Fit scales src down so neither side exceeds edge. Smaller images are
// returned unchanged.
func Fit(src image.Image, edge int) image.Image {
	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if edge <= 0 || (width <= edge && height <= edge) {
		return src
	}

	var scale float64
	if width > height {
		scale = float64(edge) / float64(width)
	} else {
		scale = float64(edge) / float64(height)
	}

	newWidth := max(int(float64(width)*scale), 1)
	newHeight := max(int(float64(height)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
