package dataset

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/philipparndt/gobbox/pkg/geometry"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNoImages is returned when a folder contains no supported images
var ErrNoImages = errors.New("no images found")

// LabelExt is the extension of label files stored next to their image
const LabelExt = ".txt"

var imageExts = []string{"jpg", "jpeg", "png", "webp", "bmp", "tif", "tiff"}

// IsImageFile checks if a file has a supported image extension
func IsImageFile(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	for _, imgExt := range imageExts {
		if ext == imgExt {
			return true
		}
	}
	return false
}

// ListImages returns the images directly inside dir, sorted by name
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsImageFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoImages)
	}

	sort.Strings(files)
	return files, nil
}

// LabelPath returns the label file belonging to an image: same folder,
// same base name, .txt extension
func LabelPath(imagePath string) string {
	return LabelPathIn(filepath.Dir(imagePath), imagePath)
}

// LabelPathIn returns the label file of an image inside another folder
func LabelPathIn(dir, imagePath string) string {
	base := filepath.Base(imagePath)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+LabelExt)
}

// ImageSize reads the pixel dimensions of an image without decoding it
func ImageSize(path string) (geometry.Size, error) {
	file, err := os.Open(path)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return geometry.Size{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return geometry.NewSize(float64(cfg.Width), float64(cfg.Height)), nil
}

// LoadImage decodes an image. With maxSide > 0 the image is scaled down
// to fit a maxSide square for display; label geometry always refers to
// the full size reported by ImageSize.
func LoadImage(path string, maxSide int) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	b := img.Bounds()
	if maxSide > 0 && (b.Dx() > maxSide || b.Dy() > maxSide) {
		img = imaging.Fit(img, maxSide, maxSide, imaging.Linear)
	}
	return img, nil
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if err != nil {
		return false
	}
	return info.IsDir()
}
