package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultSplits are the dataset subsets images can be moved into
var DefaultSplits = []string{"train", "val", "test"}

// MoveToSplit moves an image and its label file into <dir>/<split>/.
// A missing label file is not an error. It returns the new image path.
func MoveToSplit(imagePath, split string) (string, error) {
	if split == "" || split != filepath.Base(split) {
		return "", fmt.Errorf("invalid split name %q", split)
	}
	return moveInto(imagePath, filepath.Join(filepath.Dir(imagePath), split))
}

// Trash moves an image and its label file into trashDir, relative to
// the image folder unless absolute
func Trash(imagePath, trashDir string) (string, error) {
	if !filepath.IsAbs(trashDir) {
		trashDir = filepath.Join(filepath.Dir(imagePath), trashDir)
	}
	return moveInto(imagePath, trashDir)
}

func moveInto(imagePath, targetDir string) (string, error) {
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", targetDir, err)
	}

	target := filepath.Join(targetDir, filepath.Base(imagePath))
	if FileExists(target) {
		return "", fmt.Errorf("%s already exists", target)
	}

	if err := os.Rename(imagePath, target); err != nil {
		return "", fmt.Errorf("failed to move image: %w", err)
	}

	label := LabelPath(imagePath)
	err := os.Rename(label, LabelPathIn(targetDir, imagePath))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return target, fmt.Errorf("failed to move label file: %w", err)
	}

	return target, nil
}
