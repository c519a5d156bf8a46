package dataset

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/philipparndt/gobbox/pkg/annotation"
	"github.com/philipparndt/gobbox/pkg/yolo"
)

// Problem is an issue found with the labels of one image
type Problem struct {
	Image string
	Err   error
}

func (p Problem) Error() string {
	return fmt.Sprintf("%s: %v", p.Image, p.Err)
}

// Report is the result of validating a folder
type Report struct {
	Images   int
	Labeled  int
	Boxes    int
	Problems []Problem
}

// ValidateFolder loads the label file of every image in dir into an
// annotation store and checks the raw entries against names. A nil names
// list skips the label id upper bound.
func ValidateFolder(dir string, names []string) (Report, error) {
	images, err := ListImages(dir)
	if err != nil {
		return Report{}, err
	}

	report := Report{Images: len(images)}
	store := annotation.NewStore()

	for _, img := range images {
		size, err := ImageSize(img)
		if err != nil {
			report.Problems = append(report.Problems, Problem{Image: img, Err: err})
			continue
		}

		labels := LabelPath(img)
		if err := store.LoadFromFile(labels, size); err != nil {
			report.Problems = append(report.Problems, Problem{Image: img, Err: err})
			continue
		}

		entries, err := yolo.ReadFile(labels)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			report.Problems = append(report.Problems, Problem{Image: img, Err: err})
			continue
		}

		report.Labeled++
		report.Boxes += store.Len()
		for _, perr := range yolo.ValidateEntries(entries, names) {
			report.Problems = append(report.Problems, Problem{Image: img, Err: perr})
		}
	}
	return report, nil
}
