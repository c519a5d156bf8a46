package yolo

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadLabelNames reads the class names of a dataset. Two formats are
// understood: a plain text file with one name per line (classes.txt) and
// an ultralytics dataset description (data.yaml) whose "names" key is
// either a list or an index map.
func LoadLabelNames(filename string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return loadDatasetYAML(filename)
	default:
		return loadClassesText(filename)
	}
}

func loadClassesText(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var names []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filename, err)
	}
	return names, nil
}

type datasetFile struct {
	Names yaml.Node `yaml:"names"`
}

func loadDatasetYAML(filename string) ([]string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var ds datasetFile
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	switch ds.Names.Kind {
	case yaml.SequenceNode:
		var names []string
		if err := ds.Names.Decode(&names); err != nil {
			return nil, fmt.Errorf("invalid names in %s: %w", filename, err)
		}
		return names, nil

	case yaml.MappingNode:
		var indexed map[int]string
		if err := ds.Names.Decode(&indexed); err != nil {
			return nil, fmt.Errorf("invalid names in %s: %w", filename, err)
		}
		ids := make([]int, 0, len(indexed))
		for id := range indexed {
			if id < 0 {
				return nil, fmt.Errorf("invalid label id %d in %s", id, filename)
			}
			ids = append(ids, id)
		}
		sort.Ints(ids)
		if len(ids) == 0 {
			return nil, nil
		}
		names := make([]string, ids[len(ids)-1]+1)
		for _, id := range ids {
			names[id] = indexed[id]
		}
		return names, nil

	case 0:
		return nil, fmt.Errorf("%s has no names key", filename)

	default:
		return nil, fmt.Errorf("unsupported names format in %s", filename)
	}
}

// ValidateEntries checks that every label id indexes names and that the
// geometry is within the normalized range. All problems are returned.
func ValidateEntries(entries []Entry, names []string) []error {
	var problems []error
	for i, e := range entries {
		if e.LabelID < 0 || (names != nil && e.LabelID >= len(names)) {
			problems = append(problems, fmt.Errorf("entry %d: unknown label id %d", i, e.LabelID))
		}
		for _, v := range []float64{e.CX, e.CY, e.W, e.H} {
			if v < 0 || v > 1 {
				problems = append(problems, fmt.Errorf("entry %d: value %v outside [0,1]", i, v))
				break
			}
		}
	}
	return problems
}

// LabelName returns the display name for a label id, falling back to the
// number when no name is known
func LabelName(names []string, id int) string {
	if id >= 0 && id < len(names) && names[id] != "" {
		return names[id]
	}
	return fmt.Sprintf("%d", id)
}
