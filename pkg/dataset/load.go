package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadError reports a dataset file that could not be read or decoded.
type LoadError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load dataset %q: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Load reads a dataset from a YAML or JSON file. Numeric columns must
// already be numbers in the document; numeric strings are rejected.
func Load(path string) (*DataSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}

	ds, err := Decode(data)
	if err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}
	return ds, nil
}

// Decode parses a YAML or JSON document into a DataSet.
func Decode(data []byte) (*DataSet, error) {
	var ds DataSet
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	if ds.Clients == nil {
		ds.Clients = []Client{}
	}
	if ds.Workers == nil {
		ds.Workers = []Worker{}
	}
	if ds.Tasks == nil {
		ds.Tasks = []Task{}
	}
	return &ds, nil
}

// Save writes the dataset to path. Files ending in .json are written as
// indented JSON, everything else as YAML.
func Save(path string, ds *DataSet) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(ds, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	} else {
		data, err = yaml.Marshal(ds)
	}
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write dataset %q: %w", path, err)
	}
	return nil
}
