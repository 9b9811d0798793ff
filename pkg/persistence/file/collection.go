package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var errInvalidID = errors.New("invalid record id")

// collection stores one JSON document per record under root/<name>/<id>.json.
type collection[T any] struct {
	root string
	name string
}

func newCollection[T any](root, name string) *collection[T] {
	return &collection[T]{root: root, name: name}
}

func (c *collection[T]) dir() string {
	return filepath.Join(c.root, c.name)
}

func (c *collection[T]) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("%w: %q", errInvalidID, id)
	}

	return filepath.Clean(filepath.Join(c.dir(), id+".json")), nil
}

// read returns nil, nil when the record does not exist.
func (c *collection[T]) read(id string) (*T, error) {
	filePath, err := c.path(id)
	if err != nil {
		return nil, err
	}

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch %s %s: %w", c.name, id, err)
	}

	var record T

	err = json.Unmarshal(body, &record)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s %s: %w", c.name, id, err)
	}

	return &record, nil
}

func (c *collection[T]) write(id string, record *T) error {
	filePath, err := c.path(id)
	if err != nil {
		return err
	}

	err = os.MkdirAll(c.dir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create %s directory: %w", c.name, err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", c.name, id, err)
	}

	// Write to a sibling file and rename so readers never observe a partial document.
	tmpPath := filePath + ".tmp"

	err = os.WriteFile(tmpPath, data, 0600)
	if err != nil {
		return fmt.Errorf("failed to write %s %s: %w", c.name, id, err)
	}

	err = os.Rename(tmpPath, filePath)
	if err != nil {
		return fmt.Errorf("failed to write %s %s: %w", c.name, id, err)
	}

	return nil
}

// remove deletes a record. Removing a missing record is not an error.
func (c *collection[T]) remove(id string) error {
	filePath, err := c.path(id)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s %s: %w", c.name, id, err)
	}

	return nil
}

func (c *collection[T]) all() ([]*T, error) {
	jsonFiles, err := fs.Glob(os.DirFS(c.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s files: %w", c.name, err)
	}

	records := make([]*T, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		record, err := c.read(strings.TrimSuffix(file, ".json"))
		if err != nil {
			return nil, err
		}

		if record != nil {
			records = append(records, record)
		}
	}

	return records, nil
}
