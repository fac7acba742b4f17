package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

const fixtureExt = ".json"

// ErrInvalidFixture is returned when a fixture is not valid JSON
var ErrInvalidFixture = errors.New("invalid fixture")

// Fixture is a recorded webhook payload
type Fixture struct {
	Name string // file name without extension, keys header lookups
	Path string
	Body []byte
}

// Load resolves selector against the integration's fixtures directory and
// reads the payload. A selector may name the fixture with or without its
// .json extension, or be a path to an existing file.
func Load(dir, selector string) (*Fixture, error) {
	path := ResolvePath(dir, selector)

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read fixture %s: %w", path, err)
	}

	if !gjson.ValidBytes(body) {
		var v any
		reason := "malformed JSON"
		if err := json.Unmarshal(body, &v); err != nil {
			reason = err.Error()
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidFixture, path, reason)
	}

	return &Fixture{
		Name: NameOf(path),
		Path: path,
		Body: body,
	}, nil
}

// ResolvePath maps a fixture selector to a file path
func ResolvePath(dir, selector string) string {
	if strings.ContainsRune(selector, filepath.Separator) || strings.ContainsRune(selector, '/') {
		if _, err := os.Stat(selector); err == nil {
			return selector
		}
	}

	name := selector
	if filepath.Ext(name) == "" {
		name += fixtureExt
	}
	return filepath.Join(dir, name)
}

// NameOf derives the fixture name from its path
func NameOf(path string) string {
	return strings.TrimSuffix(filepath.Base(path), fixtureExt)
}

// EventName returns the event a fixture records: the part of its name before
// the first double underscore (push__1_commit -> push)
func EventName(fixtureName string) string {
	event, _, _ := strings.Cut(fixtureName, "__")
	return event
}

// List returns the fixture names found in dir, sorted
func List(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+fixtureExt))
	if err != nil {
		return nil, err
	}

	var names []string
	for _, m := range matches {
		if strings.HasSuffix(m, headersExt) {
			continue
		}
		names = append(names, NameOf(m))
	}
	return names, nil
}
