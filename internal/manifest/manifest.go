// Package manifest reads resource manifests: JSON or YAML maps of path to
// content hash, or the RESOURCES table of a generated service worker script.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/huangsam/swcache/schema"
)

// Format is a manifest file format.
type Format string

// Supported manifest formats.
const (
	FormatJSON          Format = "json"
	FormatYAML          Format = "yaml"
	FormatServiceWorker Format = "js"
)

// Loaded is a parsed manifest plus anything else the file declared.
type Loaded struct {
	Manifest  schema.Manifest
	CacheName string // Cache name declared by a service worker, if any
	Format    Format
}

// ErrUnknownFormat is returned for file extensions no parser handles.
var ErrUnknownFormat = errors.New("unknown manifest format")

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".js", ".mjs":
		return FormatServiceWorker, nil
	default:
		return "", fmt.Errorf("%w: %q (use .json, .yaml, .yml or .js)", ErrUnknownFormat, path)
	}
}

// Load reads and validates the manifest at path.
func Load(path string) (Loaded, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Loaded{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	loaded, err := Parse(format, data)
	if err != nil {
		return Loaded{}, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return loaded, nil
}

// Parse decodes and validates manifest bytes of the given format.
func Parse(format Format, data []byte) (Loaded, error) {
	loaded := Loaded{Format: format}
	var err error
	switch format {
	case FormatJSON:
		loaded.Manifest, err = parseJSON(data)
	case FormatYAML:
		loaded.Manifest, err = parseYAML(data)
	case FormatServiceWorker:
		loaded.Manifest, loaded.CacheName, err = parseServiceWorker(data)
	default:
		return Loaded{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return Loaded{}, err
	}
	if err := loaded.Manifest.Validate(); err != nil {
		return Loaded{}, err
	}
	return loaded, nil
}

func parseJSON(data []byte) (schema.Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var m map[string]string
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return schema.Manifest(m), nil
}

func parseYAML(data []byte) (schema.Manifest, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	m := make(schema.Manifest, len(raw))
	for path, value := range raw {
		hash, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("hash for %q must be a string, got %T", path, value)
		}
		m[path] = hash
	}
	return m, nil
}

var (
	resourcesDecl = regexp.MustCompile(`(?:const|let|var)\s+RESOURCES\s*=\s*\{`)
	cacheNameDecl = regexp.MustCompile(`(?:const|let|var)\s+CACHE_NAME\s*=\s*(?:'([^']*)'|"([^"]*)")`)
	trailingComma = regexp.MustCompile(`,\s*}$`)
)

// parseServiceWorker pulls the RESOURCES object literal and CACHE_NAME out of
// a generated service worker. Literals that are not plain JSON, such as ones
// with single-quoted strings, are read as a YAML flow mapping.
func parseServiceWorker(data []byte) (schema.Manifest, string, error) {
	src := string(data)

	loc := resourcesDecl.FindStringIndex(src)
	if loc == nil {
		return nil, "", errors.New("no RESOURCES declaration found in service worker")
	}
	literal, err := objectLiteral(src, loc[1]-1)
	if err != nil {
		return nil, "", err
	}
	literal = trailingComma.ReplaceAllString(literal, "}")

	m, err := parseJSON([]byte(literal))
	if err != nil {
		if m, err = parseYAML([]byte(literal)); err != nil {
			return nil, "", fmt.Errorf("failed to parse RESOURCES: %w", err)
		}
	}

	var cacheName string
	if match := cacheNameDecl.FindStringSubmatch(src); match != nil {
		cacheName = match[1] + match[2]
	}
	return m, cacheName, nil
}

// objectLiteral returns the balanced {...} text starting at open, skipping
// braces inside quoted strings.
func objectLiteral(src string, open int) (string, error) {
	depth := 0
	var quote byte
	for i := open; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return src[open : i+1], nil
			}
		}
	}
	return "", errors.New("unterminated RESOURCES object literal")
}
