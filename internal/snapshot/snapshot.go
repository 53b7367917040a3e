// Package snapshot exports and imports a todo list as JSON, YAML or CBOR.
// Imports are projected through the same schema as the initial load.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/todolist/internal/loader"
	"github.com/idilsaglam/todolist/internal/model"
)

type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CBOR Format = "cbor"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("snapshot: CBOR encoder initialization failed: " + err.Error())
	}
	// map[string]any so decoded values re-encode as JSON
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("snapshot: CBOR decoder initialization failed: " + err.Error())
	}
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "cbor":
		return CBOR, nil
	}
	return "", fmt.Errorf("unknown format %q (want json, yaml or cbor)", s)
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return JSON
	}
	return f
}

// Encode writes recs to w in format f.
func Encode(w io.Writer, f Format, recs []model.Record) error {
	if recs == nil {
		recs = []model.Record{}
	}
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(recs); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
		return enc.Close()
	case CBOR:
		b, err := encMode.Marshal(recs)
		if err != nil {
			return fmt.Errorf("cbor encode: %w", err)
		}
		_, err = w.Write(b)
		return err
	}
	return fmt.Errorf("unknown format %q", f)
}

// Decode reads records in format f from r, validating them like any other
// incoming list.
func Decode(r io.Reader, f Format) ([]model.Record, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var doc any
	switch f {
	case JSON:
		return loader.Project(b)
	case YAML:
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("yaml decode: %w", err)
		}
	case CBOR:
		if err := decMode.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("cbor decode: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("re-encode %s: %w", f, err)
	}
	return loader.Project(raw)
}
