package loader

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/idilsaglam/todolist/internal/model"
)

//go:embed todolist.schema.json
var schemaJSON []byte

const schemaURL = "todolist.schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// ValidationError is one schema violation.
type ValidationError struct {
	Path string // e.g. 0.title
	Msg  string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Msg)
	}
	return e.Msg
}

// SchemaError lists every violation found in a payload.
type SchemaError struct {
	Problems []*ValidationError
}

func (e *SchemaError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Error())
	}
	return "invalid todo list: " + strings.Join(msgs, "; ")
}

// Project validates raw JSON against the todo list schema and keeps only
// id, title and completed from each entry. Extra fields are dropped and
// ids must be unique.
func Project(raw []byte) ([]model.Record, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, schemaError(err)
	}

	var recs []model.Record
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if recs == nil {
		recs = []model.Record{}
	}
	if err := checkUniqueIDs(recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// checkUniqueIDs reports every record whose id was already used by an
// earlier one. Removal and edits address tasks by id, so a list may not
// hold the same id twice.
func checkUniqueIDs(recs []model.Record) error {
	first := make(map[int64]int, len(recs))
	out := &SchemaError{}
	for i, r := range recs {
		if j, ok := first[r.ID]; ok {
			out.Problems = append(out.Problems, &ValidationError{
				Path: fmt.Sprintf("%d.id", i),
				Msg:  fmt.Sprintf("duplicate id %d (first used at %d)", r.ID, j),
			})
			continue
		}
		first[r.ID] = i
	}
	if len(out.Problems) > 0 {
		return out
	}
	return nil
}

func schemaError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	out := &SchemaError{}
	collect(out, ve)
	return out
}

func collect(out *SchemaError, ve *jsonschema.ValidationError) {
	if len(ve.Causes) == 0 {
		out.Problems = append(out.Problems, &ValidationError{
			Path: pointerToPath(ve.InstanceLocation),
			Msg:  ve.Message,
		})
		return
	}
	for _, cause := range ve.Causes {
		collect(out, cause)
	}
}

func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	return strings.ReplaceAll(ptr, "/", ".")
}
