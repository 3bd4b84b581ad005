package extract

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/extraction.schema.json
var schemaFS embed.FS

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// interchangeSchema compiles the embedded interchange schema once.
func interchangeSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := schemaFS.ReadFile("schema/extraction.schema.json")
		if err != nil {
			schemaErr = fmt.Errorf("failed to read embedded schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("extraction.schema.json", bytes.NewReader(raw)); err != nil {
			schemaErr = fmt.Errorf("failed to load interchange schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("extraction.schema.json")
	})
	return compiledSchema, schemaErr
}

// Parse validates data against the interchange schema and decodes it.
// Schema violations are configuration-class errors: the extraction
// collaborator produced a document this core cannot trust, so the job is
// rejected before any row is processed.
func Parse(data []byte) (*Document, error) {
	schema, err := interchangeSchema()
	if err != nil {
		return nil, err
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid interchange JSON: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("interchange document does not match schema: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode interchange document: %w", err)
	}
	return &doc, nil
}

// Load reads and parses an interchange document from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read interchange document: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
