// Package nodesig validates the opaque-blob parameter a signature may
// carry (types.ParamKindBytes) against a caller-declared JSON schema,
// grounded on the teacher's schema-validator node executor. A node that
// accepts an opaque blob parameter registers a schema once, through
// pkg/evaluator's RegisterBlobSchema; every evaluation pass then runs the
// blob in the node's fresh Signature through Validator.Validate before the
// cache lookup, so a malformed blob fails the node instead of producing a
// cache key that can never match a future, corrected blob.
package nodesig

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Validator checks an opaque blob's JSON-encoded form against a single
// compiled schema. It is immutable after construction and safe for
// concurrent use (gojsonschema.Schema itself is read-only after load).
type Validator struct {
	schema *gojsonschema.Schema
	strict bool
}

// Config controls how New builds a Validator.
type Config struct {
	// Schema is the JSON Schema document a blob must satisfy, as a
	// decoded map or any value json.Marshal accepts.
	Schema interface{}

	// Strict, when true, makes Validate return an error on the first
	// schema violation. When false (the default), Validate succeeds and
	// instead returns the list of violations for the caller to inspect.
	Strict bool
}

// New compiles cfg.Schema into a Validator. Returns an error if the
// schema itself is not valid JSON Schema.
func New(cfg Config) (*Validator, error) {
	schemaBytes, err := json.Marshal(cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("nodesig: encoding schema: %w", err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("nodesig: compiling schema: %w", err)
	}
	return &Validator{schema: schema, strict: cfg.Strict}, nil
}

// Violation describes a single schema mismatch.
type Violation struct {
	Field       string
	Description string
}

// Validate checks blob (the raw bytes of a types.ParamKindBytes value,
// expected to be JSON-encoded) against the compiled schema. In
// non-strict mode it returns (violations, nil) on a schema mismatch,
// reserving a non-nil error for blobs that are not even valid JSON or
// for I/O-level validator failures. In strict mode any mismatch is
// returned as an error instead.
func (v *Validator) Validate(blob []byte) ([]Violation, error) {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(blob))
	if err != nil {
		return nil, fmt.Errorf("nodesig: validating blob: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	violations := make([]Violation, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, Violation{Field: e.Field(), Description: e.Description()})
	}

	if v.strict {
		return violations, fmt.Errorf("nodesig: blob violates schema: %d violation(s), first: %s", len(violations), violations[0].Description)
	}
	return violations, nil
}
