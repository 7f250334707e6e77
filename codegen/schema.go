package codegen

import (
	"github.com/go-kratos/canvas"
	"github.com/google/jsonschema-go/jsonschema"
)

// Signature describes the generated unit's declared interface as a pair of
// JSON schemas, for callers that expose the composition as an invokable
// unit.
type Signature struct {
	Input  *jsonschema.Schema `json:"input"`
	Output *jsonschema.Schema `json:"output"`
}

// Signature derives JSON schemas for the result's inputs and outputs.
func (r *Result) Signature() *Signature {
	input := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(r.Inputs)),
	}
	for _, in := range r.Inputs {
		input.Properties[in.Name] = portSchema(in.Type, in.Description)
		if in.Required {
			input.Required = append(input.Required, in.Name)
		}
	}
	output := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(r.Outputs)),
	}
	for _, out := range r.Outputs {
		output.Properties[out.Name] = portSchema(out.Type, out.Description)
	}
	return &Signature{Input: input, Output: output}
}

// portSchema maps a port type onto a JSON schema. Types with no JSON
// counterpart (any, function, predicate) stay unconstrained.
func portSchema(t canvas.PortType, description string) *jsonschema.Schema {
	s := &jsonschema.Schema{Description: description}
	switch t {
	case canvas.TypeString:
		s.Type = "string"
	case canvas.TypeNumber:
		s.Type = "number"
	case canvas.TypeBoolean:
		s.Type = "boolean"
	case canvas.TypeObject:
		s.Type = "object"
	case canvas.TypeArray, canvas.TypeCollection:
		s.Type = "array"
	}
	return s
}
