package canvas

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// DecodeDocumentYAML parses a YAML composition document. The YAML tree is
// normalized through the JSON codec so both formats share one set of field
// names.
func DecodeDocumentYAML(data []byte) (*Document, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	b, err := json.Marshal(tree)
	if err != nil {
		return nil, err
	}
	return DecodeDocument(b)
}
