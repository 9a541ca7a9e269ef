package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema of devsetup.yaml.
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{
		ExpandedStruct:             true,
		FieldNameTag:               "yaml",
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
	}
	sch := r.Reflect(&Config{})
	sch.Title = "devsetup configuration"
	sch.Description = "devsetup.yaml: project layout, toolchain versions and browser lookup."
	return sch
}

// MarshalSchema indents the schema to JSON bytes.
func MarshalSchema(sch *jsonschema.Schema) ([]byte, error) {
	return json.MarshalIndent(sch, "", "  ")
}
