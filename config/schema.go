package config

import (
	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of the configuration file.
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	schema := r.Reflect(&Config{})
	schema.Title = "localplanner"
	schema.Description = "Local planner configuration for car-like vehicles"
	return schema
}
