package mapper

import (
	"sync"

	"github.com/invopop/jsonschema"

	"captainhub.app/relay/internal/domain"
)

var (
	uesSchemaOnce sync.Once
	uesSchema     *jsonschema.Schema
)

// UESSchema returns the JSON Schema of the unified event document.
func UESSchema() *jsonschema.Schema {
	uesSchemaOnce.Do(func() {
		reflector := jsonschema.Reflector{
			AllowAdditionalProperties: false,
			DoNotReference:            true,
		}
		uesSchema = reflector.Reflect(&domain.UnifiedEvent{})
		uesSchema.Title = "Unified Event"
		uesSchema.Description = "Canonical form of one tracker webhook delivery, schema_version " + domain.UESVersion
	})
	return uesSchema
}
