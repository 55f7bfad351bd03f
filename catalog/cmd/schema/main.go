package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iancoleman/orderedmap"
	"github.com/invopop/jsonschema"

	"pipeworks/server/catalog"
)

// definitionKeyOrder is the field order designers see in editor tooling.
var definitionKeyOrder = []string{"id", "displayName", "bucketItem", "fillSound", "emptySound"}

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	schema := buildSchema()

	if err := writeSchema(outPath, schema); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(catalog.Document))
	schema.Title = "Pipeworks Fluid Catalog"
	schema.Description = "Validates designer-authored entries in config/fluids/catalog.json"

	if def, ok := schema.Definitions["Definition"]; ok {
		def.Properties = reorderProperties(def.Properties, definitionKeyOrder)
	}
	return schema
}

// reorderProperties rebuilds the property map so the preferred keys come
// first, keeping any remaining keys in their reflected order.
func reorderProperties(props *orderedmap.OrderedMap, preferred []string) *orderedmap.OrderedMap {
	if props == nil {
		return nil
	}
	ordered := orderedmap.New()
	for _, key := range preferred {
		if value, present := props.Get(key); present {
			ordered.Set(key, value)
		}
	}
	for _, key := range props.Keys() {
		if _, present := ordered.Get(key); !present {
			value, _ := props.Get(key)
			ordered.Set(key, value)
		}
	}
	return ordered
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
