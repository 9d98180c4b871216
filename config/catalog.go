package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	schemagen "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"excavation/game"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// CatalogSchema reflects the JSON schema of the catalog file from game.Catalog.
func CatalogSchema() *schemagen.Schema {
	reflector := schemagen.Reflector{
		AllowAdditionalProperties: false,
	}
	schema := reflector.Reflect(new(game.Catalog))
	schema.Title = "Excavation economy catalog"
	schema.Description = "Costs, scaling, attack prices and milestone ladder"
	return schema
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func catalogValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		raw, err := json.Marshal(CatalogSchema())
		if err != nil {
			compileErr = fmt.Errorf("marshal catalog schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("catalog.schema.json", bytes.NewReader(raw)); err != nil {
			compileErr = fmt.Errorf("add catalog schema: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("catalog.schema.json")
	})
	return compiledSchema, compileErr
}

// LoadCatalog reads the catalog at path, or the embedded default when path is empty.
func LoadCatalog(path string) (*game.Catalog, error) {
	raw := defaultCatalog
	name := "catalog.yaml"
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		raw, name = b, path
	}
	return ParseCatalog(name, raw)
}

// ParseCatalog decodes raw YAML, checks it against the reflected schema and
// then against the semantic rules in game.Catalog.Validate.
func ParseCatalog(name string, raw []byte) (*game.Catalog, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	// Round trip through JSON so the validator sees JSON-native types.
	js, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	var generic any
	if err := json.Unmarshal(js, &generic); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	validator, err := catalogValidator()
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(generic); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	var c game.Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &c, nil
}
