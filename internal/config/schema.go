package config

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/devcontainer.schema.json
var devcontainerSchemaJSON string

var loadSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(devcontainerSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("bundled devcontainer schema must compile: %w", err)
	}
	return schema, nil
})

// validateDocument checks the parsed document against the bundled schema.
// All violations are aggregated into a single ConfigError.
//
// The schema expresses the image/dockerFile choice as a root-level oneOf.
// A document whose only violation is that top-level disjunction is still
// accepted: legitimate documents can satisfy overlapping sub-schemas there.
func validateDocument(path string, document []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return configErrorf(path, "invalid devcontainer.json: %v", err)
	}
	if result.Valid() {
		return nil
	}

	violations := result.Errors()
	onlyRootOneOf := len(violations) > 0
	for _, violation := range violations {
		if violation.Type() != "number_one_of" || violation.Field() != "(root)" {
			onlyRootOneOf = false
			break
		}
	}
	if onlyRootOneOf {
		return nil
	}

	messages := make([]string, 0, len(violations))
	for _, violation := range violations {
		messages = append(messages, violation.String())
	}
	return configErrorf(path, "invalid devcontainer.json: %s", strings.Join(messages, "; "))
}
