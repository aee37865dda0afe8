package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/kernelql/kernelql/internal/errors"
	"github.com/xeipuuv/gojsonschema"
)

// Patterns is a single regular expression or a list of them.
type Patterns []string

// JSONSchema accepts both the string and the list form.
func (Patterns) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		},
	}
}

// KernelDeps lists the clock and planetary constants kernels a bucket depends on,
// plus references to other catalog objects.
type KernelDeps struct {
	SCLK Patterns `json:"sclk,omitempty"`
	PCK  Patterns `json:"pck,omitempty"`
	Objs []string `json:"objs,omitempty"`
}

// KernelGroup is one list of kernel patterns with its dependencies.
type KernelGroup struct {
	Kernels Patterns    `json:"kernels,omitempty"`
	Deps    *KernelDeps `json:"deps,omitempty"`
}

// KernelBucket describes the kernels of one type, either directly or split by quality.
type KernelBucket struct {
	Kernels       Patterns     `json:"kernels,omitempty"`
	Deps          *KernelDeps  `json:"deps,omitempty"`
	NA            *KernelGroup `json:"na,omitempty"`
	Predicted     *KernelGroup `json:"predicted,omitempty"`
	Nadir         *KernelGroup `json:"nadir,omitempty"`
	Reconstructed *KernelGroup `json:"reconstructed,omitempty"`
	Smithed       *KernelGroup `json:"smithed,omitempty"`
}

// InstrumentConfig is the kernel catalog of one spacecraft or instrument.
type InstrumentConfig struct {
	CK   *KernelBucket `json:"ck,omitempty"`
	SPK  *KernelBucket `json:"spk,omitempty"`
	TSPK *KernelBucket `json:"tspk,omitempty"`
	LSK  *KernelBucket `json:"lsk,omitempty"`
	MK   *KernelBucket `json:"mk,omitempty"`
	SCLK *KernelBucket `json:"sclk,omitempty"`
	IAK  *KernelBucket `json:"iak,omitempty"`
	IK   *KernelBucket `json:"ik,omitempty"`
	FK   *KernelBucket `json:"fk,omitempty"`
	DSK  *KernelBucket `json:"dsk,omitempty"`
	PCK  *KernelBucket `json:"pck,omitempty"`
	EK   *KernelBucket `json:"ek,omitempty"`
	// Deps references other instruments whose catalogs are merged into this one.
	Deps []string `json:"deps,omitempty"`
}

// MissionConfig is a mission configuration document keyed by instrument name.
type MissionConfig map[string]InstrumentConfig

// Schema returns the JSON schema of mission configuration documents.
func Schema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{DoNotReference: true, Anonymous: true}

	schema := reflector.Reflect(MissionConfig{})
	schema.Version = ""
	schema.Title = "kernelql mission config"

	return schema
}

// Validate checks a mission configuration document against Schema. Every violation is reported
// in a single SchemaValidationError.
func Validate(data []byte) error {
	schemaData, err := json.Marshal(Schema())
	if err != nil {
		return errors.New(err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaData), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return errors.New(err)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}

	return errors.New(SchemaValidationError{Violations: violations})
}
