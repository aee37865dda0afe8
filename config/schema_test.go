package config_test

import (
	"encoding/json"
	"testing"

	"github.com/kernelql/kernelql/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lroConfig = `{
	"moc": {
		"ck": {
			"reconstructed": {"kernels": ["soc31.*.bc", "lrolc.*.bc"]},
			"deps": {
				"sclk": ["lro_clkcor_[0-9]{7}_v[0-9]{2}.tsc"],
				"objs": ["/base/lsk", "/moc/sclk"]
			}
		},
		"spk": {
			"reconstructed": {"kernels": ["fdf29_[0-9]{7}_[0-9]{7}_[0-9]{3}.bsp"]},
			"smithed": {"kernels": "LRO_.*_GRGM660.*.bsp"}
		},
		"sclk": {"kernels": ["lro_clkcor_[0-9]{7}_v[0-9]{2}.tsc"]},
		"fk": {"kernels": ["lro_frames_[0-9]{7}_v[0-9]{2}.tf"]},
		"ik": {"kernels": ["lro_instruments_v[0-9]{2}.ti"]}
	},
	"lroc": {
		"ik": {"kernels": "lro_lroc_v[0-9]{2}.ti"},
		"deps": ["/moc"]
	}
}`

func TestValidateAcceptsMissionConfig(t *testing.T) {
	t.Parallel()

	require.NoError(t, config.Validate([]byte(lroConfig)))
}

func TestValidateRejectsInvalidDocuments(t *testing.T) {
	t.Parallel()

	testCases := map[string]string{
		"unknown quality":     `{"moc": {"ck": {"recon": {"kernels": "a.bc"}}}}`,
		"unknown kernel type": `{"moc": {"xk": {"kernels": "a.bc"}}}`,
		"numeric kernels":     `{"moc": {"ik": {"kernels": 7}}}`,
		"deps object":         `{"moc": {"deps": {"sclk": "a.tsc"}}}`,
	}

	for name, doc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := config.Validate([]byte(doc))

			var schemaErr config.SchemaValidationError
			require.ErrorAs(t, err, &schemaErr)
			assert.NotEmpty(t, schemaErr.Violations)
		})
	}
}

func TestSchemaDescribesQualities(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(config.Schema())
	require.NoError(t, err)

	for _, quality := range []string{"predicted", "nadir", "reconstructed", "smithed"} {
		assert.Contains(t, string(data), `"`+quality+`"`)
	}
}
