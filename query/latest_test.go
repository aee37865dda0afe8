package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kernelql/kernelql/config"
	"github.com/kernelql/kernelql/query"
)

func TestLatestKernel(t *testing.T) {
	t.Parallel()

	latest, err := query.LatestKernel([]string{"iak.0001.ti", "iak.0003.ti", "different/place/iak.0002.ti", "test/iak.0004.ti"})
	require.NoError(t, err)
	assert.Equal(t, "test/iak.0004.ti", latest)

	_, err = query.LatestKernel([]string{"iak.0001.ti", "iak.0003.ti", "test/error.tf"})
	require.ErrorAs(t, err, new(config.InvalidArgumentError))

	_, err = query.LatestKernel(nil)
	require.ErrorAs(t, err, new(config.InvalidArgumentError))
}

func TestLatestKernels(t *testing.T) {
	t.Parallel()

	catalog := config.MustParse(`{
		"mro": {
			"ck": {
				"reconstructed": {"kernels": ["ck/a_0001.bc", "ck/a_0003.bc", "ck/a_0002.bc"]},
				"smithed": {"kernels": []},
				"deps": {"sclk": ["sclk/mro.00090.tsc", "sclk/mro.00091.tsc"], "objs": ["/base/pck"]}
			},
			"fk": {"kernels": ["fk/mro_v15.tf", "fk/mro_v16.tf"]},
			"sclk": {"kernels": ["sclk/mro.00090.tsc", "sclk/mro.00091.tsc"]}
		}
	}`)

	latest, err := query.LatestKernels(catalog)
	require.NoError(t, err)

	assert.Equal(t, []string{"ck/a_0003.bc"}, strs(t, latest, "/mro/ck/reconstructed/kernels"))
	assert.Equal(t, []string{}, strs(t, latest, "/mro/ck/smithed/kernels"))
	assert.Equal(t, []string{"sclk/mro.00091.tsc"}, strs(t, latest, "/mro/ck/deps/sclk"))
	assert.Equal(t, []string{"/base/pck"}, strs(t, latest, "/mro/ck/deps/objs"))
	assert.Equal(t, []string{"fk/mro_v16.tf"}, strs(t, latest, "/mro/fk/kernels"))
	assert.Equal(t, []string{"sclk/mro.00091.tsc"}, strs(t, latest, "/mro/sclk/kernels"))

	assert.Len(t, strs(t, catalog, "/mro/fk/kernels"), 2)
}

func TestLatestKernelsMixedExtensions(t *testing.T) {
	t.Parallel()

	_, err := query.LatestKernels(config.MustParse(`{"mro": {"fk": {"kernels": ["fk/mro_v15.tf", "fk/mro_v16.ti"]}}}`))
	require.ErrorAs(t, err, new(config.InvalidArgumentError))
}
