package config_test

import (
	"encoding/json"
	"testing"

	"github.com/kernelql/kernelql/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreservesMemberOrder(t *testing.T) {
	t.Parallel()

	doc, err := config.Parse([]byte(`{"spk": 1, "ck": {"smithed": [], "predicted": null}, "fk": "x"}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"spk", "ck", "fk"}, doc.Keys())

	ck, ok := doc.Get("ck")
	require.True(t, ok)
	assert.Equal(t, []string{"smithed", "predicted"}, ck.Keys())
	assert.Equal(t, `{"spk":1,"ck":{"smithed":[],"predicted":null},"fk":"x"}`, doc.String())
}

func TestParseRejectsTrailingData(t *testing.T) {
	t.Parallel()

	_, err := config.Parse([]byte(`{"a": 1} {"b": 2}`))
	require.Error(t, err)

	_, err = config.Parse([]byte(`{"a": `))
	require.Error(t, err)
}

func TestNodeStrings(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		doc      string
		expected []string
		wantErr  bool
	}{
		{name: "single pattern", doc: `"lro_clkcor_[0-9]{7}_v[0-9]{2}.tsc"`, expected: []string{"lro_clkcor_[0-9]{7}_v[0-9]{2}.tsc"}},
		{name: "pattern list", doc: `["soc31.*.bc", "lrolc.*.bc"]`, expected: []string{"soc31.*.bc", "lrolc.*.bc"}},
		{name: "empty list", doc: `[]`, expected: []string{}},
		{name: "mixed list", doc: `["a.bc", 1]`, wantErr: true},
		{name: "object", doc: `{"kernels": "a.bc"}`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			strs, err := config.MustParse(tc.doc).Strings()
			if tc.wantErr {
				var argErr config.InvalidArgumentError
				require.ErrorAs(t, err, &argErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, strs)
		})
	}
}

func TestNodeAtAndSetAt(t *testing.T) {
	t.Parallel()

	doc := config.MustParse(`{"moc": {"ck": {"reconstructed": {"kernels": ["a.bc", "b.bc"]}}}}`)

	kernel, ok := doc.At("/moc/ck/reconstructed/kernels/1")
	require.True(t, ok)
	text, _ := kernel.Text()
	assert.Equal(t, "b.bc", text)

	_, ok = doc.At("/moc/spk")
	assert.False(t, ok)

	require.NoError(t, doc.SetAt("/moc/spk/smithed/kernels", config.NewStrings([]string{"c.bsp"})))
	assert.Equal(t, `{"moc":{"ck":{"reconstructed":{"kernels":["a.bc","b.bc"]}},"spk":{"smithed":{"kernels":["c.bsp"]}}}}`, doc.String())

	err := doc.SetAt("/moc/ck/reconstructed/kernels/0/x", config.NewNull())
	var argErr config.InvalidArgumentError
	require.ErrorAs(t, err, &argErr)
}

func TestNodeCloneIsIndependent(t *testing.T) {
	t.Parallel()

	doc := config.MustParse(`{"ck": {"kernels": ["a.bc"]}}`)
	clone := doc.Clone()

	require.NoError(t, clone.SetAt("/ck/kernels", config.NewString("b.bc")))

	assert.Equal(t, `{"ck":{"kernels":["a.bc"]}}`, doc.String())
	assert.Equal(t, `{"ck":{"kernels":"b.bc"}}`, clone.String())
}

func TestNodeJSONRoundTripThroughStdlib(t *testing.T) {
	t.Parallel()

	var holder struct {
		Catalog *config.Node `json:"catalog"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"catalog": {"z": 1.5, "a": [true, null]}}`), &holder))
	assert.Equal(t, []string{"z", "a"}, holder.Catalog.Keys())

	data, err := json.Marshal(holder)
	require.NoError(t, err)
	assert.JSONEq(t, `{"catalog": {"z": 1.5, "a": [true, null]}}`, string(data))
}
