package query_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kernelql/kernelql/config"
	"github.com/kernelql/kernelql/internal/vfs"
	"github.com/kernelql/kernelql/kernel"
	"github.com/kernelql/kernelql/options"
	"github.com/kernelql/kernelql/pkg/log"
	"github.com/kernelql/kernelql/query"
	"github.com/kernelql/kernelql/spice"
)

const (
	configRoot = "/etc/kernelql/db"
	dataRoot   = "/isis_data"

	ckIDWord   = "DAF/CK  "
	spkIDWord  = "DAF/SPK "
	sclkIDWord = "KPL/SCLK"
	lskIDWord  = "KPL/LSK "
	fkIDWord   = "KPL/FK  "
	ikIDWord   = "KPL/IK  "
)

const mroConfig = `{
	"mro": {
		"ck": {
			"reconstructed": {"kernels": ["mro/kernels/ck/mro_sc_psp_.*\\.bc$"]},
			"predicted": {"kernels": "mro/kernels/ck/mro_sc_pred_.*\\.bc$"},
			"deps": {
				"sclk": ["mro/kernels/sclk/MRO_SCLKSCET\\.[0-9]{5}\\.65536\\.tsc$"],
				"objs": ["/base/pck"]
			}
		},
		"spk": {
			"reconstructed": {"kernels": ["mro/kernels/spk/mro_psp[0-9]+\\.bsp$"]}
		},
		"sclk": {"kernels": ["mro/kernels/sclk/MRO_SCLKSCET\\.[0-9]{5}\\.65536\\.tsc$"]},
		"fk": {"kernels": ["mro/kernels/fk/mro_v[0-9]{2}\\.tf$"]}
	},
	"ctx": {
		"ik": {"kernels": "mro/kernels/ik/mro_ctx_v[0-9]{2}\\.ti$"}
	}
}`

const baseConfig = `{
	"base": {
		"lsk": {"kernels": "base/kernels/lsk/naif[0-9]{4}\\.tls$"}
	}
}`

var dataFiles = map[string]string{
	"mro/kernels/ck/mro_sc_psp_090101_090107.bc":    ckIDWord,
	"mro/kernels/ck/mro_sc_psp_090108_090114.bc":    ckIDWord,
	"mro/kernels/ck/mro_sc_pred_090101.bc":          ckIDWord,
	"mro/kernels/spk/mro_psp1.bsp":                  spkIDWord,
	"mro/kernels/spk/mro_psp2.bsp":                  spkIDWord,
	"mro/kernels/sclk/MRO_SCLKSCET.00090.65536.tsc": sclkIDWord,
	"mro/kernels/sclk/MRO_SCLKSCET.00091.65536.tsc": sclkIDWord,
	"mro/kernels/fk/mro_v15.tf":                     fkIDWord,
	"mro/kernels/fk/mro_v16.tf":                     fkIDWord,
	"mro/kernels/ik/mro_ctx_v11.ti":                 ikIDWord,
	"base/kernels/lsk/naif0011.tls":                 lskIDWord,
	"base/kernels/lsk/naif0012.tls":                 lskIDWord,
	"unrelated/readme.txt":                          "nothing",
}

type fixture struct {
	fs     vfs.FS
	opts   *options.Options
	store  *spice.MemoryStore
	pool   *kernel.Pool
	engine *query.Engine
}

func newFixture(t *testing.T, configs map[string]string) *fixture {
	t.Helper()

	fs := vfs.NewMemMapFS()

	for name, content := range configs {
		require.NoError(t, vfs.WriteFile(fs, filepath.Join(configRoot, name), []byte(content), 0644))
	}

	require.NoError(t, vfs.WriteFile(fs, filepath.Join(configRoot, "kernels", "naif0011.tls"), []byte(lskIDWord), 0644))

	for name, content := range dataFiles {
		require.NoError(t, vfs.WriteFile(fs, dataPath(name), []byte(content), 0644))
	}

	opts := options.NewOptions()
	opts.FS = fs
	opts.ConfigDir = configRoot
	opts.DataDirs = []string{"/missing", dataRoot}
	opts.Logger = log.New(log.WithLevel(log.ErrorLevel))
	opts.Parallelism = 4

	store := spice.NewMemoryStore(fs)
	pool := kernel.NewPool(store, opts.Logger)

	return &fixture{
		fs:     fs,
		opts:   opts,
		store:  store,
		pool:   pool,
		engine: query.NewEngine(opts, config.NewStore(opts), pool),
	}
}

func dataPath(name string) string {
	return filepath.Join(dataRoot, name)
}

func dataPaths(names ...string) []string {
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, dataPath(name))
	}

	return paths
}

func strs(t *testing.T, doc *config.Node, ptr string) []string {
	t.Helper()

	node, ok := doc.At(config.Pointer(ptr))
	require.True(t, ok, "missing %s in %s", ptr, doc)

	vals, err := node.Strings()
	require.NoError(t, err)

	return vals
}
