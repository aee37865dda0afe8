package config_test

import (
	"context"
	"testing"

	"github.com/kernelql/kernelql/config"
	"github.com/kernelql/kernelql/internal/vfs"
	"github.com/kernelql/kernelql/options"
	"github.com/kernelql/kernelql/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configRoot = "/etc/kernelql/db"

func newTestStore(t *testing.T, files map[string]string) (*config.Store, *options.Options) {
	t.Helper()

	fs := vfs.NewMemMapFS()
	require.NoError(t, fs.MkdirAll(configRoot, 0755))

	for name, content := range files {
		require.NoError(t, vfs.WriteFile(fs, configRoot+"/"+name, []byte(content), 0644))
	}

	opts := options.NewOptions()
	opts.FS = fs
	opts.ConfigDir = configRoot
	opts.Logger = log.New(log.WithLevel(log.ErrorLevel))

	return config.NewStore(opts), opts
}

func TestStoreLoadLaterFileWins(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t, map[string]string{
		"a_first.json":  `{"base": {"lsk": {"kernels": "naif0011.tls"}}, "mro": {"ck": {"kernels": "a.bc"}}}`,
		"b_second.json": `{"base": {"lsk": {"kernels": "naif0012.tls"}}}`,
		"notes.txt":     `not a config`,
	})

	ctx := context.Background()
	require.NoError(t, store.Load(ctx))

	assert.Equal(t, []string{configRoot + "/a_first.json", configRoot + "/b_second.json"}, store.Files())
	assert.Equal(t, configRoot, store.Root())

	lsk, err := store.Get("/base/lsk/kernels")
	require.NoError(t, err)
	text, _ := lsk.Text()
	assert.Equal(t, "naif0012.tls", text)

	_, err = store.Get("/mro/ck")
	require.NoError(t, err)

	_, err = store.Get("/lro")

	var notFoundErr config.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, config.Pointer("/lro"), notFoundErr.Pointer)

	assert.Equal(t, []config.Pointer{"/base/lsk/kernels", "/mro/ck/kernels"}, store.FindKey("kernels", true))
}

func TestStoreLoadRereadsChangedFiles(t *testing.T) {
	t.Parallel()

	store, opts := newTestStore(t, map[string]string{"mro.json": `{"mro": {"ck": {"kernels": "old.bc"}}}`})

	ctx := context.Background()
	require.NoError(t, store.Load(ctx))

	kernels, err := store.Get("/mro/ck/kernels")
	require.NoError(t, err)
	text, _ := kernels.Text()
	assert.Equal(t, "old.bc", text)

	require.NoError(t, vfs.WriteFile(opts.FS, configRoot+"/mro.json", []byte(`{"mro": {"ck": {"kernels": "new.bc"}}}`), 0644))
	require.NoError(t, store.Load(ctx))

	kernels, err = store.Get("/mro/ck/kernels")
	require.NoError(t, err)
	text, _ = kernels.Text()
	assert.Equal(t, "new.bc", text)
}

func TestStoreMissionConfigSeesRewrittenFile(t *testing.T) {
	t.Parallel()

	store, opts := newTestStore(t, map[string]string{"mro.json": `{"mro": {"ck": {"kernels": "a.bc"}}}`})

	ctx := context.Background()

	conf, err := store.MissionConfig(ctx, "mro")
	require.NoError(t, err)
	assert.False(t, conf.Has("lro"))

	require.NoError(t, vfs.WriteFile(opts.FS, configRoot+"/mro.json", []byte(`{"mro": {"ck": {"kernels": "a.bc"}}, "lro": {}}`), 0644))

	conf, err = store.MissionConfig(ctx, "mro")
	require.NoError(t, err)
	assert.True(t, conf.Has("lro"))
}

func TestStoreGetReturnsCopy(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t, map[string]string{"mro.json": `{"mro": {"ck": {"kernels": "a.bc"}}}`})
	require.NoError(t, store.Load(context.Background()))

	node, err := store.Get("/mro")
	require.NoError(t, err)
	require.NoError(t, node.SetAt("/ck/kernels", config.NewString("changed.bc")))

	assert.Equal(t, `{"mro":{"ck":{"kernels":"a.bc"}}}`, store.Raw().String())
}

func TestStoreLoadMissingRoot(t *testing.T) {
	t.Parallel()

	store, opts := newTestStore(t, nil)
	opts.ConfigDir = "/missing"

	var confErr options.ConfigurationError
	require.ErrorAs(t, store.Load(context.Background()), &confErr)
}

func TestStoreLoadInvalidDocument(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t, map[string]string{"broken.json": `{"mro": `})

	err := store.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.json")
}

func TestStoreMissionConfig(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t, map[string]string{
		"lro.json": lroConfig,
		"mro.json": `{"mro": {"ck": {"kernels": "a.bc"}}}`,
	})

	ctx := context.Background()

	path, err := store.MissionConfigFile(ctx, "lro")
	require.NoError(t, err)
	assert.Equal(t, configRoot+"/lro.json", path)

	conf, err := store.MissionConfig(ctx, "mro")
	require.NoError(t, err)
	assert.Equal(t, `{"mro":{"ck":{"kernels":"a.bc"}}}`, conf.String())

	_, err = store.MissionConfig(ctx, "cassini")

	var argErr config.InvalidArgumentError
	require.ErrorAs(t, err, &argErr)

	confs, err := store.AvailableConfigs(ctx)
	require.NoError(t, err)
	assert.Len(t, confs, 2)
}

func TestStoreInstrumentConfig(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t, map[string]string{"lro.json": lroConfig})
	ctx := context.Background()

	lroc, err := store.InstrumentConfig(ctx, "lroc")
	require.NoError(t, err)

	lro, err := store.MissionConfig(ctx, "lro")
	require.NoError(t, err)

	expected, _ := lro.Get("lroc")
	moc, _ := lro.Get("moc")
	require.NoError(t, config.Merge(expected, moc))
	config.EraseAt(expected, "/deps")

	requireSameDocument(t, expected.String(), lroc)

	_, err = store.InstrumentConfig(ctx, "hirise")

	var notFoundErr config.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestStoreEvaluate(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t, map[string]string{"lro.json": lroConfig})
	ctx := context.Background()
	require.NoError(t, store.Load(ctx))

	expand := func(_ context.Context, patterns *config.Node) ([]string, error) {
		strs, err := patterns.Strings()
		if err != nil {
			return nil, err
		}

		paths := make([]string, 0, len(strs))
		for _, str := range strs {
			paths = append(paths, "/data/"+str)
		}

		return paths, nil
	}

	eval, err := store.Evaluate(ctx, "/lroc", expand, false)
	require.NoError(t, err)
	assert.Equal(t, `{"lroc":{"ik":{"kernels":["/data/lro_lroc_v[0-9]{2}.ti"]},"deps":["/moc"]}}`, eval.String())

	raw, err := store.Get("/lroc/ik/kernels")
	require.NoError(t, err)
	assert.True(t, raw.IsString(), "evaluate without merge must not change the store")

	_, err = store.Evaluate(ctx, "/lroc", expand, true)
	require.NoError(t, err)

	merged, err := store.Get("/lroc/ik/kernels")
	require.NoError(t, err)
	assert.Equal(t, `["/data/lro_lroc_v[0-9]{2}.ti"]`, merged.String())
}

func TestStoreValidateAll(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t, map[string]string{
		"lro.json": lroConfig,
		"bad.json": `{"moc": {"ck": {"recon": {"kernels": "a.bc"}}}}`,
	})

	err := store.ValidateAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.NotContains(t, err.Error(), "lro:")
}

func TestLoad(t *testing.T) {
	t.Parallel()

	fs := vfs.NewMemMapFS()
	require.NoError(t, vfs.WriteFile(fs, "/a.json", []byte(`{"x": 1, "y": 2}`), 0644))
	require.NoError(t, vfs.WriteFile(fs, "/b.json", []byte(`{"x": 3}`), 0644))

	doc, err := config.Load(context.Background(), fs, "/a.json", "/b.json")
	require.NoError(t, err)
	assert.Equal(t, `{"x":3,"y":2}`, doc.String())
}
