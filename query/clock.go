package query

import (
	"context"
	"path/filepath"

	"github.com/kernelql/kernelql/config"
	"github.com/kernelql/kernelql/internal/errors"
	"github.com/kernelql/kernelql/internal/vfs"
	"github.com/kernelql/kernelql/kernel"
)

const (
	baseMission        = "base"
	distributedKernels = "kernels"
	leapSecondsExt     = ".tls"
)

var leapSecondsPointer = config.NewPointer(baseMission, kernel.TypeLSK.String(), config.KernelsKey)

// LoadTimeKernels furnishes the spacecraft clock kernels of every mission together with the leap
// seconds kernel shipped next to the configs, so that time conversions work before any catalog
// query. The caller owns the returned set.
func (engine *Engine) LoadTimeKernels(ctx context.Context) (*kernel.Set, error) {
	ctx = engine.withTelemetry(ctx)

	docs, err := engine.configs.AvailableConfigs(ctx)
	if err != nil {
		return nil, err
	}

	clocks := config.NewObject()

	for _, doc := range docs {
		for _, ptr := range config.FindKey(doc, kernel.TypeSCLK.String(), true) {
			node, _ := doc.At(ptr)
			if !node.IsObject() || !node.Has(config.KernelsKey) {
				continue
			}

			if err := clocks.SetAt(ptr, node.Clone()); err != nil {
				return nil, err
			}

			break
		}
	}

	catalog := config.NewObject()

	if clocks.Len() > 0 {
		if catalog, err = engine.Search(ctx, clocks); err != nil {
			return nil, err
		}
	}

	lsk, err := engine.distributedLeapSeconds()
	if err != nil {
		return nil, err
	}

	if lsk != "" {
		if err := catalog.SetAt(leapSecondsPointer, config.NewStrings([]string{lsk})); err != nil {
			return nil, err
		}
	} else {
		engine.logger.Warnf("No leap seconds kernel found in %s", distributedKernels)
	}

	return engine.pool.LoadClockKernels(ctx, catalog)
}

// WithLeapSeconds runs fn with the latest base leap seconds kernel furnished. When the data root has
// none, the kernel shipped next to the configs is used.
func (engine *Engine) WithLeapSeconds(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx = engine.withTelemetry(ctx)

	path, err := engine.leapSeconds(ctx)
	if err != nil {
		return err
	}

	lsk, err := kernel.NewAt(ctx, engine.pool, path, leapSecondsPointer)
	if err != nil {
		return err
	}

	err = fn(ctx)

	if closeErr := lsk.Close(ctx); closeErr != nil {
		return errors.Join(err, closeErr)
	}

	return err
}

func (engine *Engine) leapSeconds(ctx context.Context) (string, error) {
	base, err := engine.configs.MissionConfig(ctx, baseMission)
	if err == nil {
		lskNode, ok := base.At(leapSecondsPointer.Parent())
		if ok {
			conf := config.NewObject()
			if err := conf.SetAt(leapSecondsPointer.Parent(), lskNode); err != nil {
				return "", err
			}

			catalog, err := engine.Search(ctx, conf)
			if err != nil {
				return "", err
			}

			if paths, _ := catalog.At(leapSecondsPointer); paths != nil && paths.Len() > 0 {
				found, err := paths.Strings()
				if err != nil {
					return "", err
				}

				return LatestKernel(found)
			}
		}
	} else if !errors.As(err, new(config.InvalidArgumentError)) {
		return "", err
	}

	path, err := engine.distributedLeapSeconds()
	if err != nil {
		return "", err
	}

	if path == "" {
		return "", errors.New(config.NotFoundError{Pointer: leapSecondsPointer})
	}

	return path, nil
}

// distributedLeapSeconds returns the latest leap seconds kernel in the kernels directory of the config
// root, or an empty string when there is none.
func (engine *Engine) distributedLeapSeconds() (string, error) {
	root, err := engine.opts.ConfigRoot()
	if err != nil {
		return "", err
	}

	files, err := vfs.List(engine.opts.FS, filepath.Join(root, distributedKernels), false)
	if err != nil {
		return "", err
	}

	var candidates []string

	for _, file := range files {
		if filepath.Ext(file) == leapSecondsExt {
			candidates = append(candidates, file)
		}
	}

	if len(candidates) == 0 {
		return "", nil
	}

	return LatestKernel(candidates)
}
