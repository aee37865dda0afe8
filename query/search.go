package query

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kernelql/kernelql/config"
	"github.com/kernelql/kernelql/internal/telemetry"
	"github.com/kernelql/kernelql/kernel"
	"github.com/kernelql/kernelql/pkg/log"
)

// searchTypes is the order in which per-type results are merged into the catalog.
var searchTypes = []kernel.Type{
	kernel.TypeCK, kernel.TypeSPK, kernel.TypeTSPK, kernel.TypeFK, kernel.TypeIK,
	kernel.TypeIAK, kernel.TypePCK, kernel.TypeLSK, kernel.TypeSCLK,
}

// SearchMissionKernels resolves every bucket of conf against the files under root. The catalog keeps
// the shape of conf: kernels and deps.sclk/deps.pck patterns become the matching paths, deps.objs is
// copied, and everything else is left out.
func (engine *Engine) SearchMissionKernels(ctx context.Context, root string, conf *config.Node) (*config.Node, error) {
	ctx = engine.withTelemetry(ctx)

	catalog := config.NewObject()

	attrs := map[string]any{"root": root}

	err := telemetry.TelemeterFromContext(ctx).Collect(ctx, "search_mission_kernels", attrs, func(ctx context.Context) error {
		if _, err := engine.resolver.List(ctx, root); err != nil {
			return err
		}

		partials := make([]*config.Node, len(searchTypes))

		group, ctx := errgroup.WithContext(ctx)
		group.SetLimit(engine.parallelism())

		for i, typ := range searchTypes {
			group.Go(func() error {
				partial, err := engine.globKernels(ctx, root, conf, typ)
				if err != nil {
					return err
				}

				partials[i] = partial

				return nil
			})
		}

		if err := group.Wait(); err != nil {
			return err
		}

		for _, partial := range partials {
			config.MergePatch(catalog, partial)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	engine.logger.WithField("root", root).Debugf("Resolved %d kernels", len(KernelList(catalog)))

	return catalog, nil
}

// globKernels resolves the buckets keyed typ.
func (engine *Engine) globKernels(ctx context.Context, root string, conf *config.Node, typ kernel.Type) (*config.Node, error) {
	partial := config.NewObject()

	for _, ptr := range config.FindKey(conf, typ.String(), true) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		node, _ := conf.At(ptr)

		bucket, ok, err := ReadBucket(ptr, node)
		if err != nil {
			return nil, err
		}

		if !ok {
			continue
		}

		err = bucket.Each(func(ptr config.Pointer, _ kernel.Quality, group *Group) error {
			resolved, err := engine.resolveGroup(ctx, root, group)
			if err != nil {
				return err
			}

			engine.logger.WithField(log.FieldKeyPointer, ptr.String()).Tracef("Resolved %d kernels", len(resolved.Kernels))

			return resolved.write(partial, ptr)
		})
		if err != nil {
			return nil, err
		}
	}

	return partial, nil
}

func (engine *Engine) resolveGroup(ctx context.Context, root string, group *Group) (*Group, error) {
	resolved := &Group{}

	var err error

	if group.Kernels != nil {
		if resolved.Kernels, err = engine.resolver.ExpandPatterns(ctx, root, group.Kernels); err != nil {
			return nil, err
		}
	}

	if group.Deps == nil {
		return resolved, nil
	}

	deps := &Deps{Objs: group.Deps.Objs}

	if group.Deps.SCLK != nil {
		if deps.SCLK, err = engine.resolver.ExpandPatterns(ctx, root, group.Deps.SCLK); err != nil {
			return nil, err
		}
	}

	if group.Deps.PCK != nil {
		if deps.PCK, err = engine.resolver.ExpandPatterns(ctx, root, group.Deps.PCK); err != nil {
			return nil, err
		}
	}

	if deps.SCLK != nil || deps.PCK != nil || deps.Objs != nil {
		resolved.Deps = deps
	}

	return resolved, nil
}
