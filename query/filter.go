package query

import (
	"context"
	"slices"

	"github.com/kernelql/kernelql/config"
	"github.com/kernelql/kernelql/internal/errors"
	"github.com/kernelql/kernelql/internal/telemetry"
	"github.com/kernelql/kernelql/internal/worker"
	"github.com/kernelql/kernelql/kernel"
	"github.com/kernelql/kernelql/pkg/log"
	"github.com/kernelql/kernelql/spice"
)

// filterTypes are the bucket types narrowed by FilterByTime.
var filterTypes = []kernel.Type{kernel.TypeCK, kernel.TypeSPK}

// FilterByTime narrows the ck and spk buckets of catalog to the files covering times. With contiguous
// set a file is kept when one of its intervals contains every time, otherwise when any time falls in
// any of its intervals. Deps and all other buckets are copied unchanged; a bucket left without files
// holds an empty list.
func (engine *Engine) FilterByTime(ctx context.Context, catalog *config.Node, times []float64, contiguous bool) (*config.Node, error) {
	ctx = engine.withTelemetry(ctx)

	if len(times) == 0 {
		return nil, errors.New(config.InvalidArgumentError("at least one query time is required"))
	}

	filtered := catalog.Clone()

	attrs := map[string]any{"times": len(times), "contiguous": contiguous}

	err := telemetry.TelemeterFromContext(ctx).Collect(ctx, "filter_by_time", attrs, func(ctx context.Context) error {
		var buckets []*Bucket

		for _, typ := range filterTypes {
			for _, ptr := range config.FindKey(catalog, typ.String(), true) {
				node, _ := catalog.At(ptr)

				bucket, ok, err := ReadBucket(ptr, node)
				if err != nil {
					return err
				}

				if ok {
					buckets = append(buckets, bucket)
				}
			}
		}

		if err := engine.fetchCoverage(ctx, buckets); err != nil {
			return err
		}

		for _, bucket := range buckets {
			err := bucket.Each(func(ptr config.Pointer, _ kernel.Quality, group *Group) error {
				if group.Kernels == nil {
					return nil
				}

				kept := make([]string, 0, len(group.Kernels))

				for _, path := range group.Kernels {
					intervals, _ := engine.coverage.Load(path)

					if covers(intervals, times, contiguous) && !slices.Contains(kept, path) {
						kept = append(kept, path)
					}
				}

				engine.logger.WithField(log.FieldKeyPointer, ptr.String()).Debugf("Kept %d of %d kernels", len(kept), len(group.Kernels))

				return filtered.SetAt(ptr.Child(config.KernelsKey), config.NewStrings(kept))
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return filtered, nil
}

// Coverage returns the coverage windows of the kernel at path, fetching them once per path.
func (engine *Engine) Coverage(ctx context.Context, path string) ([]spice.Interval, error) {
	ctx = engine.withTelemetry(ctx)

	if intervals, ok := engine.coverage.Load(path); ok {
		return intervals, nil
	}

	intervals, err := engine.pool.Intervals(ctx, path)
	if err != nil {
		return nil, err
	}

	engine.coverage.Store(path, intervals)

	return intervals, nil
}

// ForgetCoverage drops every cached coverage window.
func (engine *Engine) ForgetCoverage() {
	engine.coverage.Clear()
}

func (engine *Engine) fetchCoverage(ctx context.Context, buckets []*Bucket) error {
	seen := make(map[string]struct{})
	wp := worker.NewPool(engine.parallelism())

	for _, bucket := range buckets {
		_ = bucket.Each(func(_ config.Pointer, _ kernel.Quality, group *Group) error {
			for _, path := range group.Kernels {
				if _, ok := seen[path]; ok {
					continue
				}

				seen[path] = struct{}{}

				wp.Submit(ctx, func(ctx context.Context) error {
					_, err := engine.Coverage(ctx, path)
					return err
				})
			}

			return nil
		})
	}

	return wp.Wait()
}

func covers(intervals []spice.Interval, times []float64, contiguous bool) bool {
	for _, interval := range intervals {
		if contiguous {
			if interval.ContainsAll(times) {
				return true
			}

			continue
		}

		for _, t := range times {
			if interval.Contains(t) {
				return true
			}
		}
	}

	return false
}
