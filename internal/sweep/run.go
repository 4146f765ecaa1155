package sweep

import (
	"context"

	"github.com/chrissnell/permafrost/internal/thermal"
	"golang.org/x/sync/errgroup"
)

// Point is one evaluated grid point
type Point struct {
	Coords  []float64
	Outputs thermal.Outputs
}

// Result holds every point of a grid in expansion order
type Result struct {
	Grid   Grid
	Points []Point
}

// Run evaluates every point of the grid using up to workers goroutines.
// Evaluations are independent, so the result does not depend on workers.
// Run stops early and returns the context error when ctx is cancelled.
func Run(ctx context.Context, grid Grid, workers int) (*Result, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}

	points := make([]Point, grid.Size())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range points {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			coords := grid.coords(i)
			points[i] = Point{
				Coords:  coords,
				Outputs: thermal.Evaluate(grid.inputs(coords)),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Result{Grid: grid, Points: points}, nil
}
