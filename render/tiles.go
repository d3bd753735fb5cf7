package render

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"

	mandel "github.com/marben/mandel_bench"
)

// DefaultTileSize is the edge length of the square tiles used by ComputeTiles.
const DefaultTileSize = 64

// ComputeTiles produces the same buffer as Compute, filling tiles of
// tileW × tileH concurrently on up to GOMAXPROCS goroutines.
// Tiles write disjoint byte ranges of the shared buffer.
func ComputeTiles(ctx context.Context, vp mandel.Viewport, tileW, tileH int) ([]byte, error) {
	if err := vp.Validate(); err != nil {
		return nil, err
	}
	if tileW <= 0 || tileH <= 0 {
		return nil, fmt.Errorf("tile size %dx%d: must be positive", tileW, tileH)
	}

	buf := make([]byte, vp.BufferLen())
	tiles := splitRectNoClip(image.Rect(0, 0, vp.PixelWidth, vp.PixelHeight), tileW, tileH)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, tile := range tiles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fillRect(buf, vp, tile)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return buf, nil
}

// Tiled is a Computer running ComputeTiles with DefaultTileSize tiles.
type Tiled struct{}

func (Tiled) Compute(ctx context.Context, vp mandel.Viewport) ([]byte, error) {
	return ComputeTiles(ctx, vp, DefaultTileSize, DefaultTileSize)
}

var _ mandel.Computer = Tiled{}

// Engine returns the synchronous engine run inside execution contexts:
// Compute, or ComputeTiles with DefaultTileSize tiles when tiled is set.
func Engine(tiled bool) mandel.ComputeFunc {
	if !tiled {
		return Compute
	}
	return func(vp mandel.Viewport) ([]byte, error) {
		return ComputeTiles(context.Background(), vp, DefaultTileSize, DefaultTileSize)
	}
}

// splitRectNoClip splits r into tiles of size tileW × tileH.
// Tiles at the right and bottom edges are smaller if r is not divisible.
func splitRectNoClip(r image.Rectangle, tileW, tileH int) []image.Rectangle {
	w := r.Dx()
	h := r.Dy()

	var tiles []image.Rectangle

	for oy := 0; oy < h; oy += tileH {
		th := min(tileH, h-oy)

		for ox := 0; ox < w; ox += tileW {
			tw := min(tileW, w-ox)

			tiles = append(tiles, image.Rect(
				r.Min.X+ox,
				r.Min.Y+oy,
				r.Min.X+ox+tw,
				r.Min.Y+oy+th,
			))
		}
	}

	return tiles
}
