package render

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mandel "github.com/marben/mandel_bench"
)

func TestComputeBufferShape(t *testing.T) {
	sizes := []struct{ w, h int }{{1, 1}, {7, 3}, {32, 18}, {65, 64}}

	for _, s := range sizes {
		vp := mandel.DefaultCamera.Viewport(s.w, s.h)
		buf, err := Compute(vp)
		require.NoError(t, err)
		require.Len(t, buf, s.w*s.h*4)

		for i := 3; i < len(buf); i += 4 {
			if buf[i] != 255 {
				t.Fatalf("%dx%d: alpha at byte %d = %d, want 255", s.w, s.h, i, buf[i])
			}
		}
	}
}

func TestComputeInvalidViewport(t *testing.T) {
	for _, vp := range []mandel.Viewport{
		{PixelWidth: 0, PixelHeight: 10, Scale: 1},
		{PixelWidth: 10, PixelHeight: -2, Scale: 1},
		{PixelWidth: 10, PixelHeight: 10, Scale: 0},
	} {
		buf, err := Compute(vp)
		assert.ErrorIs(t, err, mandel.ErrInvalidViewport)
		assert.Nil(t, buf)
	}
}

func TestComputeOriginIsBlack(t *testing.T) {
	for _, size := range []int{1, 3, 101} {
		vp := mandel.Viewport{PixelWidth: size, PixelHeight: size, Scale: 0.01}
		buf, err := Compute(vp)
		require.NoError(t, err)

		c := size / 2
		i := (c*size + c) * 4
		assert.Equal(t, []byte{0, 0, 0, 255}, buf[i:i+4], "size %d", size)
	}
}

func TestComputeOutsidePixelUsesHue(t *testing.T) {
	// A single pixel at (2, 2) escapes on the first step.
	vp := mandel.Viewport{PixelWidth: 1, PixelHeight: 1, Scale: 1, OffsetX: 2.5, OffsetY: 2.5}
	buf, err := Compute(vp)
	require.NoError(t, err)

	r, g, b := HSLToRGB((2+2)*180, saturation, lightness)
	assert.Equal(t, []byte{r, g, b, 255}, buf)
}

func TestComputeTranslatesWithOffset(t *testing.T) {
	// Power-of-two scale and dyadic offsets keep the mapping exact.
	const w, h = 33, 17
	scale := 1.0 / 64
	base := mandel.Viewport{PixelWidth: w, PixelHeight: h, Scale: scale, OffsetX: -0.5, OffsetY: 0.25}
	shifted := base
	shifted.OffsetX += scale

	a, err := Compute(base)
	require.NoError(t, err)
	b, err := Compute(shifted)
	require.NoError(t, err)

	for y := range h {
		for x := 0; x < w-1; x++ {
			ia := (y*w + x + 1) * 4
			ib := (y*w + x) * 4
			if !assert.Equal(t, a[ia:ia+4], b[ib:ib+4], "pixel (%d,%d)", x, y) {
				return
			}
		}
	}
}

func TestInSet(t *testing.T) {
	assert.True(t, InSet(0, 0))
	assert.True(t, InSet(-1, 0))
	assert.True(t, InSet(-0.5, 0.5))
	assert.False(t, InSet(1, 1))
	assert.False(t, InSet(-2.1, 0))
	assert.False(t, InSet(0.5, 0))
}

func TestHSLToRGB(t *testing.T) {
	r, g, b := HSLToRGB(0, saturation, lightness)
	assert.Greater(t, r, g)
	assert.Equal(t, g, b)

	r, g, b = HSLToRGB(120, saturation, lightness)
	assert.Greater(t, g, r)
	assert.Equal(t, r, b)

	r, g, b = HSLToRGB(240, saturation, lightness)
	assert.Greater(t, b, r)
	assert.Equal(t, r, g)

	r, g, b = HSLToRGB(60, saturation, lightness)
	assert.Equal(t, r, g)
	assert.Greater(t, g, b)
}

func TestHSLToRGBWrapsHue(t *testing.T) {
	for _, h := range []float64{0, 30, 90, 150, 210, 270, 330} {
		r, g, b := HSLToRGB(h, saturation, lightness)
		for _, k := range []float64{-720, -360, 360, 1080} {
			r2, g2, b2 := HSLToRGB(h+k, saturation, lightness)
			assert.Equal(t, []uint8{r, g, b}, []uint8{r2, g2, b2}, "hue %v vs %v", h, h+k)
		}
	}

	// negative hues wrap into [0,360) before picking the sector
	r, g, b := HSLToRGB(-30, saturation, lightness)
	assert.Equal(t, []uint8{230, 26, 128}, []uint8{r, g, b})
}

func TestHSLToRGBGreyscale(t *testing.T) {
	r, g, b := HSLToRGB(200, 0, 0.5)
	assert.Equal(t, []uint8{128, 128, 128}, []uint8{r, g, b})

	r, g, b = HSLToRGB(10, 0.8, 1)
	assert.Equal(t, []uint8{255, 255, 255}, []uint8{r, g, b})
}

func TestComputeTilesMatchesCompute(t *testing.T) {
	vp := mandel.SeahorseValley.Camera(97, 61).Viewport(97, 61)

	want, err := Compute(vp)
	require.NoError(t, err)

	for _, tile := range []int{1, 7, 16, 64, 200} {
		got, err := ComputeTiles(context.Background(), vp, tile, tile)
		require.NoError(t, err)
		assert.Equal(t, want, got, "tile size %d", tile)
	}
}

func TestComputeTilesErrors(t *testing.T) {
	_, err := ComputeTiles(context.Background(), mandel.Viewport{}, 8, 8)
	assert.ErrorIs(t, err, mandel.ErrInvalidViewport)

	vp := mandel.DefaultCamera.Viewport(8, 8)
	_, err = ComputeTiles(context.Background(), vp, 0, 8)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Tiled{}.Compute(ctx, vp)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine(t *testing.T) {
	vp := mandel.ElephantValley.Camera(90, 50).Viewport(90, 50)
	want, err := Compute(vp)
	require.NoError(t, err)

	for _, tiled := range []bool{false, true} {
		got, err := Engine(tiled)(vp)
		require.NoError(t, err)
		assert.Equal(t, want, got, "tiled=%v", tiled)
	}
}

func TestSplitRectNoClip(t *testing.T) {
	tiles := splitRectNoClip(image.Rect(0, 0, 130, 70), 64, 64)
	require.Len(t, tiles, 6)

	area := 0
	for _, tile := range tiles {
		area += tile.Dx() * tile.Dy()
	}
	assert.Equal(t, 130*70, area)
	assert.Equal(t, image.Rect(128, 64, 130, 70), tiles[len(tiles)-1])
}

func TestImageView(t *testing.T) {
	vp := mandel.DefaultCamera.Viewport(5, 4)
	buf, err := Compute(vp)
	require.NoError(t, err)

	img := Image(vp, buf)
	assert.Equal(t, image.Rect(0, 0, 5, 4), img.Bounds())
	c := img.RGBAAt(4, 3)
	i := (3*5 + 4) * 4
	assert.Equal(t, []byte{c.R, c.G, c.B, c.A}, buf[i:i+4])
}

func BenchmarkCompute(b *testing.B) {
	vp := mandel.DefaultCamera.Viewport(320, 240)
	for b.Loop() {
		if _, err := Compute(vp); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkComputeTiles(b *testing.B) {
	vp := mandel.DefaultCamera.Viewport(320, 240)
	ctx := context.Background()
	for b.Loop() {
		if _, err := ComputeTiles(ctx, vp, DefaultTileSize, DefaultTileSize); err != nil {
			b.Fatal(err)
		}
	}
}
