package platform

import (
	"math"

	"github.com/cjburkey01/fafevosim/internal/world"
)

// noiseCellSize is the terrain feature size in tiles: lattice points sit
// this far apart, so nearby tiles share similar food capacity.
const noiseCellSize = 8

// ValueNoise returns the default terrain sampler: seeded value noise over a
// coarse lattice, smoothly interpolated between lattice points. The same
// seed always yields the same terrain, and output stays in [0,1).
func ValueNoise(seed int64) world.Sampler {
	return func(x, y float64) float64 {
		fx := x / noiseCellSize
		fy := y / noiseCellSize
		x0 := math.Floor(fx)
		y0 := math.Floor(fy)
		tx := smoothstep(fx - x0)
		ty := smoothstep(fy - y0)

		ix := int64(x0)
		iy := int64(y0)
		v00 := latticeValue(seed, ix, iy)
		v10 := latticeValue(seed, ix+1, iy)
		v01 := latticeValue(seed, ix, iy+1)
		v11 := latticeValue(seed, ix+1, iy+1)

		top := v00 + (v10-v00)*tx
		bottom := v01 + (v11-v01)*tx
		return top + (bottom-top)*ty
	}
}

// Uniform returns a sampler that gives every tile the same capacity level.
func Uniform(level float64) world.Sampler {
	return func(x, y float64) float64 { return level }
}

// latticeValue hashes a lattice point with the seed into [0,1). Splitmix
// finalizers give avalanche behavior so neighbouring points decorrelate.
func latticeValue(seed, x, y int64) float64 {
	h := uint64(seed) ^ 0x9e3779b97f4a7c15
	h ^= uint64(x) * 0xbf58476d1ce4e5b9
	h = (h ^ (h >> 30)) * 0x94d049bb133111eb
	h ^= uint64(y) * 0xd6e8feb86659fd93
	h = (h ^ (h >> 27)) * 0xbf58476d1ce4e5b9
	h ^= h >> 31
	return float64(h>>11) / float64(1<<53)
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}
