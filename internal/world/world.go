// Package world implements the tile grid agents forage in. Per-tile food
// capacity is seeded from an injected sampler at construction; food regrows
// toward capacity once per tick. The grid is mutated only through Consume and
// Regrow so a single-writer tick loop stays deterministic.
package world

import "fmt"

// Sampler produces a normalized food density in [0,1] for a world coordinate.
// New evaluates it at integer tile positions, but the domain is continuous so
// noise functions can interpolate. It must be pure: the same coordinate always
// yields the same value. Outputs outside [0,1] are clamped before scaling.
type Sampler func(x, y float64) float64

// Tile is one cell of the grid.
type Tile struct {
	Food    float64 `json:"food"`
	MaxFood float64 `json:"max_food"`
}

// World is a width x height tile grid. Tiles are stored row-major, y*width+x.
type World struct {
	width    int
	height   int
	regrowth float64
	tiles    []Tile
}

// New builds a world with every tile's capacity set to sampler(x,y) scaled by
// foodCeiling, starting full.
func New(width, height int, sampler Sampler, foodCeiling, regrowth float64) (*World, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("world dimensions must be positive, got %dx%d", width, height)
	}
	if sampler == nil {
		return nil, fmt.Errorf("food sampler is required")
	}
	if foodCeiling < 0 {
		return nil, fmt.Errorf("food ceiling must be >= 0, got %g", foodCeiling)
	}
	if regrowth < 0 {
		return nil, fmt.Errorf("regrowth rate must be >= 0, got %g", regrowth)
	}

	w := &World{
		width:    width,
		height:   height,
		regrowth: regrowth,
		tiles:    make([]Tile, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			density := clamp(sampler(float64(x), float64(y)), 0, 1)
			maxFood := density * foodCeiling
			w.tiles[y*width+x] = Tile{Food: maxFood, MaxFood: maxFood}
		}
	}
	return w, nil
}

func (w *World) Width() int  { return w.width }
func (w *World) Height() int { return w.height }

func (w *World) inBounds(x, y int) bool {
	return x >= 0 && x < w.width && y >= 0 && y < w.height
}

// Tile returns the tile at (x, y), or false when the coordinate is out of
// bounds.
func (w *World) Tile(x, y int) (Tile, bool) {
	if !w.inBounds(x, y) {
		return Tile{}, false
	}
	return w.tiles[y*w.width+x], true
}

// Consume removes up to amount food from the tile at (x, y) and returns how
// much was actually taken. Out-of-bounds coordinates and non-positive amounts
// take nothing.
func (w *World) Consume(x, y int, amount float64) float64 {
	if !w.inBounds(x, y) || amount <= 0 {
		return 0
	}
	tile := &w.tiles[y*w.width+x]
	taken := amount
	if taken > tile.Food {
		taken = tile.Food
	}
	tile.Food -= taken
	return taken
}

// Regrow advances every tile's food toward its capacity by the regrowth rate.
func (w *World) Regrow() {
	for i := range w.tiles {
		tile := &w.tiles[i]
		tile.Food += w.regrowth
		if tile.Food > tile.MaxFood {
			tile.Food = tile.MaxFood
		}
	}
}

// Reset refills every tile to capacity, restoring the post-construction
// state for the next generation.
func (w *World) Reset() {
	for i := range w.tiles {
		w.tiles[i].Food = w.tiles[i].MaxFood
	}
}

// Snapshot copies the tile grid for read-only consumers.
func (w *World) Snapshot() []Tile {
	out := make([]Tile, len(w.tiles))
	copy(out, w.tiles)
	return out
}

// TotalFood sums the food currently on the grid.
func (w *World) TotalFood() float64 {
	total := 0.0
	for _, tile := range w.tiles {
		total += tile.Food
	}
	return total
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
