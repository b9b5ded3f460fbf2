package world

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"tacticore/internal/geometry"
	"tacticore/internal/resource"
	"tacticore/internal/vault"
)

// VaultSet names the vaults a floor generation pass may draw from, plus
// coarse density/corridor hints. Per the recorded floor-generation
// decision, this is a hook sufficient to exercise vault stamping and
// the Exit transition, not a complete procedural generator.
type VaultSet struct {
	Keys      []string
	Density   float64 // fraction of spacing cells that get a vault stamped, (0,1]
	HallRatio float64 // reserved for corridor width/branching; 1 = single-tile corridors
}

const vaultSpacing = 24

// GenerateFloor deterministically builds a new Floor from seed by
// stamping set's vaults in a row, spaced vaultSpacing tiles apart with
// small seeded jitter, and carving single-tile corridors between each
// consecutive pair of stamped vaults so the floor is traversable.
func GenerateFloor(seed string, set VaultSet, resources *resource.Registry) (*Floor, error) {
	if len(set.Keys) == 0 {
		return nil, fmt.Errorf("world: vault set is empty")
	}
	density := set.Density
	if density <= 0 {
		density = 1
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	floor := NewFloor()
	var centers []geometry.Point

	for i, key := range set.Keys {
		if rng.Float64() > density {
			continue
		}
		v, err := resources.GetVault(key)
		if err != nil {
			return nil, err
		}
		ox := i*vaultSpacing + rng.Intn(4)
		oy := rng.Intn(4)
		vault.Stamp(floor.Tiles, v, ox, oy)
		centers = append(centers, geometry.Point{X: ox + v.Width/2, Y: oy + v.Height/2})
	}

	if len(centers) == 0 {
		return nil, fmt.Errorf("world: seed %q stamped no vaults at density %.2f", seed, density)
	}
	for i := 1; i < len(centers); i++ {
		carveCorridor(floor.Tiles, centers[i-1], centers[i])
	}

	return floor, nil
}

// carveCorridor walks an L-shaped path from a to b (horizontal then
// vertical), setting every cell along the way to Floor.
func carveCorridor(m *geometry.Map, a, b geometry.Point) {
	x, y := a.X, a.Y
	for x != b.X || y != b.Y {
		m.Set(x, y, geometry.Floor)
		if x != b.X {
			x += sign(b.X - x)
		} else {
			y += sign(b.Y - y)
		}
	}
	m.Set(b.X, b.Y, geometry.Floor)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
