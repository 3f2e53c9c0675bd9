package genome

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// Fingerprint returns a short stable digest over the genome's topology,
// activations, and exact weight bits. Two genomes fingerprint equal iff
// Equal reports true, so distinct fingerprints count as a population
// diversity measure.
func (g NetworkGenome) Fingerprint() string {
	h := sha1.New()
	var buf [8]byte
	writeInt := func(v int) {
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	writeFloat := func(v float64) {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}

	writeInt(len(g.Layers))
	for _, layer := range g.Layers {
		writeInt(layer.Inputs)
		writeInt(layer.Outputs)
		h.Write([]byte(layer.Activation))
		h.Write([]byte{0})
		for _, w := range layer.Weights {
			writeFloat(w)
		}
		for _, b := range layer.Biases {
			writeFloat(b)
		}
	}

	digest := h.Sum(nil)
	return hex.EncodeToString(digest[:8])
}

// CountDistinct returns the number of distinct fingerprints among genomes.
func CountDistinct(genomes []NetworkGenome) int {
	seen := make(map[string]struct{}, len(genomes))
	for _, g := range genomes {
		seen[g.Fingerprint()] = struct{}{}
	}
	return len(seen)
}
