package dataset

import "math"

const (
	mtN         = 624
	mtM         = 397
	mtMatrixA   = 0x9908b0df
	mtUpperMask = 0x80000000
	mtLowerMask = 0x7fffffff
)

// RandomState is a 32-bit Mersenne Twister that follows the legacy NumPy
// RandomState stream: init_genrand seeding, 53-bit doubles built from two
// draws, the polar Gaussian with a cached second variate and masked rejection
// for bounded integers. A RandomState is not safe for concurrent use.
type RandomState struct {
	mt       [mtN]uint32
	idx      int
	hasGauss bool
	gauss    float64
}

// NewRandomState returns a generator seeded like RandomState(seed). Only the
// low 32 bits of seed are used.
func NewRandomState(seed uint32) *RandomState {
	rs := &RandomState{}
	rs.Seed(seed)
	return rs
}

// Seed resets the generator, including the cached Gaussian.
func (rs *RandomState) Seed(seed uint32) {
	rs.mt[0] = seed
	for i := 1; i < mtN; i++ {
		prev := rs.mt[i-1]
		rs.mt[i] = 1812433253*(prev^(prev>>30)) + uint32(i)
	}
	rs.idx = mtN
	rs.hasGauss = false
	rs.gauss = 0
}

func (rs *RandomState) generate() {
	for k := 0; k < mtN; k++ {
		y := (rs.mt[k] & mtUpperMask) | (rs.mt[(k+1)%mtN] & mtLowerMask)
		v := rs.mt[(k+mtM)%mtN] ^ (y >> 1)
		if y&1 != 0 {
			v ^= mtMatrixA
		}
		rs.mt[k] = v
	}
	rs.idx = 0
}

// Uint32 returns the next tempered 32-bit output.
func (rs *RandomState) Uint32() uint32 {
	if rs.idx >= mtN {
		rs.generate()
	}
	y := rs.mt[rs.idx]
	rs.idx++

	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	return y
}

// Float64 returns a uniform value in [0, 1) with 53 bits of precision.
func (rs *RandomState) Float64() float64 {
	a := rs.Uint32() >> 5
	b := rs.Uint32() >> 6
	return (float64(a)*67108864.0 + float64(b)) / 9007199254740992.0
}

// NormFloat64 returns a standard normal variate. Variates are produced in
// pairs; the second of each pair is cached and returned by the next call.
func (rs *RandomState) NormFloat64() float64 {
	if rs.hasGauss {
		rs.hasGauss = false
		return rs.gauss
	}
	var x1, x2, r2 float64
	for {
		x1 = 2*rs.Float64() - 1
		x2 = 2*rs.Float64() - 1
		r2 = x1*x1 + x2*x2
		if r2 < 1 && r2 != 0 {
			break
		}
	}
	f := math.Sqrt(-2 * math.Log(r2) / r2)
	rs.gauss = f * x1
	rs.hasGauss = true
	return f * x2
}

// Normal returns loc + scale*NormFloat64().
func (rs *RandomState) Normal(loc, scale float64) float64 {
	return loc + scale*rs.NormFloat64()
}

// IntN returns a uniform integer in [low, high). It panics if high <= low.
// Each attempt consumes one full 32-bit output.
func (rs *RandomState) IntN(low, high int) int {
	if high <= low {
		panic("dataset: IntN requires high > low")
	}
	rng := uint32(high - low - 1)
	if rng == 0 {
		return low
	}
	mask := rng
	mask |= mask >> 1
	mask |= mask >> 2
	mask |= mask >> 4
	mask |= mask >> 8
	mask |= mask >> 16

	for {
		v := rs.Uint32() & mask
		if v <= rng {
			return low + int(v)
		}
	}
}

// Choice returns one element of values, picked with IntN(0, len(values)).
func (rs *RandomState) Choice(values []int) int {
	return values[rs.IntN(0, len(values))]
}
