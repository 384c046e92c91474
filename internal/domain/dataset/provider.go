package dataset

import (
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

// Generation parameters for the synthetic datasets.
const (
	DefaultSeed = 42

	AgeSampleSize = 1300
	AgeMean       = 30.0
	AgeStdDev     = 10.0
	MinAge        = 18
	MaxAge        = 75

	PairCount = 200
)

// Provider builds datasets on demand. It holds no state besides its seed, so
// repeated calls return identical data and a Provider may be shared freely.
type Provider struct {
	seed uint32
}

// NewProvider returns a Provider that reseeds with seed on every call.
func NewProvider(seed int64) *Provider {
	return &Provider{seed: uint32(seed)}
}

// Seed returns the seed used for every generated dataset.
func (p *Provider) Seed() int64 { return int64(p.seed) }

// CountryCounts returns a copy of the fixed 47-row table.
func (p *Provider) CountryCounts() CountryCounts {
	out := make(CountryCounts, len(countryTable))
	copy(out, countryTable)
	return out
}

// AgeSample draws AgeSampleSize normal ages, truncates each toward zero and
// clamps it into [MinAge, MaxAge].
func (p *Provider) AgeSample() AgeSample {
	rs := NewRandomState(p.seed)
	out := make(AgeSample, AgeSampleSize)
	for i := range out {
		out[i] = clamp(int(rs.Normal(AgeMean, AgeStdDev)), MinAge, MaxAge)
	}
	return out
}

// AgeTreatmentPairs draws PairCount ages uniformly from [MinAge, MaxAge) and
// then PairCount flags from {0, 1}. Ages are drawn before flags.
func (p *Provider) AgeTreatmentPairs() AgeTreatmentPairs {
	rs := NewRandomState(p.seed)
	out := make(AgeTreatmentPairs, PairCount)
	for i := range out {
		out[i].Age = rs.IntN(MinAge, MaxAge)
	}
	flags := []int{0, 1}
	for i := range out {
		out[i].SoughtTreatment = rs.Choice(flags)
	}
	return out
}

// GenderShares returns a copy of the fixed gender table.
func (p *Provider) GenderShares() GenderShares {
	out := make(GenderShares, len(genderTable))
	copy(out, genderTable)
	return out
}

// Get returns the dataset named by id.
func (p *Provider) Get(id ID) (Dataset, error) {
	switch id {
	case IDCountryCounts:
		return p.CountryCounts(), nil
	case IDAgeSample:
		return p.AgeSample(), nil
	case IDAgeTreatmentPairs:
		return p.AgeTreatmentPairs(), nil
	case IDGenderShares:
		return p.GenderShares(), nil
	default:
		return nil, errors.New(errors.ErrCodeUnknownDataset, "unknown dataset").WithDetail(string(id))
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
