// Package dataset provides the in-memory survey datasets behind every chart:
// the fixed country table, the seeded age sample, the seeded age/treatment
// pairs and the fixed gender shares. Nothing is persisted; every call builds
// its dataset from scratch.
package dataset

// ID identifies one of the provider's datasets.
type ID string

const (
	IDCountryCounts     ID = "countryCounts"
	IDAgeSample         ID = "ageSample"
	IDAgeTreatmentPairs ID = "ageTreatmentPairs"
	IDGenderShares      ID = "genderShares"
)

// IDs lists every dataset identifier in presentation order.
func IDs() []ID {
	return []ID{IDCountryCounts, IDAgeSample, IDAgeTreatmentPairs, IDGenderShares}
}

// Dataset is implemented by every value returned from Provider.Get.
type Dataset interface {
	ID() ID
	Len() int
}

// CountryCount is one row of the respondents-per-country table.
type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// CountryCounts is the ordered respondents-per-country table.
type CountryCounts []CountryCount

func (CountryCounts) ID() ID     { return IDCountryCounts }
func (c CountryCounts) Len() int { return len(c) }

// Lookup returns the count recorded for country.
func (c CountryCounts) Lookup(country string) (int, bool) {
	for _, row := range c {
		if row.Country == country {
			return row.Count, true
		}
	}
	return 0, false
}

// AgeSample is the synthetic respondent age distribution.
type AgeSample []int

func (AgeSample) ID() ID     { return IDAgeSample }
func (a AgeSample) Len() int { return len(a) }

// Float64s returns the sample as float64 values.
func (a AgeSample) Float64s() []float64 {
	out := make([]float64, len(a))
	for i, v := range a {
		out[i] = float64(v)
	}
	return out
}

// AgeTreatmentPair is one synthetic respondent: age and whether they sought
// treatment (0 = no, 1 = yes).
type AgeTreatmentPair struct {
	Age             int `json:"age"`
	SoughtTreatment int `json:"sought_treatment"`
}

// AgeTreatmentPairs is the synthetic age/treatment-decision sample.
type AgeTreatmentPairs []AgeTreatmentPair

func (AgeTreatmentPairs) ID() ID     { return IDAgeTreatmentPairs }
func (p AgeTreatmentPairs) Len() int { return len(p) }

// Columns splits the pairs into an age column and a flag column.
func (p AgeTreatmentPairs) Columns() (ages, flags []float64) {
	ages = make([]float64, len(p))
	flags = make([]float64, len(p))
	for i, pair := range p {
		ages[i] = float64(pair.Age)
		flags[i] = float64(pair.SoughtTreatment)
	}
	return ages, flags
}

// GenderShare is one slice of the gender distribution, in percent.
type GenderShare struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
}

// GenderShares is the fixed gender distribution. Nothing enforces that the
// shares sum to 100.
type GenderShares []GenderShare

func (GenderShares) ID() ID     { return IDGenderShares }
func (g GenderShares) Len() int { return len(g) }

// Total returns the sum of all shares.
func (g GenderShares) Total() float64 {
	var sum float64
	for _, s := range g {
		sum += s.Percent
	}
	return sum
}
