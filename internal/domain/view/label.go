// Package view maps a selected dashboard view to its caption and a
// declarative chart specification. Dispatch is pure: the same label and seed
// always yield the same result.
package view

import (
	"strings"

	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

// Label is a sidebar entry, exactly as shown to the user.
type Label string

const (
	Home               Label = "Home"
	CountryCounts      Label = "Jumlah Responden per Negara"
	AgeDistribution    Label = "Distribusi Usia Responden"
	AgeVsTreatment     Label = "Usia vs Keputusan Mencari Pengobatan"
	CorrelationHeatmap Label = "Heatmap Korelasi Usia & Pengobatan"
	GenderDistribution Label = "Distribusi Jenis Kelamin Responden"
)

// Descriptor describes one view for menus and API listings.
type Descriptor struct {
	Label Label     `json:"label"`
	Slug  string    `json:"slug"`
	Kind  ChartKind `json:"kind"`
}

var descriptors = []Descriptor{
	{Home, "home", KindNone},
	{CountryCounts, "country-counts", KindBar},
	{AgeDistribution, "age-distribution", KindHistogram},
	{AgeVsTreatment, "age-vs-treatment", KindScatter},
	{CorrelationHeatmap, "correlation-heatmap", KindHeatmap},
	{GenderDistribution, "gender-distribution", KindPie},
}

// All returns every view in sidebar order.
func All() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// Labels returns every label in sidebar order.
func Labels() []Label {
	out := make([]Label, len(descriptors))
	for i, d := range descriptors {
		out[i] = d.Label
	}
	return out
}

// Slug returns the URL-safe name of l, or "" for an unknown label.
func (l Label) Slug() string {
	if d, ok := lookup(l); ok {
		return d.Slug
	}
	return ""
}

// Valid reports whether l is one of the six views.
func (l Label) Valid() bool {
	_, ok := lookup(l)
	return ok
}

func (l Label) String() string { return string(l) }

func lookup(l Label) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.Label == l {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Parse resolves s as a label or a slug. Slugs match case-insensitively.
// An empty string selects Home.
func Parse(s string) (Label, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Home, nil
	}
	for _, d := range descriptors {
		if string(d.Label) == s || strings.EqualFold(d.Slug, s) {
			return d.Label, nil
		}
	}
	return "", unknownView(s)
}

func unknownView(s string) error {
	return errors.New(errors.ErrCodeUnknownView, "unknown view").WithDetail(s)
}
