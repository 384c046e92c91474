// Package format renders numbers the way the dashboard's Indonesian audience
// reads them: "." groups thousands and "," marks decimals.
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Numbers formats values for one locale.
type Numbers struct {
	p *message.Printer
}

// Indonesian returns the dashboard's default formatter.
func Indonesian() *Numbers { return New(language.Indonesian) }

func New(tag language.Tag) *Numbers {
	return &Numbers{p: message.NewPrinter(tag)}
}

// Int formats n with thousands grouping.
func (n *Numbers) Int(v int) string { return n.p.Sprintf("%d", v) }

// Int64 formats v with thousands grouping.
func (n *Numbers) Int64(v int64) string { return n.p.Sprintf("%d", v) }

// Float formats v with two decimals.
func (n *Numbers) Float(v float64) string { return n.p.Sprintf("%.2f", v) }

// Percent formats v, already in percent units, with one decimal.
func (n *Numbers) Percent(v float64) string { return n.p.Sprintf("%.1f%%", v) }

// Bytes formats a byte count as B, KB or MB.
func (n *Numbers) Bytes(v int64) string {
	switch {
	case v >= 1<<20:
		return n.p.Sprintf("%.1f MB", float64(v)/(1<<20))
	case v >= 1<<10:
		return n.p.Sprintf("%.1f KB", float64(v)/(1<<10))
	}
	return n.p.Sprintf("%d B", v)
}
