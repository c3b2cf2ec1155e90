// Package diff aligns two documents line by line for side-by-side review.
package diff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of unchanged lines kept around each change.
const DefaultContext = 2

// Op classifies an aligned row.
type Op string

// Row operations.
const (
	Equal   Op = "equal"
	Insert  Op = "insert"
	Delete  Op = "delete"
	Replace Op = "replace"
)

// Side is one document in a comparison.
type Side struct {
	Label string
	Text  string
}

// Line is a non-empty source line; Number is 1-based within the kept lines.
type Line struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Row pairs a from-line with a to-line. A nil side has no counterpart.
type Row struct {
	Op   Op    `json:"op"`
	From *Line `json:"from,omitempty"`
	To   *Line `json:"to,omitempty"`
}

// Hunk is a run of rows around one or more nearby changes.
type Hunk struct {
	Rows []Row `json:"rows"`
}

// Diff is the full alignment plus context-trimmed hunks.
type Diff struct {
	FromLabel string `json:"from_label"`
	ToLabel   string `json:"to_label"`
	Rows      []Row  `json:"rows"`
	Hunks     []Hunk `json:"hunks"`
	Identical bool   `json:"identical"`
}

// Lines splits text into lines, dropping blank and whitespace-only lines.
func Lines(text string) []string {
	var out []string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// Compute aligns from against to. Hunks keep context unchanged lines around
// each change; a negative context selects DefaultContext.
// Compute(b, a) mirrors Compute(a, b): sides swap and inserts become deletes.
func Compute(from, to Side, context int) Diff {
	if context < 0 {
		context = DefaultContext
	}
	a, b := Lines(from.Text), Lines(to.Text)
	al := align(a, b)

	d := Diff{
		FromLabel: from.Label,
		ToLabel:   to.Label,
		Rows:      rowsFor(al.codes(), a, b),
		Hunks:     []Hunk{},
	}

	d.Identical = true
	for _, r := range d.Rows {
		if r.Op != Equal {
			d.Identical = false
			break
		}
	}
	if d.Identical {
		return d
	}

	for _, group := range al.groups(context) {
		d.Hunks = append(d.Hunks, Hunk{Rows: rowsFor(group, a, b)})
	}
	return d
}

// Unified renders the comparison as a unified diff. Identical documents
// render as an empty string.
func Unified(from, to Side, context int) (string, error) {
	if context < 0 {
		context = DefaultContext
	}
	a, b := Lines(from.Text), Lines(to.Text)
	groups := align(a, b).groups(context)
	if len(groups) == 0 {
		return "", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", from.Label, to.Label)
	for _, g := range groups {
		first, last := g[0], g[len(g)-1]
		fmt.Fprintf(&sb, "@@ -%s +%s @@\n",
			unifiedRange(first.I1, last.I2), unifiedRange(first.J1, last.J2))
		for _, c := range g {
			if c.Tag == 'e' {
				writeLines(&sb, ' ', a[c.I1:c.I2])
				continue
			}
			if c.Tag == 'r' || c.Tag == 'd' {
				writeLines(&sb, '-', a[c.I1:c.I2])
			}
			if c.Tag == 'r' || c.Tag == 'i' {
				writeLines(&sb, '+', b[c.J1:c.J2])
			}
		}
	}
	return sb.String(), nil
}

func writeLines(sb *strings.Builder, prefix byte, lines []string) {
	for _, l := range lines {
		sb.WriteByte(prefix)
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
}

// unifiedRange formats a half-open range the way difflib's unified writer does.
func unifiedRange(start, stop int) string {
	begin, length := start+1, stop-start
	if length == 1 {
		return fmt.Sprintf("%d", begin)
	}
	if length == 0 {
		begin--
	}
	return fmt.Sprintf("%d,%d", begin, length)
}

// alignment holds a matcher run in canonical argument order. difflib breaks
// ties by argument order, so the lexically smaller document is always passed
// first and the opcodes are flipped back when the caller's order differs.
type alignment struct {
	m       *difflib.SequenceMatcher
	flipped bool
}

func align(a, b []string) alignment {
	if strings.Join(a, "\n") > strings.Join(b, "\n") {
		return alignment{m: difflib.NewMatcherWithJunk(b, a, false, nil), flipped: true}
	}
	return alignment{m: difflib.NewMatcherWithJunk(a, b, false, nil)}
}

func (al alignment) codes() []difflib.OpCode {
	return al.orient(al.m.GetOpCodes())
}

func (al alignment) groups(context int) [][]difflib.OpCode {
	groups := al.m.GetGroupedOpCodes(context)
	for i, g := range groups {
		groups[i] = al.orient(g)
	}
	return groups
}

func (al alignment) orient(codes []difflib.OpCode) []difflib.OpCode {
	if !al.flipped {
		return codes
	}
	out := make([]difflib.OpCode, len(codes))
	for i, c := range codes {
		tag := c.Tag
		switch tag {
		case 'i':
			tag = 'd'
		case 'd':
			tag = 'i'
		}
		out[i] = difflib.OpCode{Tag: tag, I1: c.J1, I2: c.J2, J1: c.I1, J2: c.I2}
	}
	return out
}

// rowsFor expands opcodes into aligned rows. A replace block of unequal
// size pads the shorter side with nil counterparts.
func rowsFor(codes []difflib.OpCode, a, b []string) []Row {
	var rows []Row
	for _, c := range codes {
		switch c.Tag {
		case 'e':
			for i, j := c.I1, c.J1; i < c.I2; i, j = i+1, j+1 {
				rows = append(rows, Row{Op: Equal, From: line(a, i), To: line(b, j)})
			}
		case 'd':
			for i := c.I1; i < c.I2; i++ {
				rows = append(rows, Row{Op: Delete, From: line(a, i)})
			}
		case 'i':
			for j := c.J1; j < c.J2; j++ {
				rows = append(rows, Row{Op: Insert, To: line(b, j)})
			}
		case 'r':
			n := max(c.I2-c.I1, c.J2-c.J1)
			for k := 0; k < n; k++ {
				row := Row{Op: Replace}
				if c.I1+k < c.I2 {
					row.From = line(a, c.I1+k)
				}
				if c.J1+k < c.J2 {
					row.To = line(b, c.J1+k)
				}
				rows = append(rows, row)
			}
		}
	}
	if rows == nil {
		return []Row{}
	}
	return rows
}

func line(lines []string, i int) *Line {
	return &Line{Number: i + 1, Text: lines[i]}
}
