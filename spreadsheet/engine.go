package spreadsheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"ledger/ast"
	"ledger/engine"
	"ledger/lexer"
	"ledger/parser"
)

// SetCell updates a cell's raw text, reparses it if it's a formula,
// rewires the dependency graph, and recalculates the cell and everything
// that transitively depends on it.
func (s *Sheet) SetCell(id CellID, rawValue string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cell := s.getOrCreateCell(id)
	cell.RawValue = rawValue

	var deps []CellID
	if strings.HasPrefix(rawValue, "=") {
		l := lexer.New(rawValue[1:])
		p := parser.New(l)
		expr, err := p.ParseFormula()
		if err != nil {
			cell.Formula = nil
			cell.Value = engine.NewError(engine.ErrValue)
			s.updateDependencies(cell, nil)
			s.propagateUpdates(cell, make(map[CellID]bool))
			return fmt.Errorf("parsing %s: %w", id, err)
		}
		cell.Formula = expr
		deps = collectRefs(expr)
	} else {
		cell.Formula = nil
		deps = nil
	}

	s.updateDependencies(cell, deps)
	s.evaluateCell(cell)
	s.propagateUpdates(cell, make(map[CellID]bool))
	return nil
}

// evaluateCell recomputes a single cell's Value from its current
// RawValue/Formula. Caller must hold s.mu.
func (s *Sheet) evaluateCell(cell *Cell) {
	s.current = cell.ID
	if cell.Formula != nil {
		cell.Value = engine.Evaluate(cell.Formula, s)
		return
	}
	cell.Value = parseLiteral(cell.RawValue)
}

// parseLiteral turns a non-formula cell's raw text into a Value: a number
// or boolean when it parses as one, otherwise plain text (or Empty for an
// empty string).
func parseLiteral(raw string) engine.Value {
	if raw == "" {
		return engine.Empty()
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return engine.Number{Value: f}
	}
	switch strings.ToUpper(raw) {
	case "TRUE":
		return engine.Boolean{Value: true}
	case "FALSE":
		return engine.Boolean{Value: false}
	}
	return engine.Text{Value: raw}
}

// updateDependencies rewires the dependency graph edges for cell,
// removing it from stale dependencies' dependent lists and adding it to
// the new ones. Caller must hold s.mu.
func (s *Sheet) updateDependencies(cell *Cell, newDeps []CellID) {
	for _, oldID := range cell.Dependencies {
		if old, ok := s.Cells[oldID]; ok {
			old.removeDependent(cell.ID)
		}
	}
	cell.Dependencies = newDeps
	for _, depID := range newDeps {
		s.getOrCreateCell(depID).addDependent(cell.ID)
	}
}

func (c *Cell) addDependent(id CellID) {
	for _, d := range c.Dependents {
		if d == id {
			return
		}
	}
	c.Dependents = append(c.Dependents, id)
}

func (c *Cell) removeDependent(id CellID) {
	out := c.Dependents[:0]
	for _, d := range c.Dependents {
		if d != id {
			out = append(out, d)
		}
	}
	c.Dependents = out
}

// propagateUpdates recomputes every cell reachable from cell through the
// dependents graph. visited both breaks cycles and avoids recomputing a
// diamond-shaped dependency twice.
func (s *Sheet) propagateUpdates(cell *Cell, visited map[CellID]bool) {
	if visited[cell.ID] {
		return
	}
	visited[cell.ID] = true
	for _, depID := range cell.Dependents {
		dep, ok := s.Cells[depID]
		if !ok {
			continue
		}
		s.evaluateCell(dep)
		s.propagateUpdates(dep, visited)
	}
}

// collectRefs walks a formula's expression tree collecting every cell it
// reads, expanding range references to their member cells so the
// dependency graph tracks individual cells rather than ranges.
func collectRefs(node ast.Expression) []CellID {
	seen := make(map[CellID]bool)
	var out []CellID
	add := func(id CellID) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	var walk func(ast.Expression)
	walk = func(n ast.Expression) {
		switch t := n.(type) {
		case *ast.CellRefNode:
			add(CellID(t.Ref))
		case *ast.RangeRefNode:
			for _, row := range expandRange(CellID(t.From), CellID(t.To)) {
				for _, id := range row {
					add(id)
				}
			}
		case *ast.PrefixNode:
			walk(t.Right)
		case *ast.InfixNode:
			walk(t.Left)
			walk(t.Right)
		case *ast.CallNode:
			walk(t.Callee)
			for _, a := range t.Args {
				walk(a)
			}
		}
	}
	walk(node)
	return out
}

var cellIDPattern = regexp.MustCompile(`^([A-Za-z]+)([0-9]+)$`)

// parseCellID splits "A1" into a 1-based (col, row) pair, treating
// columns as base-26 letters (A, B, ..., Z, AA, AB, ...).
func parseCellID(id CellID) (col, row int, err error) {
	m := cellIDPattern.FindStringSubmatch(string(id))
	if m == nil {
		return 0, 0, fmt.Errorf("invalid cell id %q", id)
	}
	row, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, err
	}
	for _, ch := range strings.ToUpper(m[1]) {
		col = col*26 + int(ch-'A'+1)
	}
	return col, row, nil
}

func colName(col int) string {
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}

// expandRange returns the rectangle between from and to as a row-major
// matrix of CellIDs. A malformed endpoint yields nil.
func expandRange(from, to CellID) [][]CellID {
	c1, r1, err1 := parseCellID(from)
	c2, r2, err2 := parseCellID(to)
	if err1 != nil || err2 != nil {
		return nil
	}
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	rows := make([][]CellID, 0, r2-r1+1)
	for r := r1; r <= r2; r++ {
		row := make([]CellID, 0, c2-c1+1)
		for c := c1; c <= c2; c++ {
			row = append(row, CellID(fmt.Sprintf("%s%d", colName(c), r)))
		}
		rows = append(rows, row)
	}
	return rows
}
