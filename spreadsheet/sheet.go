// Package spreadsheet hosts formulas over a grid of cells: it owns the
// dependency graph, drives recalculation, and implements engine.Context
// on top of cell storage so ledger/engine never needs to know what a
// "sheet" is.
package spreadsheet

import (
	"sync"
	"sync/atomic"

	"ledger/ast"
	"ledger/engine"
)

// CellID is an address like "A1" or "B12".
type CellID string

// Cell is a single spreadsheet cell: the text the user typed, the parsed
// formula (nil for a literal), and the last computed Value.
type Cell struct {
	ID       CellID
	RawValue string
	Formula  ast.Expression // nil when RawValue isn't a "="-prefixed formula
	Value    engine.Value

	Dependencies []CellID
	Dependents   []CellID
}

// Sheet is a grid of cells sharing one function registry and dependency
// graph. A Sheet is an engine.Context: formulas resolve cell and range
// references against it directly.
type Sheet struct {
	mu    sync.RWMutex
	Cells map[CellID]*Cell

	registry *engine.Registry
	name     string
	current  CellID
	canceled atomic.Bool
}

// NewSheet creates an empty, named sheet.
func NewSheet(name string) *Sheet {
	return &Sheet{
		Cells:    make(map[CellID]*Cell),
		registry: engine.NewRegistry(),
		name:     name,
	}
}

// Clear removes every cell, resetting the sheet to empty.
func (s *Sheet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cells = make(map[CellID]*Cell)
}

// Cancel marks the sheet cancelled; in-flight and future recalculations
// observe it via IsCancelled and unwind with #N/A rather than run to
// completion. The flag is never cleared.
func (s *Sheet) Cancel() { s.canceled.Store(true) }

func (s *Sheet) IsCancelled() bool { return s.canceled.Load() }

func (s *Sheet) getOrCreateCell(id CellID) *Cell {
	if cell, ok := s.Cells[id]; ok {
		return cell
	}
	cell := &Cell{ID: id}
	s.Cells[id] = cell
	return cell
}

// GetCell returns a cell by ID, creating an empty one if absent. Safe for
// concurrent use.
func (s *Sheet) GetCell(id CellID) *Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateCell(id)
}

// Each calls fn once per cell currently set on the sheet, in no particular
// order, with the cell's raw text and its last computed value rendered via
// Inspect().
func (s *Sheet) Each(fn func(id CellID, raw string, value string)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, cell := range s.Cells {
		val := "empty"
		if cell.Value != nil {
			val = cell.Value.Inspect()
		}
		fn(id, cell.RawValue, val)
	}
}

// --- engine.Context ---

// GetCellValue does not take s.mu: formulas are evaluated from SetCell,
// which already holds the write lock for the whole recalculation.
func (s *Sheet) GetCellValue(addr engine.CellAddr) engine.Value {
	cell, ok := s.Cells[CellID(addr)]
	if !ok || cell.Value == nil {
		return engine.Empty()
	}
	return cell.Value
}

func (s *Sheet) GetRangeValues(addr engine.RangeAddr) engine.Value {
	cells := expandRange(CellID(addr.From), CellID(addr.To))
	if len(cells) == 0 {
		return engine.NewError(engine.ErrRef)
	}
	rows := make([][]engine.Value, len(cells))
	for i, row := range cells {
		out := make([]engine.Value, len(row))
		for j, id := range row {
			out[j] = s.GetCellValue(engine.CellAddr(id))
		}
		rows[i] = out
	}
	return engine.NewRange(rows)
}

func (s *Sheet) GetFunction(name string) (engine.RegisteredFunction, bool) {
	return s.registry.Lookup(name)
}

// GetVariable never resolves at sheet scope: top-level formulas only see
// cell/range references and functions. Names only become bindable once a
// LAMBDA or LET introduces an engine.ScopedContext over this Sheet.
func (s *Sheet) GetVariable(name string) (engine.Value, bool) { return nil, false }

func (s *Sheet) CurrentCell() engine.CellAddr { return engine.CellAddr(s.current) }
func (s *Sheet) CurrentSheet() (string, bool) { return s.name, true }
