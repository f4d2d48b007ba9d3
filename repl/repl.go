// Package repl is an interactive formula shell over a single in-memory
// spreadsheet.Sheet. Grounded on the teacher's repl/repl.go: the same
// raw-terminal-or-line-scanner input split, banner/command shape, and
// parse-error reporting, reduced to the formula grammar (no multi-line
// statement continuation — a formula is always one line).
package repl

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"ledger/engine"
	"ledger/lexer"
	"ledger/parser"
	"ledger/spreadsheet"
)

const prompt = "ledger> "

var cellNamePattern = regexp.MustCompile(`^[A-Za-z]+[0-9]+$`)

type scannerResult struct {
	line string
	err  error
	ok   bool
}

// Start begins an interactive session over a fresh, empty sheet. Input is
// either a cell assignment ("A1 = =1+2"; the text after the first "=" is
// stored as the cell's raw value, so "A1 = 1+2" stores the text "1+2") or
// a bare expression ("1+2",
// "=SUM..." works too — the leading "=" is optional here and stripped if
// present), evaluated immediately and printed without being stored in a
// cell.
func Start(in io.Reader, out io.Writer) {
	sheet := spreadsheet.NewSheet("repl")

	var (
		scanCh chan scannerResult
		tty    *ttyInput
	)
	if ti, ok := newTTYInput(in, out); ok {
		tty = ti
		defer tty.Close()
	} else {
		scanner := bufio.NewScanner(in)
		scanCh = make(chan scannerResult)
		go scanInput(scanner, scanCh)
	}

	sessionOut := out
	if tty != nil {
		sessionOut = newTTYLineWriter(out)
	}

	fmt.Fprintf(sessionOut, "╔═══════════════════════════════════════╗\n")
	fmt.Fprintf(sessionOut, "║   Ledger REPL - Formula Shell          ║\n")
	fmt.Fprintf(sessionOut, "╚═══════════════════════════════════════╝\n\n")
	fmt.Fprintf(sessionOut, "Type a cell assignment (A1 = =1+2) or a bare expression, Enter to evaluate.\n")
	fmt.Fprintf(sessionOut, "Commands: :help, :quit, :clear, :cells\n\n")

	for {
		var (
			line string
			ok   bool
		)
		if tty != nil {
			line, ok = tty.readLine(prompt)
		} else {
			fmt.Fprint(out, prompt)
			line, ok = waitForInput(scanCh, out)
		}
		if !ok {
			return
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if handleCommand(trimmed, sessionOut, sheet) {
				return
			}
			continue
		}

		if id, raw, ok := parseAssignment(trimmed); ok {
			if err := sheet.SetCell(id, raw); err != nil {
				fmt.Fprintf(sessionOut, "Parse error: %v\n", err)
				continue
			}
			fmt.Fprintf(sessionOut, "%s = %s\n", id, sheet.GetCell(id).Value.Inspect())
			continue
		}

		result := evalExpression(trimmed)
		fmt.Fprintf(sessionOut, "%s\n", result)
	}
}

var scratch = spreadsheet.NewSheet("scratch")

// evalExpression parses and evaluates a bare formula against an empty
// scratch sheet (so cell references resolve to Empty rather than
// erroring, matching how an unset cell reads anywhere else).
func evalExpression(input string) string {
	body := strings.TrimPrefix(input, "=")
	l := lexer.New(body)
	p := parser.New(l)
	expr, err := p.ParseFormula()
	if err != nil {
		return fmt.Sprintf("Parse error: %v", err)
	}
	return engine.Evaluate(expr, scratch).Inspect()
}

func parseAssignment(line string) (spreadsheet.CellID, string, bool) {
	idx := strings.IndexByte(line, '=')
	if idx <= 0 {
		return "", "", false
	}
	name := strings.TrimSpace(line[:idx])
	if !cellNamePattern.MatchString(name) {
		return "", "", false
	}
	return spreadsheet.CellID(name), strings.TrimSpace(line[idx+1:]), true
}

func handleCommand(cmd string, out io.Writer, sheet *spreadsheet.Sheet) bool {
	switch cmd {
	case ":quit", ":q", ":exit":
		fmt.Fprintln(out, "Goodbye!")
		return true
	case ":help", ":h":
		fmt.Fprintln(out, "REPL Commands:")
		fmt.Fprintln(out, "  :help, :h   - Show this help")
		fmt.Fprintln(out, "  :quit, :q   - Exit the REPL")
		fmt.Fprintln(out, "  :cells      - List every set cell and its value")
		fmt.Fprintln(out, "  :clear      - Clear the screen and every cell")
	case ":cells":
		sheet.Each(func(id spreadsheet.CellID, raw string, val string) {
			fmt.Fprintf(out, "  %s: %s => %s\n", id, raw, val)
		})
	case ":clear":
		clearScreen(out)
		sheet.Clear()
	default:
		fmt.Fprintf(out, "Unknown command: %s (try :help)\n", cmd)
	}
	return false
}

func scanInput(scanner *bufio.Scanner, out chan<- scannerResult) {
	defer close(out)
	for scanner.Scan() {
		out <- scannerResult{line: scanner.Text(), ok: true}
	}
	if err := scanner.Err(); err != nil {
		out <- scannerResult{err: err}
	}
}

func waitForInput(scanCh <-chan scannerResult, out io.Writer) (string, bool) {
	res, ok := <-scanCh
	if !ok {
		return "", false
	}
	if res.err != nil {
		fmt.Fprintf(out, "Input error: %v\n", res.err)
		return "", false
	}
	return res.line, res.ok
}
