package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"ledger/broker"
	"ledger/repl"
	"ledger/spreadsheet"
	"ledger/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	sub := os.Args[1]
	switch sub {
	case "-h", "--help", "help":
		usage()
	case "run":
		os.Exit(runCommand(os.Args[2:]))
	case "repl":
		os.Exit(replCommand(os.Args[2:]))
	case "repl-server":
		os.Exit(replServerCommand(os.Args[2:]))
	case "repl-client":
		os.Exit(replClientCommand(os.Args[2:]))
	case "serve":
		os.Exit(serveCommand(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand: %s\n", sub)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  ledger <command> [arguments]\n")
	fmt.Fprintf(os.Stderr, "\nCommands:\n")
	fmt.Fprintf(os.Stderr, "  run <file>            load a sheet of \"CELL = formula\" lines and print every cell's value\n")
	fmt.Fprintf(os.Stderr, "  repl                  start the interactive formula REPL\n")
	fmt.Fprintf(os.Stderr, "  repl-server <addr>    start the REPL over TCP\n")
	fmt.Fprintf(os.Stderr, "  repl-client <addr>    connect to a REPL server\n")
	fmt.Fprintf(os.Stderr, "  serve [addr]          start the reactive spreadsheet HTTP/WS server (default :8080)\n")
	fmt.Fprintf(os.Stderr, "  help                  show this help message\n")
}

// runCommand loads a sheet from a flat file of "CELL = formula-or-literal"
// lines (blank lines and lines starting with "#" are ignored) and prints
// every set cell's final value, in file order.
func runCommand(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: ledger run <file>\n")
		return 2
	}

	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "read error: %v\n", err)
		return 1
	}
	defer f.Close()

	sheet := spreadsheet.NewSheet("run")
	order := make([]spreadsheet.CellID, 0)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			fmt.Fprintf(os.Stderr, "skipping malformed line: %s\n", line)
			continue
		}
		id := spreadsheet.CellID(strings.TrimSpace(line[:idx]))
		raw := strings.TrimSpace(line[idx+1:])
		if err := sheet.SetCell(id, raw); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", id, err)
			continue
		}
		order = append(order, id)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "read error: %v\n", err)
		return 1
	}

	for _, id := range order {
		fmt.Printf("%s = %s\n", id, sheet.GetCell(id).Value.Inspect())
	}
	return 0
}

func replCommand(args []string) int {
	repl.Start(os.Stdin, os.Stdout)
	return 0
}

func replServerCommand(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: ledger repl-server <addr>\n")
		return 2
	}
	if err := repl.Server(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return 0
}

func replClientCommand(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: ledger repl-client <addr>\n")
		return 2
	}
	if err := repl.Client(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return 0
}

// serveCommand starts the reactive spreadsheet HTTP/WS server. Addr
// defaults to :8080. LEDGER_BROKER_ADDR, if set, binds a broker.Announcer
// so other processes can subscribe to this sheet's recalculation events.
// LEDGER_DATABASE_URL, if set, persists every cell through store.Store and
// replays it back on startup.
func serveCommand(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	var sheetName string
	fs.StringVar(&sheetName, "sheet", "default", "sheet name, used as the persistence/broker key")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	addr := ":8080"
	if rest := fs.Args(); len(rest) > 0 {
		addr = rest[0]
		addr = strings.Replace(addr, "localhost", "", 1)
		if !strings.Contains(addr, ":") {
			addr = ":" + addr
		}
	}

	ctx := context.Background()

	var announcer *broker.Announcer
	if brokerAddr := os.Getenv("LEDGER_BROKER_ADDR"); brokerAddr != "" {
		a, err := broker.NewAnnouncer(ctx, brokerAddr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "broker: %v\n", err)
			return 1
		}
		defer a.Close()
		announcer = a
	}

	var db *store.Store
	if dsn := os.Getenv("LEDGER_DATABASE_URL"); dsn != "" {
		s, err := store.Open(ctx, dsn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "store: %v\n", err)
			return 1
		}
		defer s.Close()
		db = s
	}

	srv := spreadsheet.NewServer(sheetName, announcer, db)
	if err := srv.LoadFrom(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "store: load: %v\n", err)
		return 1
	}

	if err := srv.Start(addr); err != nil {
		fmt.Fprintf(os.Stderr, "spreadsheet server error: %v\n", err)
		return 1
	}
	return 0
}
