// Command sigidx is the command-line surface for the signature index:
// create a relation, insert tuples into it, run a partial-match select
// against it, and inspect its state (stats, showsigs). There is no REPL
// framework in the retrieved examples for this domain, so the dispatcher
// is a hand-rolled os.Args switch in the style of chirst-cdb/repl.Run's
// bufio.Scanner loop, reused here for insert's stdin reading.
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/relndb/sigidx/bitstring"
	"github.com/relndb/sigidx/page"
	"github.com/relndb/sigidx/query"
	"github.com/relndb/sigidx/reln"
	"github.com/relndb/sigidx/sig"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "create":
		err = runCreate(os.Args[2:])
	case "insert":
		err = runInsert(os.Args[2:])
	case "select":
		err = runSelect(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	case "showsigs":
		err = runShowsigs(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: sigidx <create|insert|select|stats|showsigs> ...")
	fmt.Fprintln(os.Stderr, "  create   <rel> <nattrs> <pF> <catc|simc> <tk> <tm> <pm> <bm>")
	fmt.Fprintln(os.Stderr, "  insert   <rel>                 (reads comma-separated tuples from stdin)")
	fmt.Fprintln(os.Stderr, "  select   <rel> <query> <t|p|b|a>")
	fmt.Fprintln(os.Stderr, "  stats    <rel>")
	fmt.Fprintln(os.Stderr, "  showsigs <rel> <tsig|psig|bsig>")
}

func runCreate(args []string) error {
	if len(args) != 8 {
		return fmt.Errorf("create: expected 8 arguments, got %d", len(args))
	}
	name := args[0]
	nattrs, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("create: bad nattrs: %w", err)
	}
	pF, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("create: bad pF: %w", err)
	}
	sigType := sig.ParseType(args[3])
	tk, err := strconv.Atoi(args[4])
	if err != nil {
		return fmt.Errorf("create: bad tk: %w", err)
	}
	tm, err := strconv.Atoi(args[5])
	if err != nil {
		return fmt.Errorf("create: bad tm: %w", err)
	}
	pm, err := strconv.Atoi(args[6])
	if err != nil {
		return fmt.Errorf("create: bad pm: %w", err)
	}
	bm, err := strconv.Atoi(args[7])
	if err != nil {
		return fmt.Errorf("create: bad bm: %w", err)
	}

	r, err := reln.Create(false, name, nattrs, pF, sigType, tk, tm, pm, bm)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	defer r.Close()
	slog.Info("created relation", "name", name, "nattrs", nattrs, "sigType", sigType.String())
	return nil
}

func runInsert(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("insert: expected <rel>, got %d arguments", len(args))
	}
	r, err := reln.Open(args[0])
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	defer r.Close()

	scanner := bufio.NewScanner(os.Stdin)
	n := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if _, err := r.Insert(fields); err != nil {
			slog.Warn("skipping tuple", "line", line, "error", err)
			continue
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("insert: error reading stdin: %w", err)
	}
	slog.Info("inserted tuples", "n", n)
	return nil
}

func runSelect(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("select: expected <rel> <query> <t|p|b|a>, got %d arguments", len(args))
	}
	r, err := reln.Open(args[0])
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}
	defer r.Close()

	strategy := query.ParseStrategy(args[2])
	q, err := query.New(r, args[1], strategy)
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}
	if err := q.Scan(os.Stdout); err != nil {
		return fmt.Errorf("select: %w", err)
	}
	fmt.Fprint(os.Stderr, q.Stats())
	return nil
}

func runStats(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("stats: expected <rel>, got %d arguments", len(args))
	}
	r, err := reln.Open(args[0])
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	defer r.Close()
	fmt.Print(r.Stats())
	return nil
}

func runShowsigs(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("showsigs: expected <rel> <tsig|psig|bsig>, got %d arguments", len(args))
	}
	r, err := reln.Open(args[0])
	if err != nil {
		return fmt.Errorf("showsigs: %w", err)
	}
	defer r.Close()

	p := r.Params()
	var nbits int
	var first *page.Page
	switch args[1] {
	case "tsig":
		nbits = p.Tm
		first, err = r.TsigPage(0)
	case "psig":
		nbits = p.Pm
		first, err = r.PsigPage(0)
	case "bsig":
		nbits = p.Bm
		first, err = r.BsigPage(0)
	default:
		return fmt.Errorf("showsigs: unknown signature file %q, want tsig, psig or bsig", args[1])
	}
	if err != nil {
		return fmt.Errorf("showsigs: %w", err)
	}
	width := (nbits + 7) / 8
	for i := 0; i < first.NItems(); i++ {
		s := bitstring.FromBytes(first.GetItem(i, width), nbits)
		fmt.Printf("%s  (%d bits set)\n", s.HexString(), s.Count())
	}
	return nil
}
