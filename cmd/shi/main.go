// Command shi is the interpreter's entry point (spec.md §6): run a
// source file, pipe a program through stdin, or fall into an
// interactive REPL, in that order of preference.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/shi-lang/shi"
	"github.com/shi-lang/shi/internal/prelude"
	"github.com/shi-lang/shi/internal/term"
)

func main() {
	var (
		heapCap = flag.Int("heap", shi.DefaultHeapCapacity, "heap slots per semispace")
	)
	flag.Parse()

	cfg := shi.LoadConfig()

	in, err := shi.NewInterp(shi.InterpOptions{
		HeapCapacity: *heapCap,
		AlwaysGC:     cfg.AlwaysGC,
		DebugGC:      cfg.DebugGC,
		Args:         flag.Args(),
	})
	if err != nil {
		log.Fatalf("shi: %v", err)
	}

	if _, err := runSource(in, []byte(prelude.Source)); err != nil {
		log.Fatalf("shi: prelude: %v", err)
	}

	code := run(in, cfg, flag.Arg(0))
	os.Exit(code)
}

func run(in *shi.Interp, cfg shi.Config, path string) int {
	if path != "" {
		src, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("shi: %v", err)
		}
		return evalProgram(in, src)
	}

	if !term.IsTerminal(0) {
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatalf("shi: %v", err)
		}
		return evalProgram(in, src)
	}

	return repl(in, cfg)
}

// evalProgram evaluates every top-level form in src in order, pumping
// the event loop between forms (spec.md §5: callbacks may run "between
// evaluator steps"). File and stdin programs run as-is, with no
// REPL-time expand-toplevel rewrite.
func evalProgram(in *shi.Interp, src []byte) int {
	_, err := runSource(in, src)
	if err != nil {
		return reportError(in, err)
	}
	return 0
}

func runSource(in *shi.Interp, src []byte) (shi.Value, error) {
	forms, err := in.ReadAll(src)
	if err != nil {
		return shi.Nil, err
	}
	result := shi.Nil
	for _, form := range forms {
		result, err = in.Eval(in.GlobalEnv(), form)
		if err != nil {
			return shi.Nil, err
		}
		if err := in.PumpEvents(); err != nil {
			return shi.Nil, err
		}
	}
	return result, nil
}

// repl reads one form at a time from stdin, rewriting each top-level
// form through expand-toplevel (spec.md §9's def-export convention)
// before evaluating it, and prints the printed representation of every
// result. Every non-empty line read is appended to $HOME/.shi-history as it
// goes, when $HOME is known (spec.md §6).
func repl(in *shi.Interp, cfg shi.Config) int {
	history := loadHistory(cfg.HistoryPath())
	defer history.Close()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var buf []byte
	fmt.Fprint(os.Stdout, "shi> ")
	for scanner.Scan() {
		line := scanner.Text()
		history.record(line)
		buf = append(buf, line...)
		buf = append(buf, '\n')

		forms, err := in.ReadAll(buf)
		if err != nil {
			// Incomplete form (e.g. an unterminated list): keep buffering.
			if incomplete(err) {
				fmt.Fprint(os.Stdout, "     ")
				continue
			}
			fmt.Fprintln(os.Stderr, "unhandled error:", err)
			buf = buf[:0]
			fmt.Fprint(os.Stdout, "shi> ")
			continue
		}

		for _, form := range forms {
			rewritten, rerr := expandTopLevel(in, form)
			if rerr != nil {
				fmt.Fprintln(os.Stderr, "unhandled error:", rerr)
				continue
			}
			result, err := in.Eval(in.GlobalEnv(), rewritten)
			if err != nil {
				in.RestoreStdinIfRaw()
				fmt.Fprintln(os.Stderr, "unhandled error:", err)
				continue
			}
			if err := in.PumpEvents(); err != nil {
				fmt.Fprintln(os.Stderr, "unhandled error:", err)
				continue
			}
			text, err := in.PrStr(result)
			if err != nil {
				fmt.Fprintln(os.Stderr, "unhandled error:", err)
				continue
			}
			fmt.Fprintln(os.Stdout, text)
		}
		buf = buf[:0]
		fmt.Fprint(os.Stdout, "shi> ")
	}
	fmt.Fprintln(os.Stdout)

	if err := scanner.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "unhandled error:", err)
		in.RestoreStdinIfRaw()
		return 1
	}
	in.RestoreStdinIfRaw()
	return 0
}

// expandTopLevel applies the prelude's expand-toplevel to form when
// it is bound, falling back to the form unchanged otherwise (a
// program that never loaded a prelude defining it still runs).
func expandTopLevel(in *shi.Interp, form shi.Value) (shi.Value, error) {
	sym, err := in.Intern("expand-toplevel")
	if err != nil {
		return shi.Nil, err
	}
	fn, bound, err := in.EnvGet(in.GlobalEnv(), sym)
	if err != nil {
		return shi.Nil, err
	}
	if !bound {
		return form, nil
	}
	argList, err := in.Cons(form, shi.Nil)
	if err != nil {
		return shi.Nil, err
	}
	return in.ApplyClosure(fn, argList)
}

// incomplete reports whether err looks like the reader simply ran out
// of input mid-form (an unterminated list/alist/string, or a trailing
// prefix with nothing after it) rather than a genuine syntax error —
// the REPL keeps buffering lines in the first case and reports the
// second immediately.
func incomplete(err error) bool {
	re, ok := err.(*shi.ReaderError)
	if !ok {
		return false
	}
	switch re.Message {
	case "unexpected end of input", "unterminated list", "unterminated alist",
		"unterminated string literal", "unterminated string escape":
		return true
	}
	return false
}

func reportError(in *shi.Interp, err error) int {
	in.RestoreStdinIfRaw()
	fmt.Fprintln(os.Stderr, "unhandled error:", err)
	return 1
}

type historyFile struct {
	f *os.File
}

func loadHistory(path string) *historyFile {
	if path == "" {
		return &historyFile{}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &historyFile{}
	}
	return &historyFile{f: f}
}

func (h *historyFile) record(line string) {
	if h.f == nil || line == "" {
		return
	}
	fmt.Fprintln(h.f, line)
}

func (h *historyFile) Close() {
	if h.f != nil {
		h.f.Close()
	}
}
