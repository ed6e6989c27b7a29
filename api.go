package shi

// This file is the small exported surface cmd/shi (and any other
// host program embedding the interpreter) drives the core through,
// re-exporting the handful of lowercase helpers that already do the
// real work.

// Intern returns the unique Symbol for name, creating it on first use
// (spec.md §3.3).
func (in *Interp) Intern(name string) (Value, error) { return in.intern(name) }

// Cons allocates a new pair (spec.md §3.2).
func (in *Interp) Cons(car, cdr Value) (Value, error) { return in.cons(car, cdr) }

// EnvGet looks up sym along env's prototype chain (spec.md §4.3).
func (in *Interp) EnvGet(env, sym Value) (Value, bool, error) { return in.envGet(env, sym) }

// PrStr renders v the way the `pr-str` primitive does (spec.md §4.8).
func (in *Interp) PrStr(v Value) (string, error) { return in.prStr(v) }

// RestoreStdinIfRaw puts stdin's termios back the way it was before
// any `term-raw` call, the same cleanup primExit performs (spec.md §7:
// an unhandled error still "restores terminal state").
func (in *Interp) RestoreStdinIfRaw() { restoreStdinTermios(in) }
