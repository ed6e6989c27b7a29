package shi

import (
	"io"
	"os"
)

// Interp is the single context value threading every subsystem
// together: heap, symbol table, root registry, environment,
// rescue-frame stack, and host resources. Spec.md §9's Design Notes
// call out process-level globals (heap, symbol list, watcher list) as
// something to avoid in a rewrite so that multiple interpreter
// instances are possible; Interp is that single value.
type Interp struct {
	heap   *Heap
	symtab *SymbolTable
	roots  *RootRegistry
	rescue *rescueStack

	globalEnv Value

	gensymCounter int64
	gcCycle       int64

	host *hostState

	Stdout io.Writer
	Stderr io.Writer
}

// InterpOptions configures a freshly constructed Interp.
type InterpOptions struct {
	HeapCapacity int
	AlwaysGC     bool
	DebugGC      bool
	Args         []string
}

// DefaultHeapCapacity is the number of heapObject slots each semispace
// holds before a GC is triggered. It is small enough that test
// programs exercise the collector without forcing it.
const DefaultHeapCapacity = 4096

// NewInterp builds an Interp with a fresh heap, empty symbol table,
// and topmost (proto == Nil) global environment, then binds the
// primitive surface of §4.7/§4.8/§6 into it.
func NewInterp(opts InterpOptions) (*Interp, error) {
	if opts.HeapCapacity <= 0 {
		opts.HeapCapacity = DefaultHeapCapacity
	}

	heap := NewHeap(opts.HeapCapacity)
	heap.alwaysGC = opts.AlwaysGC
	heap.debugGC = opts.DebugGC

	in := &Interp{
		heap:   heap,
		symtab: &SymbolTable{head: Nil},
		roots:  newRootRegistry(),
		rescue: newRescueStack(),
		host:   newHostState(),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	heap.onGC = func(stats GCStats) {
		io.WriteString(in.Stderr, "shi: "+stats.String()+"\n")
	}

	envRef, err := heap.alloc(in, newObjectObject(Nil))
	if err != nil {
		return nil, err
	}
	in.globalEnv = Value{tag: TagObject, r: envRef}

	if err := in.installPrimitives(); err != nil {
		return nil, err
	}

	if err := in.bindConstant("nil", Nil); err != nil {
		return nil, err
	}
	if err := in.bindConstant("true", True); err != nil {
		return nil, err
	}

	argsList, err := in.stringList(opts.Args)
	if err != nil {
		return nil, err
	}
	argsSym, err := in.intern("*args*")
	if err != nil {
		return nil, err
	}
	if err := in.defGlobal(in.globalEnv, argsSym, argsList); err != nil {
		return nil, err
	}

	return in, nil
}

// GlobalEnv returns the topmost lexical environment.
func (in *Interp) GlobalEnv() Value { return in.globalEnv }

// bindConstant binds name to val in the global environment. `nil` and
// `true` tokenize as ordinary Symbols (spec.md §4.5), so per §4.7's
// evaluation table they resolve through env_get like any other Symbol
// — they need a real global binding, not special-case treatment in
// Eval the way `*env*` gets.
func (in *Interp) bindConstant(name string, val Value) error {
	sym, err := in.intern(name)
	if err != nil {
		return err
	}
	return in.defGlobal(in.globalEnv, sym, val)
}

func (in *Interp) stringList(ss []string) (Value, error) {
	f := in.roots.PushFrame()
	defer in.roots.Release(f)

	result := Nil
	rh := in.roots.NewHandle(result)
	for i := len(ss) - 1; i >= 0; i-- {
		sv, err := in.newString(ss[i])
		if err != nil {
			return Nil, err
		}
		sh := in.roots.NewHandle(sv)
		cell, err := in.cons(in.roots.Get(sh), in.roots.Get(rh))
		if err != nil {
			return Nil, err
		}
		in.roots.Set(rh, cell)
	}
	return in.roots.Get(rh), nil
}
