package shi

import "fmt"

// objectBuckets is the fixed bucket width of every Object's hash table
// (spec.md §3.3: "a fixed-width hash table of buckets"). The exact
// width is unspecified; this value is small enough that lexical frames
// with a handful of bindings don't waste space and large enough that
// the global environment's property set doesn't degenerate into long
// chains.
const objectBuckets = 31

// Heap is the semispace allocator described in spec.md §4.1. Rather
// than bump-allocating raw bytes (which Go gives no safe way to copy
// without `unsafe`), objects live in a slice of heapObject records and
// "bump allocation" is append-with-capacity-check — the arena-of-
// indices alternative spec.md §9's Design Notes explicitly sanctions
// in place of raw pointer copying.
type Heap struct {
	capacity int

	toSpace   []heapObject
	fromSpace []heapObject

	allocs int64 // lifetime allocation count, for SHI_DEBUG_GC reporting

	alwaysGC bool // SHI_ALWAYS_GC: force a full GC before every allocation
	debugGC  bool // SHI_DEBUG_GC: log per-cycle statistics

	gcRunning bool // reentrancy guard (spec.md §4.4 invariants)

	onGC func(stats GCStats) // hook used for SHI_DEBUG_GC logging
}

// NewHeap creates a Heap whose each semispace can hold up to capacity
// objects before a collection is triggered.
func NewHeap(capacity int) *Heap {
	return &Heap{
		capacity:  capacity,
		toSpace:   make([]heapObject, 0, capacity),
		fromSpace: make([]heapObject, 0, capacity),
	}
}

// used returns the number of live slots in the active to-space.
func (h *Heap) used() int { return len(h.toSpace) }

func (h *Heap) object(r ref) *heapObject { return &h.toSpace[r] }

// alloc implements the allocation contract of spec.md §4.1: if the
// active space would overflow, a GC runs first (in.collectGarbage);
// if it is still insufficient afterwards,
// allocation fails with a fatal memory-exhausted error. alloc must
// never be called while a GC cycle is in progress (gcRunning) — the
// collector is not reentrant (§4.4).
func (h *Heap) alloc(in *Interp, obj heapObject) (ref, error) {
	if h.gcRunning {
		panic("shi: allocation attempted during garbage collection")
	}
	if h.alwaysGC || len(h.toSpace) >= h.capacity {
		// obj's fields were read before this collection; root them
		// across it so they come back pointing into the new space.
		fields := []*Value{&obj.car, &obj.cdr, &obj.proto, &obj.params, &obj.env}
		for i := range obj.body {
			fields = append(fields, &obj.body[i])
		}
		fr := in.roots.PushFrame()
		hs := make([]Handle, len(fields))
		for i, p := range fields {
			hs[i] = in.roots.NewHandle(*p)
		}
		in.collectGarbage()
		for i, p := range fields {
			*p = in.roots.Get(hs[i])
		}
		in.roots.Release(fr)
	}
	if len(h.toSpace) >= h.capacity {
		return 0, &RuntimeError{Message: "memory exhausted"}
	}
	h.toSpace = append(h.toSpace, obj)
	h.allocs++
	return ref(len(h.toSpace) - 1), nil
}

// GCStats summarizes one collection cycle, surfaced through
// SHI_DEBUG_GC.
type GCStats struct {
	Cycle       int64
	BeforeUsed  int
	AfterUsed   int
	Capacity    int
	LifetimeAllocs int64
}

func (s GCStats) String() string {
	return fmt.Sprintf("gc#%d: %d -> %d live (capacity %d, %d lifetime allocs)",
		s.Cycle, s.BeforeUsed, s.AfterUsed, s.Capacity, s.LifetimeAllocs)
}

func newCellObject(car, cdr Value) heapObject {
	return heapObject{kind: TagCell, car: car, cdr: cdr}
}

func newStringObject(s string) heapObject {
	return heapObject{kind: TagString, str: s}
}

func newSymbolObject(name string) heapObject {
	return heapObject{kind: TagSymbol, str: name}
}

func newObjectObject(proto Value) heapObject {
	return heapObject{kind: TagObject, proto: proto, buckets: make([]Value, objectBuckets)}
}

func newPrimitiveObject(def *primitiveDef) heapObject {
	return heapObject{kind: TagPrimitive, prim: def}
}

func newClosureObject(params Value, body []Value, env Value) heapObject {
	return heapObject{kind: TagClosure, params: params, body: body, env: env}
}

func newMacroObject(params Value, body []Value, env Value) heapObject {
	return heapObject{kind: TagMacro, params: params, body: body, env: env}
}
