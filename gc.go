package shi

// collectGarbage runs one Cheney semispace cycle, per spec.md §4.4.
//
//  1. Flip: the dormant space becomes the new to-space.
//  2. Forward roots: every root Value is relocated.
//  3. Scan-and-copy: walk newly copied objects in FIFO order,
//     forwarding every Value-typed field per the per-tag table.
//  4. Reclaim: the old to-space (now from-space) is simply dropped.
func (in *Interp) collectGarbage() {
	h := in.heap
	h.gcRunning = true
	defer func() { h.gcRunning = false }()

	before := h.used()

	h.fromSpace, h.toSpace = h.toSpace, h.fromSpace[:0]

	// Forward roots (step 2). Order matches spec.md §4.3: the symbol
	// list is a dedicated root forwarded first, then the global
	// environment, then every live handle.
	in.symtab.head = in.forward(in.symtab.head)
	in.globalEnv = in.forward(in.globalEnv)
	in.roots.forwardAll(in)
	in.rescue.forwardAll(in)

	// Scan-and-copy loop (step 3): scan grows as copies append to
	// h.toSpace, exactly the worklist behavior Cheney's algorithm
	// needs without a separate queue.
	for scan := 0; scan < len(h.toSpace); scan++ {
		obj := &h.toSpace[scan]
		switch obj.kind {
		case TagCell:
			obj.car = in.forward(obj.car)
			obj.cdr = in.forward(obj.cdr)
		case TagObject:
			obj.proto = in.forward(obj.proto)
			for i, b := range obj.buckets {
				obj.buckets[i] = in.forward(b)
			}
		case TagClosure, TagMacro:
			obj.params = in.forward(obj.params)
			for i, b := range obj.body {
				obj.body[i] = in.forward(b)
			}
			obj.env = in.forward(obj.env)
		case TagString, TagSymbol, TagPrimitive:
			// no Value-typed fields to forward
		}
	}

	// Reclaim (step 4): drop references into from-space so its
	// backing array can be reused/GC'd by the Go runtime.
	for i := range h.fromSpace {
		h.fromSpace[i] = heapObject{}
	}
	h.fromSpace = h.fromSpace[:0]

	in.gcCycle++
	stats := GCStats{
		Cycle:          in.gcCycle,
		BeforeUsed:     before,
		AfterUsed:      h.used(),
		Capacity:       h.capacity,
		LifetimeAllocs: h.allocs,
	}
	if h.debugGC && h.onGC != nil {
		h.onGC(stats)
	}
}

// forward relocates v into to-space, following and updating a Moved
// tombstone if the object was already copied earlier in this cycle
// (spec.md §4.4's forward(v) semantics). Immediate values (Integer,
// Nil, True, sentinels) are returned unchanged: they never occupy the
// heap, so there is nothing to relocate.
func (in *Interp) forward(v Value) Value {
	if !isHeapTag(v.tag) {
		return v
	}

	old := &in.heap.fromSpace[v.r]
	if old.moved {
		return Value{tag: v.tag, r: old.movedRef}
	}

	// Bit-copy the object to the new to-space and leave a tombstone
	// in its old slot pointing at the new location.
	in.heap.toSpace = append(in.heap.toSpace, *old)
	newRef := ref(len(in.heap.toSpace) - 1)
	*old = heapObject{kind: old.kind, moved: true, movedRef: newRef}
	return Value{tag: v.tag, r: newRef}
}
