package shi

// Handle is an indirection into the RootRegistry's slot vector. Spec.md
// §9's Design Notes prefer this "first-class Handle abstraction... with
// scope tied to the calling function" over the C source's literal
// stack-linked frames of pointer-to-pointer; a mark/reset stack gives
// the same discipline without depending on host stack layout.
//
// Any Value read from the heap and retained across a call that may
// allocate MUST be held through a Handle, never copied directly into a
// local variable — the bare copy's ref can be invalidated by the next
// GC cycle. SHI_ALWAYS_GC exists precisely to catch violations of this
// rule (spec.md §4.2).
type Handle int

// RootRegistry is the GC's view into every live handle: the
// call-scoped scratch stack (pushed and popped as host functions
// enter and leave) and the persistent store used by long-lived
// retained values such as pending event-loop callbacks (spec.md §3.6).
type RootRegistry struct {
	scratch []Value

	persistent    map[int]Value
	nextPersistID int
}

func newRootRegistry() *RootRegistry {
	return &RootRegistry{persistent: make(map[int]Value)}
}

// Frame marks a point in the scratch stack. Pair every Frame with a
// deferred Release to unwind handles created since.
type Frame struct {
	mark int
}

// PushFrame opens a new scope for handles.
func (r *RootRegistry) PushFrame() Frame {
	return Frame{mark: len(r.scratch)}
}

// Release discards every handle allocated since f was opened. Handles
// obtained before f remain valid; handles obtained after f must not be
// used past this call.
func (r *RootRegistry) Release(f Frame) {
	r.scratch = r.scratch[:f.mark]
}

// NewHandle registers v in the current scratch frame and returns a
// Handle that stays valid (and is kept up to date across GC cycles)
// until the enclosing Frame is released.
func (r *RootRegistry) NewHandle(v Value) Handle {
	r.scratch = append(r.scratch, v)
	return Handle(len(r.scratch) - 1)
}

// Get dereferences a scratch handle.
func (r *RootRegistry) Get(h Handle) Value { return r.scratch[h] }

// Set overwrites the Value a scratch handle refers to.
func (r *RootRegistry) Set(h Handle, v Value) { r.scratch[h] = v }

// persistentID identifies a long-lived handle, e.g. an event-loop
// watcher's retained callback (spec.md §3.6, §5).
type persistentID int

func (r *RootRegistry) newPersistent(v Value) persistentID {
	id := r.nextPersistID
	r.nextPersistID++
	r.persistent[id] = v
	return persistentID(id)
}

func (r *RootRegistry) getPersistent(id persistentID) (Value, bool) {
	v, ok := r.persistent[int(id)]
	return v, ok
}

func (r *RootRegistry) setPersistent(id persistentID, v Value) {
	r.persistent[int(id)] = v
}

func (r *RootRegistry) dropPersistent(id persistentID) {
	delete(r.persistent, int(id))
}

// forwardAll relocates every live root, called by the collector during
// the "Forward roots" phase (spec.md §4.4 step 2).
func (r *RootRegistry) forwardAll(in *Interp) {
	for i, v := range r.scratch {
		r.scratch[i] = in.forward(v)
	}
	for id, v := range r.persistent {
		r.persistent[id] = in.forward(v)
	}
}
