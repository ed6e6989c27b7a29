package shi

// cons allocates a Cell (spec.md §3.2).
func (in *Interp) cons(car, cdr Value) (Value, error) {
	f := in.roots.PushFrame()
	defer in.roots.Release(f)
	carH := in.roots.NewHandle(car)
	cdrH := in.roots.NewHandle(cdr)

	r, err := in.heap.alloc(in, newCellObject(in.roots.Get(carH), in.roots.Get(cdrH)))
	if err != nil {
		return Nil, err
	}
	return Value{tag: TagCell, r: r}, nil
}

func (in *Interp) car(v Value) (Value, error) {
	if v.tag != TagCell {
		return Nil, &TypeError{Who: "car", Expected: "cell", Got: v.tag}
	}
	return in.heap.object(v.r).car, nil
}

func (in *Interp) cdr(v Value) (Value, error) {
	if v.tag != TagCell {
		return Nil, &TypeError{Who: "cdr", Expected: "cell", Got: v.tag}
	}
	return in.heap.object(v.r).cdr, nil
}

func (in *Interp) setCar(v, newCar Value) error {
	if v.tag != TagCell {
		return &TypeError{Who: "set-car!", Expected: "cell", Got: v.tag}
	}
	in.heap.object(v.r).car = newCar
	return nil
}

func (in *Interp) setCdr(v, newCdr Value) error {
	if v.tag != TagCell {
		return &TypeError{Who: "set-cdr!", Expected: "cell", Got: v.tag}
	}
	in.heap.object(v.r).cdr = newCdr
	return nil
}

// list builds a proper list out of vs, right to left.
func (in *Interp) list(vs ...Value) (Value, error) {
	f := in.roots.PushFrame()
	defer in.roots.Release(f)

	result := Nil
	rh := in.roots.NewHandle(result)
	for i := len(vs) - 1; i >= 0; i-- {
		vh := in.roots.NewHandle(vs[i])
		cell, err := in.cons(in.roots.Get(vh), in.roots.Get(rh))
		if err != nil {
			return Nil, err
		}
		in.roots.Set(rh, cell)
	}
	return in.roots.Get(rh), nil
}

// length implements spec.md §3.2: the number of Cells before Nil for a
// proper list, or -1 for an improper (dotted) one.
func (in *Interp) length(v Value) int {
	n := 0
	for v.tag == TagCell {
		n++
		v = in.heap.object(v.r).cdr
	}
	if v.tag != TagNil {
		return -1
	}
	return n
}

// listToSlice collects a proper list's elements into a Go slice. ok is
// false if v is an improper list.
func (in *Interp) listToSlice(v Value) (vals []Value, ok bool) {
	for v.tag == TagCell {
		obj := in.heap.object(v.r)
		vals = append(vals, obj.car)
		v = obj.cdr
	}
	return vals, v.tag == TagNil
}

func (in *Interp) newString(s string) (Value, error) {
	r, err := in.heap.alloc(in, newStringObject(s))
	if err != nil {
		return Nil, err
	}
	return Value{tag: TagString, r: r}, nil
}

func (in *Interp) stringValue(v Value) (string, error) {
	if v.tag != TagString {
		return "", &TypeError{Who: "string", Expected: "string", Got: v.tag}
	}
	return in.heap.object(v.r).str, nil
}
