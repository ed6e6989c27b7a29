package shi

// newObject allocates an Object with the given prototype (Object or
// Nil) and populates it from an alist of (Symbol . Value) pairs
// (spec.md §3.3, §4.8's `obj proto props`).
func (in *Interp) newObject(proto Value, props Value) (Value, error) {
	if proto.tag != TagObject && proto.tag != TagNil {
		return Nil, &TypeError{Who: "obj", Expected: "object or nil", Got: proto.tag}
	}

	f := in.roots.PushFrame()
	defer in.roots.Release(f)
	protoH := in.roots.NewHandle(proto)

	r, err := in.heap.alloc(in, newObjectObject(in.roots.Get(protoH)))
	if err != nil {
		return Nil, err
	}
	objH := in.roots.NewHandle(Value{tag: TagObject, r: r})

	pairs, ok := in.listToSlice(props)
	if !ok {
		return Nil, &TypeError{Who: "obj", Expected: "proper list of pairs", Got: props.tag}
	}
	for _, pair := range pairs {
		if pair.tag != TagCell {
			return Nil, &TypeError{Who: "obj", Expected: "cons pair", Got: pair.tag}
		}
		cell := in.heap.object(pair.r)
		if err := in.objSet(in.roots.Get(objH), cell.car, cell.cdr); err != nil {
			return Nil, err
		}
	}
	return in.roots.Get(objH), nil
}

// objFind looks a key up in obj's own bucket table only — no
// prototype-chain walk (spec.md §3.3: "A lookup walks the prototype
// chain only on find, not on set").
func (in *Interp) objFind(obj Value, key Value) (Value, bool, error) {
	if obj.tag != TagObject {
		return Nil, false, &TypeError{Who: "obj-get", Expected: "object", Got: obj.tag}
	}
	if !in.isValidObjectKey(key) {
		return Nil, false, &TypeError{Who: "obj-get", Expected: "symbol, string, or integer key", Got: key.tag}
	}
	idx, err := in.objKeyHash(key)
	if err != nil {
		return Nil, false, err
	}
	bucket := in.heap.object(obj.r).buckets[idx]
	for bucket.tag == TagCell {
		entryCell := in.heap.object(bucket.r)
		pair := entryCell.car
		pairCell := in.heap.object(pair.r)
		if in.keyEqual(pairCell.car, key) {
			return pairCell.cdr, true, nil
		}
		bucket = entryCell.cdr
	}
	return Nil, false, nil
}

// objFindChain walks find up the prototype chain (spec.md §3.3's "the
// `:` operator... does" walk it, via obj-find). It returns the Object
// whose own table actually holds the binding, which `set` on a bare
// Symbol needs to mutate the correct frame.
func (in *Interp) objFindChain(obj Value, key Value) (owner Value, val Value, ok bool, err error) {
	for cur := obj; cur.tag == TagObject; {
		v, found, ferr := in.objFind(cur, key)
		if ferr != nil {
			return Nil, Nil, false, ferr
		}
		if found {
			return cur, v, true, nil
		}
		cur = in.heap.object(cur.r).proto
	}
	return Nil, Nil, false, nil
}

// objSet writes to obj's own table, creating or overwriting in place
// (spec.md §3.3, invariant: "Exactly one entry per key").
func (in *Interp) objSet(obj Value, key Value, val Value) error {
	if obj.tag != TagObject {
		return &TypeError{Who: "obj-set", Expected: "object", Got: obj.tag}
	}
	if !in.isValidObjectKey(key) {
		return &TypeError{Who: "obj-set", Expected: "symbol, string, or integer key", Got: key.tag}
	}
	idx, err := in.objKeyHash(key)
	if err != nil {
		return err
	}

	f := in.roots.PushFrame()
	defer in.roots.Release(f)
	objH := in.roots.NewHandle(obj)
	keyH := in.roots.NewHandle(key)
	valH := in.roots.NewHandle(val)

	bucket := in.heap.object(in.roots.Get(objH).r).buckets[idx]
	for cur := bucket; cur.tag == TagCell; {
		entryCell := in.heap.object(cur.r)
		pair := entryCell.car
		pairCell := in.heap.object(pair.r)
		if in.keyEqual(pairCell.car, in.roots.Get(keyH)) {
			pairCell.cdr = in.roots.Get(valH)
			return nil
		}
		cur = entryCell.cdr
	}

	bucketH := in.roots.NewHandle(in.heap.object(in.roots.Get(objH).r).buckets[idx])
	pair, err := in.cons(in.roots.Get(keyH), in.roots.Get(valH))
	if err != nil {
		return err
	}
	pairH := in.roots.NewHandle(pair)
	newEntry, err := in.cons(in.roots.Get(pairH), in.roots.Get(bucketH))
	if err != nil {
		return err
	}
	in.heap.object(in.roots.Get(objH).r).buckets[idx] = newEntry
	return nil
}

// objDel removes a key from obj's own table only (spec.md §3.3). Per
// the Open Question resolution in spec.md §9, it accepts the same key
// kinds as objFind/objSet rather than the source's inverted check.
func (in *Interp) objDel(obj Value, key Value) error {
	if obj.tag != TagObject {
		return &TypeError{Who: "obj-del", Expected: "object", Got: obj.tag}
	}
	if !in.isValidObjectKey(key) {
		return &TypeError{Who: "obj-del", Expected: "symbol, string, or integer key", Got: key.tag}
	}
	idx, err := in.objKeyHash(key)
	if err != nil {
		return err
	}
	objData := in.heap.object(obj.r)
	bucket := objData.buckets[idx]

	var prev Value
	for cur := bucket; cur.tag == TagCell; {
		entryCell := in.heap.object(cur.r)
		pair := entryCell.car
		pairCell := in.heap.object(pair.r)
		if in.keyEqual(pairCell.car, key) {
			if prev.tag != TagCell {
				objData.buckets[idx] = entryCell.cdr
			} else {
				in.heap.object(prev.r).cdr = entryCell.cdr
			}
			return nil
		}
		prev = cur
		cur = entryCell.cdr
	}
	return nil
}

// objToAlist implements `obj->alist`: the receiver's own bindings only,
// as a list of (Symbol|String|Integer . Value) pairs.
func (in *Interp) objToAlist(obj Value) (Value, error) {
	if obj.tag != TagObject {
		return Nil, &TypeError{Who: "obj->alist", Expected: "object", Got: obj.tag}
	}
	var pairs []Value
	for _, bucket := range in.heap.object(obj.r).buckets {
		for cur := bucket; cur.tag == TagCell; {
			entryCell := in.heap.object(cur.r)
			pairs = append(pairs, entryCell.car)
			cur = entryCell.cdr
		}
	}
	return in.list(pairs...)
}

func (in *Interp) objProto(obj Value) (Value, error) {
	if obj.tag != TagObject {
		return Nil, &TypeError{Who: "obj-proto", Expected: "object", Got: obj.tag}
	}
	return in.heap.object(obj.r).proto, nil
}

func (in *Interp) objProtoSet(obj Value, proto Value) error {
	if obj.tag != TagObject {
		return &TypeError{Who: "obj-proto-set!", Expected: "object", Got: obj.tag}
	}
	if proto.tag != TagObject && proto.tag != TagNil {
		return &TypeError{Who: "obj-proto-set!", Expected: "object or nil", Got: proto.tag}
	}
	in.heap.object(obj.r).proto = proto
	return nil
}

// objectName / setObjectName read and write the Go-level name field
// that the printer shows as #<object NAME>. A Lisp-level
// *object-name* property set on the object is not consulted.
func (in *Interp) objectName(obj Value) string {
	return in.heap.object(obj.r).name
}

func (in *Interp) setObjectName(obj Value, name string) {
	in.heap.object(obj.r).name = name
}
