package shi

// rescueFrame is one entry of the bounded stack of rescue points that
// backs `trap-error` (spec.md §4.7, §9's Design Notes). Rather than
// relying on host exceptions, evaluation returns an explicit error at
// every recursive step (see eval.go) and trap-error installs/uninstalls
// a frame around the call it guards; the frame only exists to bound
// recursion depth and to let the evaluator recognize how deep the
// rescue stack currently is for error messages.
type rescueFrame struct {
	handler Value // the handler Closure, retained across the thunk's evaluation
}

// defaultMaxRescueDepth is spec.md §4.7's "bounded...(default 25)".
const defaultMaxRescueDepth = 25

type rescueStack struct {
	frames  []rescueFrame
	maxSize int
}

func newRescueStack() *rescueStack {
	return &rescueStack{maxSize: defaultMaxRescueDepth}
}

func (s *rescueStack) push(handler Value) (*RuntimeError, bool) {
	if len(s.frames) >= s.maxSize {
		return &RuntimeError{Message: "trap-error: rescue stack overflow"}, false
	}
	s.frames = append(s.frames, rescueFrame{handler: handler})
	return nil, true
}

func (s *rescueStack) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *rescueStack) depth() int { return len(s.frames) }

func (s *rescueStack) forwardAll(in *Interp) {
	for i := range s.frames {
		s.frames[i].handler = in.forward(s.frames[i].handler)
	}
}

// trapError implements the `trap-error thunk handler` special form:
// enter a new rescue frame, evaluate `(thunk)`, and on any non-fatal
// error unwind to the frame, bind the error message as a String, and
// evaluate `(handler message)` (spec.md §4.7).
func (in *Interp) trapError(env Value, thunkFn, handlerFn Value) (Value, error) {
	if rerr, ok := in.rescue.push(handlerFn); !ok {
		return Nil, rerr
	}
	defer in.rescue.pop()

	f := in.roots.PushFrame()
	defer in.roots.Release(f)
	thunkH := in.roots.NewHandle(thunkFn)
	handlerH := in.roots.NewHandle(handlerFn)

	callThunk, err := in.list(in.roots.Get(thunkH))
	if err != nil {
		return Nil, err
	}
	result, evalErr := in.Eval(env, callThunk)
	if evalErr == nil {
		return result, nil
	}

	if isFatal(evalErr) {
		return Nil, evalErr
	}

	msg, err := in.newString(errorMessage(evalErr))
	if err != nil {
		return Nil, err
	}
	msgH := in.roots.NewHandle(msg)

	callHandler, err := in.list(in.roots.Get(handlerH), in.roots.Get(msgH))
	if err != nil {
		return Nil, err
	}
	return in.Eval(env, callHandler)
}

// isFatal reports whether err is one of the non-catchable runtime
// errors from spec.md §7 ("Fatal errors...MUST NOT be catchable by
// trap-error").
func isFatal(err error) bool {
	_, ok := err.(*RuntimeError)
	return ok
}

func errorMessage(err error) string {
	switch e := err.(type) {
	case *UserError:
		return e.Message
	default:
		return err.Error()
	}
}
