package shi

import (
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/shi-lang/shi/internal/evloop"
	"github.com/shi-lang/shi/internal/term"
)

// hostFD is one entry of the host's file-descriptor table. Lisp code
// only ever sees the small integer key into this table, never the raw
// OS descriptor — this mirrors spec.md §6's "POSIX-style socket" and
// "open path" contracts without exposing host-specific fd numbering.
type hostFD struct {
	fd int // raw OS descriptor
}

// hostState is the platform-facing half of an Interp: the fd table,
// the event loop, and the original stdin termios so exit() can always
// restore it (spec.md §7: "restores terminal state" on an unhandled
// error).
type hostState struct {
	fds    map[int]*hostFD
	nextFD int

	loop *evloop.Loop

	stdinRaw *term.State
}

func newHostState() *hostState {
	h := &hostState{
		fds:    make(map[int]*hostFD),
		nextFD: 3,
		loop:   evloop.New(),
	}
	h.fds[0] = &hostFD{fd: 0}
	h.fds[1] = &hostFD{fd: 1}
	h.fds[2] = &hostFD{fd: 2}
	return h
}

func (h *hostState) alloc(raw int) int {
	id := h.nextFD
	h.nextFD++
	h.fds[id] = &hostFD{fd: raw}
	return id
}

func (h *hostState) lookup(id int64) (*hostFD, bool) {
	f, ok := h.fds[int(id)]
	return f, ok
}

// PumpEvents ticks the event loop once and dispatches every ready
// callback through Eval, implementing spec.md §5's "that invocation
// happens on the same thread... between evaluator steps." cmd/shi
// calls this after every top-level form; sleep and accept call it too
// since both are documented suspension points.
func (in *Interp) PumpEvents() error {
	for _, r := range in.host.loop.Tick() {
		cbVal, ok := in.roots.getPersistent(persistentID(r.Callback))
		if !ok {
			continue
		}
		if r.OneShot {
			in.roots.dropPersistent(persistentID(r.Callback))
		}
		callForm, err := in.list(cbVal)
		if err != nil {
			return err
		}
		if _, err := in.Eval(in.globalEnv, callForm); err != nil {
			return err
		}
	}
	return nil
}

func primWrite(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 2 || args[0].tag != TagInteger || args[1].tag != TagString {
		return Nil, &TypeError{Who: "write", Expected: "fd, string", Got: 0}
	}
	f, ok := in.host.lookup(args[0].Int())
	if !ok {
		return Nil, &HostError{Op: "write", Err: os.ErrClosed}
	}
	s, _ := in.stringValue(args[1])
	buf := []byte(s)
	for len(buf) > 0 {
		n, err := unix.Write(f.fd, buf)
		if err != nil {
			return Nil, &HostError{Op: "write", Err: err}
		}
		if n == 0 {
			return Nil, &HostError{Op: "write", Err: io.ErrShortWrite}
		}
		buf = buf[n:]
	}
	return Nil, nil
}

func primRead(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 2 || args[0].tag != TagInteger || args[1].tag != TagInteger {
		return Nil, &TypeError{Who: "read", Expected: "fd, count", Got: 0}
	}
	f, ok := in.host.lookup(args[0].Int())
	if !ok {
		return Nil, &HostError{Op: "read", Err: os.ErrClosed}
	}
	n := args[1].Int()
	if n < 0 {
		return Nil, &TypeError{Who: "read", Expected: "non-negative count", Got: TagInteger}
	}
	buf := make([]byte, n)
	read, err := unix.Read(f.fd, buf)
	if err != nil && err != unix.EAGAIN {
		return Nil, &HostError{Op: "read", Err: err}
	}
	if read < 0 {
		read = 0
	}
	return in.newString(string(buf[:read]))
}

func primOpen(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) < 1 || len(args) > 2 || args[0].tag != TagString {
		return Nil, &TypeError{Who: "open", Expected: "path [mode]", Got: 0}
	}
	path, _ := in.stringValue(args[0])
	mode := "r"
	if len(args) == 2 {
		if args[1].tag != TagString {
			return Nil, &TypeError{Who: "open", Expected: "string mode", Got: args[1].tag}
		}
		mode, _ = in.stringValue(args[1])
	}
	var flags int
	switch mode {
	case "r":
		flags = unix.O_RDONLY
	case "w":
		flags = unix.O_WRONLY | unix.O_CREAT | unix.O_TRUNC
	case "a":
		flags = unix.O_WRONLY | unix.O_CREAT | unix.O_APPEND
	case "r+":
		flags = unix.O_RDWR
	default:
		return Nil, &TypeError{Who: "open", Expected: `mode "r", "w", "a", or "r+"`, Got: 0}
	}
	raw, err := unix.Open(path, flags, 0644)
	if err != nil {
		return Nil, &HostError{Op: "open", Err: err}
	}
	return Integer(int64(in.host.alloc(raw))), nil
}

func primClose(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 1 || args[0].tag != TagInteger {
		return Nil, &TypeError{Who: "close", Expected: "fd", Got: 0}
	}
	f, ok := in.host.lookup(args[0].Int())
	if !ok {
		return Nil, &HostError{Op: "close", Err: os.ErrClosed}
	}
	delete(in.host.fds, int(args[0].Int()))
	if err := unix.Close(f.fd); err != nil {
		return Nil, &HostError{Op: "close", Err: err}
	}
	return Nil, nil
}

func primIsatty(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 1 || args[0].tag != TagInteger {
		return Nil, &TypeError{Who: "isatty", Expected: "fd", Got: 0}
	}
	f, ok := in.host.lookup(args[0].Int())
	if !ok || !term.IsTerminal(f.fd) {
		return Nil, nil
	}
	return True, nil
}

func primGetenv(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 1 || args[0].tag != TagString {
		return Nil, &TypeError{Who: "getenv", Expected: "string", Got: 0}
	}
	name, _ := in.stringValue(args[0])
	v, ok := os.LookupEnv(name)
	if !ok {
		return Nil, nil
	}
	return in.newString(v)
}

func primSeconds(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 0 {
		return Nil, &ArityError{Who: "seconds", Expected: "exactly 0", Got: len(args)}
	}
	return Integer(time.Now().Unix()), nil
}

// primSleep blocks for ms milliseconds, then pumps the event loop:
// sleep is one of spec.md §5's documented suspension points.
func primSleep(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 1 || args[0].tag != TagInteger {
		return Nil, &TypeError{Who: "sleep", Expected: "milliseconds", Got: 0}
	}
	time.Sleep(time.Duration(args[0].Int()) * time.Millisecond)
	if err := in.PumpEvents(); err != nil {
		return Nil, err
	}
	return Nil, nil
}

func primExit(in *Interp, env Value, args []Value) (Value, error) {
	code := 0
	if len(args) == 1 && args[0].tag == TagInteger {
		code = int(args[0].Int())
	}
	restoreStdinTermios(in)
	os.Exit(code)
	return Nil, nil
}

// restoreStdinTermios puts stdin back out of raw mode if term-raw ever
// put it there, and is safe to call unconditionally.
func restoreStdinTermios(in *Interp) {
	if in.host.stdinRaw == nil {
		return
	}
	term.Restore(0, in.host.stdinRaw)
	in.host.stdinRaw = nil
}

func primSocket(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 3 {
		return Nil, &ArityError{Who: "socket", Expected: "exactly 3", Got: len(args)}
	}
	for _, a := range args {
		if a.tag != TagInteger {
			return Nil, &TypeError{Who: "socket", Expected: "integer", Got: a.tag}
		}
	}
	raw, err := unix.Socket(int(args[0].Int()), int(args[1].Int()), int(args[2].Int()))
	if err != nil {
		return Nil, &HostError{Op: "socket", Err: err}
	}
	if err := unix.SetNonblock(raw, true); err != nil {
		unix.Close(raw)
		return Nil, &HostError{Op: "socket", Err: err}
	}
	return Integer(int64(in.host.alloc(raw))), nil
}

func primBindInet(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 3 || args[0].tag != TagInteger || args[1].tag != TagString || args[2].tag != TagInteger {
		return Nil, &TypeError{Who: "bind-inet", Expected: "fd, host, port", Got: 0}
	}
	f, ok := in.host.lookup(args[0].Int())
	if !ok {
		return Nil, &HostError{Op: "bind-inet", Err: os.ErrClosed}
	}
	hostStr, _ := in.stringValue(args[1])
	addr, err := parseIPv4(hostStr)
	if err != nil {
		return Nil, &HostError{Op: "bind-inet", Err: err}
	}
	sa := &unix.SockaddrInet4{Port: int(args[2].Int()), Addr: addr}
	if err := unix.Bind(f.fd, sa); err != nil {
		return Nil, &HostError{Op: "bind-inet", Err: err}
	}
	return Nil, nil
}

func primListen(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 2 || args[0].tag != TagInteger || args[1].tag != TagInteger {
		return Nil, &TypeError{Who: "listen", Expected: "fd, backlog", Got: 0}
	}
	f, ok := in.host.lookup(args[0].Int())
	if !ok {
		return Nil, &HostError{Op: "listen", Err: os.ErrClosed}
	}
	if err := unix.Listen(f.fd, int(args[1].Int())); err != nil {
		return Nil, &HostError{Op: "listen", Err: err}
	}
	return Nil, nil
}

// primAccept returns a client fd, or Nil if no connection is pending
// (spec.md §6 and §5's "returning Nil when a non-blocking socket has
// no pending connection" suspension point).
func primAccept(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 1 || args[0].tag != TagInteger {
		return Nil, &TypeError{Who: "accept", Expected: "fd", Got: 0}
	}
	f, ok := in.host.lookup(args[0].Int())
	if !ok {
		return Nil, &HostError{Op: "accept", Err: os.ErrClosed}
	}
	if err := in.PumpEvents(); err != nil {
		return Nil, err
	}
	clientFD, _, err := unix.Accept(f.fd)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
			return Nil, nil
		}
		return Nil, &HostError{Op: "accept", Err: err}
	}
	if err := unix.SetNonblock(clientFD, true); err != nil {
		unix.Close(clientFD)
		return Nil, &HostError{Op: "accept", Err: err}
	}
	return Integer(int64(in.host.alloc(clientFD))), nil
}

// evKind maps the Symbol naming a watcher kind to evloop.Kind.
func evKind(in *Interp, sym Value) (evloop.Kind, error) {
	if sym.tag != TagSymbol {
		return 0, &TypeError{Who: "ev-start", Expected: "symbol", Got: sym.tag}
	}
	switch in.symbolName(sym) {
	case "read":
		return evloop.Read, nil
	case "write":
		return evloop.Write, nil
	case "timer":
		return evloop.Timer, nil
	case "signal":
		return evloop.Signal, nil
	default:
		return 0, &TypeError{Who: "ev-start", Expected: "read, write, timer, or signal", Got: sym.tag}
	}
}

// primEvStart implements `ev-start type cb [arg]` (spec.md §6). `type`
// is `read`/`write` with an fd argument, `timer` with a millisecond
// delay argument, or `signal` with a POSIX signal number argument.
func primEvStart(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return Nil, &ArityError{Who: "ev-start", Expected: "2 or 3", Got: len(args)}
	}
	kind, err := evKind(in, args[0])
	if err != nil {
		return Nil, err
	}
	if args[1].tag != TagClosure {
		return Nil, &TypeError{Who: "ev-start", Expected: "closure callback", Got: args[1].tag}
	}
	cbID := int(in.roots.newPersistent(args[1]))

	switch kind {
	case evloop.Timer:
		if len(args) < 3 || args[2].tag != TagInteger {
			return Nil, &TypeError{Who: "ev-start", Expected: "millisecond delay", Got: 0}
		}
		delay := time.Duration(args[2].Int()) * time.Millisecond
		return Integer(int64(in.host.loop.StartTimer(delay, cbID))), nil
	case evloop.Read, evloop.Write:
		if len(args) < 3 || args[2].tag != TagInteger {
			return Nil, &TypeError{Who: "ev-start", Expected: "fd argument", Got: 0}
		}
		f, ok := in.host.lookup(args[2].Int())
		if !ok {
			return Nil, &HostError{Op: "ev-start", Err: os.ErrClosed}
		}
		return Integer(int64(in.host.loop.StartIO(kind, f.fd, cbID))), nil
	default: // Signal
		if len(args) < 3 || args[2].tag != TagInteger {
			return Nil, &TypeError{Who: "ev-start", Expected: "signal number", Got: 0}
		}
		ch := make(chan int, 1)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.Signal(args[2].Int()))
		go func() {
			<-sigCh
			ch <- 1
		}()
		return Integer(int64(in.host.loop.StartSignal(ch, cbID))), nil
	}
}

// primEvStop implements `ev-stop id`.
func primEvStop(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 1 || args[0].tag != TagInteger {
		return Nil, &TypeError{Who: "ev-stop", Expected: "id", Got: 0}
	}
	if in.host.loop.Stop(int(args[0].Int())) {
		return True, nil
	}
	return Nil, nil
}

// primTermRaw implements `term-raw t?`: toggles raw mode on stdin.
func primTermRaw(in *Interp, env Value, args []Value) (Value, error) {
	if len(args) != 1 {
		return Nil, &ArityError{Who: "term-raw", Expected: "exactly 1", Got: len(args)}
	}
	if args[0].Truthy() {
		if in.host.stdinRaw != nil {
			return Nil, nil
		}
		st, err := term.SetRaw(0)
		if err != nil {
			return Nil, &HostError{Op: "term-raw", Err: err}
		}
		in.host.stdinRaw = st
		return Nil, nil
	}
	if in.host.stdinRaw == nil {
		return Nil, nil
	}
	restoreStdinTermios(in)
	return Nil, nil
}

// parseIPv4 parses a dotted-quad string into the 4-byte address
// SockaddrInet4 wants, avoiding a net.ResolveIPAddr round trip (and
// its DNS-lookup generality) for what bind-inet's contract documents
// as IPv4-only (spec.md §6).
func parseIPv4(s string) ([4]byte, error) {
	var out [4]byte
	if s == "" || s == "0.0.0.0" {
		return out, nil
	}
	var parts [4]int
	idx := 0
	cur := 0
	digits := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '.' {
			if digits == 0 || idx > 3 {
				return out, &os.PathError{Op: "parse", Path: s, Err: os.ErrInvalid}
			}
			parts[idx] = cur
			idx++
			cur = 0
			digits = 0
			continue
		}
		c := s[i]
		if c < '0' || c > '9' {
			return out, &os.PathError{Op: "parse", Path: s, Err: os.ErrInvalid}
		}
		cur = cur*10 + int(c-'0')
		digits++
	}
	if idx != 4 {
		return out, &os.PathError{Op: "parse", Path: s, Err: os.ErrInvalid}
	}
	for i, p := range parts {
		if p > 255 {
			return out, &os.PathError{Op: "parse", Path: s, Err: os.ErrInvalid}
		}
		out[i] = byte(p)
	}
	return out, nil
}
