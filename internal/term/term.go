// Package term wraps the termios toggling and terminal-detection the
// core's `term-raw` and `isatty` host primitives need (spec.md §6).
// golang.org/x/sys/unix is used here instead of hand-rolled ioctl
// numbers, the way the retrieved corpus's platform-specific files
// reach for it for anything termios- or syscall-shaped.
package term

import "golang.org/x/sys/unix"

// IsTerminal reports whether fd refers to a terminal device.
func IsTerminal(fd int) bool {
	_, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	return err == nil
}

// State is the saved termios state a prior call to SetRaw can later
// restore.
type State struct {
	termios unix.Termios
}

// SetRaw puts fd into raw mode (no echo, no line buffering, no signal
// generation from control characters) and returns the previous state
// so the caller can restore it later.
func SetRaw(fd int) (*State, error) {
	prev, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, err
	}
	saved := *prev
	raw := *prev

	raw.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	raw.Cflag &^= unix.CSIZE | unix.PARENB
	raw.Cflag |= unix.CS8
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &raw); err != nil {
		return nil, err
	}
	return &State{termios: saved}, nil
}

// Restore puts fd back into the mode State was captured from.
func Restore(fd int, s *State) error {
	if s == nil {
		return nil
	}
	return unix.IoctlSetTermios(fd, ioctlSetTermios, &s.termios)
}
