package term

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminal_RegularFileIsNotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "not-a-tty")
	assert.NoError(t, err)
	defer f.Close()

	assert.False(t, IsTerminal(int(f.Fd())))
}

func TestSetRaw_InvalidFDErrors(t *testing.T) {
	_, err := SetRaw(-1)
	assert.Error(t, err)
}

func TestRestore_NilStateIsANoOp(t *testing.T) {
	assert.NoError(t, Restore(-1, nil))
}
