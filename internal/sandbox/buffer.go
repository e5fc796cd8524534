package sandbox

import (
	"sync"

	"github.com/awnumar/memguard"
)

// memguardInitOnce mirrors the teacher's once-only CatchInterrupt setup:
// memguard.Purge on interrupt wipes every outstanding LockedBuffer.
var memguardInitOnce sync.Once

func ensureMemguard() {
	memguardInitOnce.Do(func() {
		memguard.CatchInterrupt()
	})
}

// SecureBuffer holds a copy of untrusted snippet source in locked,
// zeroed-on-release memory for the lifetime of one sandbox run. Nothing
// else (such as secret-looking values seen during file reads) is placed
// in it.
type SecureBuffer struct {
	buffer    *memguard.LockedBuffer
	destroyed bool
}

// NewSecureBuffer copies data into a new mlocked buffer.
func NewSecureBuffer(data []byte) *SecureBuffer {
	ensureMemguard()
	buf := memguard.NewBuffer(len(data))
	copy(buf.Bytes(), data)
	return &SecureBuffer{buffer: buf}
}

// Bytes returns the buffer's current contents. Returns nil once
// Destroy has been called.
func (b *SecureBuffer) Bytes() []byte {
	if b.destroyed {
		return nil
	}
	return b.buffer.Bytes()
}

// Destroy wipes the buffer. Safe to call more than once.
func (b *SecureBuffer) Destroy() {
	if b.destroyed {
		return
	}
	b.buffer.Destroy()
	b.destroyed = true
}
