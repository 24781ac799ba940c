package transport

import (
	"sync"

	"github.com/joshuafuller/zeroconf/internal/protocol"
)

// bufferPool holds receive buffers sized for the largest mDNS datagram
// (RFC 6762 §17).
var bufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, protocol.MaxMessageSize)
		return &buf
	},
}

// GetBuffer returns a receive buffer from the pool.
func GetBuffer() *[]byte {
	return bufferPool.Get().(*[]byte)
}

// PutBuffer returns buf to the pool. Callers must not use it afterwards.
func PutBuffer(buf *[]byte) {
	if buf == nil || cap(*buf) < protocol.MaxMessageSize {
		return
	}
	*buf = (*buf)[:protocol.MaxMessageSize]
	bufferPool.Put(buf)
}
