package textrun

import (
	"context"

	pool "github.com/jolestar/go-commons-pool"
)

// RuneBuffer is a re-usable buffer of runes. Batches of text for bidi
// analysis and word chunks for hyphenation are short-lived; to avoid
// re-allocating their buffers over and over, we pool them.
type RuneBuffer struct {
	Runes []rune
}

type runeBufferPool struct {
	opool *pool.ObjectPool
	ctx   context.Context
}

var globalBufferPool *runeBufferPool

func init() {
	globalBufferPool = &runeBufferPool{}
	factory := pool.NewPooledObjectFactorySimple(
		func(context.Context) (interface{}, error) {
			buf := &RuneBuffer{Runes: make([]rune, 0, 128)}
			return buf, nil
		})
	globalBufferPool.ctx = context.Background()
	config := pool.NewDefaultPoolConfig()
	config.MaxTotal = -1 // infinity
	config.BlockWhenExhausted = false
	globalBufferPool.opool = pool.NewObjectPool(globalBufferPool.ctx, factory, config)
}

// BorrowRuneBuffer returns an empty rune buffer from a pool. Clients should
// call Release when done with it.
func BorrowRuneBuffer() *RuneBuffer {
	o, err := globalBufferPool.opool.BorrowObject(globalBufferPool.ctx)
	if err != nil {
		CT().Errorf("cannot borrow rune buffer from pool: %v", err)
		return &RuneBuffer{}
	}
	buf := o.(*RuneBuffer)
	buf.Runes = buf.Runes[:0]
	return buf
}

// Release clears the buffer and puts it back into the pool. The buffer must
// not be used afterwards.
func (buf *RuneBuffer) Release() {
	if buf == nil {
		return
	}
	buf.Runes = buf.Runes[:0]
	_ = globalBufferPool.opool.ReturnObject(globalBufferPool.ctx, buf)
}

// Append appends runes to the buffer.
func (buf *RuneBuffer) Append(rs ...rune) {
	buf.Runes = append(buf.Runes, rs...)
}

// Len returns the number of runes in the buffer.
func (buf *RuneBuffer) Len() int {
	return len(buf.Runes)
}
