package core

// ChannelCount is the number of channel slots in the built-in payload
const ChannelCount = 26

// defaultPayload is the fixed frame content: null start code, then
// channel levels 1..26
var defaultPayload = [1 + ChannelCount]byte{
	0x00,
	1, 2, 3, 4, 5, 6, 7, 8, 9, 10,
	11, 12, 13, 14, 15, 16, 17, 18, 19, 20,
	21, 22, 23, 24, 25, 26,
}

// DefaultPayload returns a copy of the built-in frame content
func DefaultPayload() []byte {
	p := defaultPayload
	return p[:]
}

// TxBuffer is an immutable payload with a transmit cursor.
//
// Ownership: the control loop calls Reset between frames while the serial
// interrupt is disabled; the transmit path (synchronous push, then the
// serial ISR) calls HasMore and TakeNext during a frame.
type TxBuffer struct {
	data []byte
	next  int // Next byte to send
	end   int // Last byte to send (inclusive)
	taken int // Bytes returned by TakeNext since Reset
}

// NewTxBuffer creates a buffer over a copy of payload.
// The buffer starts exhausted; call Reset before sending.
func NewTxBuffer(payload []byte) *TxBuffer {
	if len(payload) == 0 {
		panic("TxBuffer: empty payload")
	}
	data := make([]byte, len(payload))
	copy(data, payload)
	return &TxBuffer{
		data: data,
		next: len(data),
		end:  len(data) - 1,
	}
}

// Reset rewinds the cursor to the start of the payload
func (b *TxBuffer) Reset() {
	b.next = 0
	b.end = len(b.data) - 1
	b.taken = 0
}

// HasMore reports whether bytes remain in the current frame
func (b *TxBuffer) HasMore() bool {
	return b.next <= b.end
}

// TakeNext returns the next byte and advances the cursor.
// Must only be called while HasMore is true.
func (b *TxBuffer) TakeNext() byte {
	v := b.data[b.next]
	b.next++
	b.taken++
	return v
}

// Discard moves the cursor past the end, dropping the rest of the frame.
// Dropped bytes do not count as sent.
func (b *TxBuffer) Discard() {
	b.next = b.end + 1
}

// Len returns the payload length
func (b *TxBuffer) Len() int {
	return len(b.data)
}

// Sent returns how many bytes have been taken since the last Reset
func (b *TxBuffer) Sent() int {
	return b.taken
}

// Remaining returns how many bytes are left in the current frame
func (b *TxBuffer) Remaining() int {
	if b.next > b.end {
		return 0
	}
	return b.end - b.next + 1
}

// Payload returns a copy of the buffer contents
func (b *TxBuffer) Payload() []byte {
	p := make([]byte, len(b.data))
	copy(p, b.data)
	return p
}
