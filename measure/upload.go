package measure

import "time"

// Upload is the per-transit sender-side pipeline stage: buffer occupancy
// plus a bandwidth cursor into the sender's upload CongestionChannel.
//
// Go has no deterministic destructors; the reference implementation's
// "free remaining buffer bytes on drop" behavior is reproduced by an
// explicit Release, which the owning Transit calls exactly once when it
// is discarded (completed, corrupted, or abandoned).
type Upload struct {
	buffer   *Gauge
	inBuffer uint64
	channel  *CongestionChannel
}

// NewUpload creates an Upload stage over shared node buffer/channel handles.
func NewUpload(buffer *Gauge, channel *CongestionChannel) *Upload {
	return &Upload{buffer: buffer, channel: channel}
}

// Send attempts to charge size bytes against the sender's upload buffer,
// all-or-nothing: a partial reservation is rolled back and Send returns
// false.
func (u *Upload) Send(size uint64) bool {
	reserved := u.buffer.Reserve(size)
	if reserved != size {
		u.buffer.Free(reserved)
		return false
	}
	u.inBuffer = size
	return true
}

// UpdateCapacity advances the upload's congestion channel to the given
// round.
func (u *Upload) UpdateCapacity(round Round, duration time.Duration) {
	u.channel.UpdateCapacity(round, duration)
}

// Process consumes from the congestion channel up to the bytes held in the
// buffer, frees that many bytes from the buffer, and returns the number of
// bytes that advanced.
func (u *Upload) Process() uint64 {
	reserved := u.channel.Reserve(u.inBuffer)
	u.buffer.Free(reserved)
	if reserved > u.inBuffer {
		u.inBuffer = 0
	} else {
		u.inBuffer -= reserved
	}
	return reserved
}

// BytesInBuffer returns the bytes currently held in the upload buffer for
// this transit.
func (u *Upload) BytesInBuffer() uint64 { return u.inBuffer }

// BufferMaxSize returns the sender's upload buffer's maximum capacity.
func (u *Upload) BufferMaxSize() uint64 { return u.buffer.MaximumCapacity() }

// BufferSize returns the sender's upload buffer's currently used capacity.
func (u *Upload) BufferSize() uint64 { return u.buffer.UsedCapacity() }

// ChannelBandwidth returns the configured bandwidth of the upload channel.
func (u *Upload) ChannelBandwidth() Bandwidth { return u.channel.Bandwidth() }

// ChannelRemainingBandwidth returns the upload channel's remaining
// bandwidth capacity for the current round.
func (u *Upload) ChannelRemainingBandwidth() uint64 { return u.channel.Capacity() }

// Release frees any bytes still held in the upload buffer. Must be called
// exactly once when the Upload is discarded.
func (u *Upload) Release() {
	u.buffer.Free(u.inBuffer)
	u.inBuffer = 0
}
