package measure

import "time"

// Download is the per-transit receiver-side pipeline stage: a bandwidth
// cursor into the receiver's download CongestionChannel plus buffer
// occupancy, with UDP-style overflow loss at either stage.
//
// See [Upload] for why Release replaces the reference implementation's
// Drop impl.
type Download struct {
	channel   *CongestionChannel
	buffer    *Gauge
	inBuffer  uint64
	corrupted bool
}

// NewDownload creates a Download stage over shared node buffer/channel
// handles.
func NewDownload(channel *CongestionChannel, buffer *Gauge) *Download {
	return &Download{channel: channel, buffer: buffer}
}

// Corrupted reports whether this download ever dropped bytes on the floor.
func (d *Download) Corrupted() bool { return d.corrupted }

// UpdateCapacity advances the download's congestion channel to the given
// round.
func (d *Download) UpdateCapacity(round Round, duration time.Duration) {
	d.channel.UpdateCapacity(round, duration)
}

// Process charges size bytes first against the channel, then the channel's
// output against the buffer; any shortfall at either stage marks this
// download corrupted and the shortfall bytes are dropped on the floor.
func (d *Download) Process(size uint64) {
	processed := d.channel.Reserve(size)
	downloaded := d.buffer.Reserve(processed)

	if size != processed || processed != downloaded {
		d.corrupted = true
	}

	d.inBuffer += downloaded
}

// BytesInBuffer returns the bytes currently held in the receiver's download
// buffer for this transit.
func (d *Download) BytesInBuffer() uint64 { return d.inBuffer }

// BufferMaxSize returns the receiver's download buffer's maximum capacity.
func (d *Download) BufferMaxSize() uint64 { return d.buffer.MaximumCapacity() }

// BufferSize returns the receiver's download buffer's currently used
// capacity.
func (d *Download) BufferSize() uint64 { return d.buffer.UsedCapacity() }

// ChannelBandwidth returns the configured bandwidth of the download channel.
func (d *Download) ChannelBandwidth() Bandwidth { return d.channel.Bandwidth() }

// ChannelRemainingBandwidth returns the download channel's remaining
// bandwidth capacity for the current round.
func (d *Download) ChannelRemainingBandwidth() uint64 { return d.channel.Capacity() }

// Release frees any bytes still held in the download buffer. Must be
// called exactly once when the Download is discarded.
func (d *Download) Release() {
	d.buffer.Free(d.inBuffer)
	d.inBuffer = 0
}
