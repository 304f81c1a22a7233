// Package packet implements the envelope carried by every transit: an id,
// its two endpoints, a payload, a cached byte-size hint, and an optional
// drop hook.
package packet

import (
	"fmt"
	"sync/atomic"

	"github.com/pkg/errors"

	"netsim/node"
)

// Id is an opaque packet identifier, drawn from an IdGenerator at
// build time (not at send time — see spec.md §9 on drop-at-send not
// drawing an id).
type Id struct{ n uint64 }

// String renders the id as "0x" followed by 16 lowercase hex digits.
func (i Id) String() string { return fmt.Sprintf("0x%016x", i.n) }

// Uint64 returns the id's raw counter value.
func (i Id) Uint64() uint64 { return i.n }

// IdGenerator hands out monotonically increasing packet ids starting at 1.
// Safe for concurrent use.
type IdGenerator struct {
	next atomic.Uint64
}

// NewIdGenerator creates a generator whose first Next() returns Id(1).
func NewIdGenerator() *IdGenerator {
	g := &IdGenerator{}
	g.next.Store(1)
	return g
}

// Next draws the next id. It wraps to 0 only after u64::MAX ids have been
// drawn, which no useful simulation reaches; debug builds may want to
// assert against it, production does not.
func (g *IdGenerator) Next() Id {
	return Id{n: g.next.Add(1) - 1}
}

// Sizeable is implemented by payload types that can report a byte-size
// hint; the hint is sampled once at build time and cached on the Packet.
// Types that do not implement it are treated as zero bytes.
type Sizeable interface {
	BytesSize() uint64
}

// OnDrop is invoked at most once, when a Packet's payload is discarded
// without having been extracted via IntoInner. It exists primarily for
// FFI scenarios where the payload was allocated by an external runtime and
// must be returned to it.
type OnDrop func(payload any)

// BuildError enumerates why Builder.Build failed.
type BuildError struct {
	kind buildErrorKind
}

type buildErrorKind int

const (
	missingSender buildErrorKind = iota
	missingRecipient
	missingData
)

func (e *BuildError) Error() string {
	switch e.kind {
	case missingSender:
		return "packet build failed: missing sender"
	case missingRecipient:
		return "packet build failed: missing recipient"
	case missingData:
		return "packet build failed: missing data"
	default:
		return "packet build failed: unknown reason"
	}
}

// IsMissingSender reports whether err is a BuildError for a missing sender.
func IsMissingSender(err error) bool { return buildErrorIs(err, missingSender) }

// IsMissingRecipient reports whether err is a BuildError for a missing
// recipient.
func IsMissingRecipient(err error) bool { return buildErrorIs(err, missingRecipient) }

// IsMissingData reports whether err is a BuildError for missing data.
func IsMissingData(err error) bool { return buildErrorIs(err, missingData) }

func buildErrorIs(err error, kind buildErrorKind) bool {
	var be *BuildError
	if !errors.As(err, &be) {
		return false
	}
	return be.kind == kind
}

// Packet is an immutable envelope: id, endpoints, payload, a cached byte
// size, and an optional drop hook. Consumed by Network.Send; either
// delivered (payload handed to the on-deliver callback) or dropped (its
// on-drop hook, if any, fires).
type Packet struct {
	id        Id
	from      node.Id
	to        node.Id
	payload   any
	bytesSize uint64
	onDrop    OnDrop
	extracted bool
}

// Id returns the packet's id.
func (p *Packet) Id() Id { return p.id }

// From returns the sender's node id.
func (p *Packet) From() node.Id { return p.from }

// To returns the recipient's node id.
func (p *Packet) To() node.Id { return p.to }

// BytesSize returns the packet's cached byte-size hint.
func (p *Packet) BytesSize() uint64 { return p.bytesSize }

// IntoInner moves the payload out without firing the drop hook. Calling it
// more than once panics, mirroring a structural bug rather than a
// user-triggerable condition.
func (p *Packet) IntoInner() any {
	if p.extracted {
		panic("packet: IntoInner called twice")
	}
	p.extracted = true
	return p.payload
}

// Drop runs the packet's on-drop hook, if one is registered and the
// payload has not already been extracted. Idempotent: calling it after
// IntoInner or a prior Drop is a no-op.
func (p *Packet) Drop() {
	if p.extracted {
		return
	}
	p.extracted = true
	if p.onDrop != nil {
		p.onDrop(p.payload)
	}
}

// Builder constructs a Packet. from, to, and data are required; on_drop is
// optional. Nothing is registered with a Network until Send consumes the
// built Packet.
type Builder struct {
	idGen   *IdGenerator
	from    *node.Id
	to      *node.Id
	data    any
	hasData bool
	onDrop  OnDrop
}

// NewBuilder creates a Builder drawing ids from idGen.
func NewBuilder(idGen *IdGenerator) *Builder {
	return &Builder{idGen: idGen}
}

// From sets the sender.
func (b *Builder) From(id node.Id) *Builder {
	b.from = &id
	return b
}

// To sets the recipient.
func (b *Builder) To(id node.Id) *Builder {
	b.to = &id
	return b
}

// Data sets the payload.
func (b *Builder) Data(payload any) *Builder {
	b.data = payload
	b.hasData = true
	return b
}

// OnDrop registers a hook to run if the built packet is discarded without
// IntoInner being called.
func (b *Builder) OnDrop(hook OnDrop) *Builder {
	b.onDrop = hook
	return b
}

// Build validates the builder's required fields, draws an id, samples and
// caches the payload's byte size, and returns the immutable Packet.
func (b *Builder) Build() (*Packet, error) {
	if b.from == nil {
		return nil, &BuildError{kind: missingSender}
	}
	if b.to == nil {
		return nil, &BuildError{kind: missingRecipient}
	}
	if !b.hasData {
		return nil, &BuildError{kind: missingData}
	}

	var size uint64
	if sized, ok := b.data.(Sizeable); ok {
		size = sized.BytesSize()
	}

	return &Packet{
		id:        b.idGen.Next(),
		from:      *b.from,
		to:        *b.to,
		payload:   b.data,
		bytesSize: size,
		onDrop:    b.onDrop,
	}, nil
}

// BytesOf is a convenience Sizeable wrapping a []byte payload, whose size
// is simply its length.
type BytesOf []byte

// BytesSize implements Sizeable.
func (b BytesOf) BytesSize() uint64 { return uint64(len(b)) }

// StringOf is a convenience Sizeable wrapping a string payload.
type StringOf string

// BytesSize implements Sizeable.
func (s StringOf) BytesSize() uint64 { return uint64(len(s)) }
