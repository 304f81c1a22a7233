// Package route implements the ephemeral resolution step between Send and
// Transit: looking up the two endpoint nodes and their link, and snapshotting
// a fresh per-transit link half.
package route

import (
	"github.com/pkg/errors"

	"netsim/link"
	"netsim/measure"
	"netsim/node"
	"netsim/packet"
	"netsim/transit"
)

// ErrorKind enumerates why routing failed.
type ErrorKind int

const (
	// SenderNotFound means the packet's From() node is not registered.
	SenderNotFound ErrorKind = iota
	// RecipientNotFound means the packet's To() node is not registered.
	RecipientNotFound
	// LinkNotFound means no link is configured between the two nodes.
	LinkNotFound
)

// Error wraps an ErrorKind as an error value.
type Error struct {
	Kind ErrorKind
	From node.Id
	To   node.Id
}

func (e *Error) Error() string {
	switch e.Kind {
	case SenderNotFound:
		return "route: sender " + e.From.String() + " not found"
	case RecipientNotFound:
		return "route: recipient " + e.To.String() + " not found"
	case LinkNotFound:
		return "route: no link configured between " + e.From.String() + " and " + e.To.String()
	default:
		return "route: unknown error"
	}
}

// SendError is returned by a failed send attempt: either routing failed
// (Route is set) or a Route exists but the sender's upload buffer could not
// hold the packet (SenderBufferFull is set).
type SendError struct {
	Route             *Error
	SenderBufferFull  bool
	Sender            node.Id
	BufferMaxSize     uint64
	BufferCurrentSize uint64
	PacketSize        uint64
}

func (e *SendError) Error() string {
	if e.Route != nil {
		return e.Route.Error()
	}
	if e.SenderBufferFull {
		return errors.Errorf(
			"send: sender %s buffer full (max=%d used=%d packet=%d)",
			e.Sender, e.BufferMaxSize, e.BufferCurrentSize, e.PacketSize,
		).Error()
	}
	return "send: unknown error"
}

// Route is the ephemeral result of resolving a (from, to) pair: handles
// onto the sender's upload stage, the link's directional half, and the
// recipient's download stage, ready to be turned into a Transit for one
// packet.
type Route struct {
	from     *node.Node
	to       *node.Node
	linkID   link.Id
	linkHalf *link.Half
}

// New resolves from and to against the given registries. It is the
// Network-facing entry point; Network.route delegates here after its own
// lookups.
func New(from, to *node.Node, lk *link.Link) (*Route, error) {
	if from == nil {
		return nil, &Error{Kind: SenderNotFound}
	}
	if to == nil {
		return nil, &Error{Kind: RecipientNotFound}
	}
	if lk == nil {
		return nil, &Error{Kind: LinkNotFound, From: from.Id(), To: to.Id()}
	}
	id := link.NewId(from.Id(), to.Id())
	return &Route{
		from:     from,
		to:       to,
		linkID:   id,
		linkHalf: lk.Duplicate(id, from.Id()),
	}, nil
}

// Transit attempts to charge pkt's bytes against the sender's upload
// buffer and, on success, assembles a Transit ready to be advanced by the
// network.
func (r *Route) Transit(pkt *packet.Packet) (*transit.Transit, *SendError) {
	upload := measure.NewUpload(r.from.UploadBuffer(), r.from.UploadChannel())
	if !upload.Send(pkt.BytesSize()) {
		return nil, &SendError{
			SenderBufferFull:  true,
			Sender:            r.from.Id(),
			BufferMaxSize:     r.from.UploadBuffer().MaximumCapacity(),
			BufferCurrentSize: r.from.UploadBuffer().UsedCapacity(),
			PacketSize:        pkt.BytesSize(),
		}
	}

	download := measure.NewDownload(r.to.DownloadChannel(), r.to.DownloadBuffer())
	return transit.New(upload, r.linkHalf, download, pkt), nil
}
