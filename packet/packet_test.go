package packet

import (
	"testing"

	"github.com/stretchr/testify/require"

	"netsim/node"
)

func TestBuilderRequiresSenderRecipientData(t *testing.T) {
	gen := NewIdGenerator()

	_, err := NewBuilder(gen).To(node.NewId(2)).Data(BytesOf("x")).Build()
	require.True(t, IsMissingSender(err))

	_, err = NewBuilder(gen).From(node.NewId(1)).Data(BytesOf("x")).Build()
	require.True(t, IsMissingRecipient(err))

	_, err = NewBuilder(gen).From(node.NewId(1)).To(node.NewId(2)).Build()
	require.True(t, IsMissingData(err))
}

func TestBuilderCachesByteSize(t *testing.T) {
	gen := NewIdGenerator()

	pkt, err := NewBuilder(gen).
		From(node.NewId(1)).
		To(node.NewId(2)).
		Data(BytesOf("hello")).
		Build()

	require.NoError(t, err)
	require.Equal(t, uint64(5), pkt.BytesSize())
}

func TestIdsAreSequentialStartingAtOne(t *testing.T) {
	gen := NewIdGenerator()

	p1, _ := NewBuilder(gen).From(node.NewId(1)).To(node.NewId(2)).Data(BytesOf("a")).Build()
	p2, _ := NewBuilder(gen).From(node.NewId(1)).To(node.NewId(2)).Data(BytesOf("b")).Build()

	require.Equal(t, uint64(1), p1.Id().Uint64())
	require.Equal(t, uint64(2), p2.Id().Uint64())
}

func TestIdStringIsHex16(t *testing.T) {
	gen := NewIdGenerator()
	pkt, _ := NewBuilder(gen).From(node.NewId(1)).To(node.NewId(2)).Data(BytesOf("a")).Build()
	require.Equal(t, "0x0000000000000001", pkt.Id().String())
}

func TestIntoInnerSkipsDropHook(t *testing.T) {
	gen := NewIdGenerator()
	fired := false
	pkt, err := NewBuilder(gen).
		From(node.NewId(1)).
		To(node.NewId(2)).
		Data(BytesOf("hi")).
		OnDrop(func(any) { fired = true }).
		Build()
	require.NoError(t, err)

	payload := pkt.IntoInner()
	require.Equal(t, BytesOf("hi"), payload)

	pkt.Drop()
	require.False(t, fired)
}

func TestDropHookFiresOnceWhenNotExtracted(t *testing.T) {
	gen := NewIdGenerator()
	count := 0
	pkt, err := NewBuilder(gen).
		From(node.NewId(1)).
		To(node.NewId(2)).
		Data(BytesOf("hi")).
		OnDrop(func(any) { count++ }).
		Build()
	require.NoError(t, err)

	pkt.Drop()
	pkt.Drop()

	require.Equal(t, 1, count)
}
