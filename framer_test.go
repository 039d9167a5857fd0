package ldapwire

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFramerEndpoint(t *testing.T) (ep *Endpoint, client net.Conn) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() { a.Close(); b.Close() })
	ep = NewEndpoint(&Config{})
	ep.Bind(a)
	return ep, b
}

func TestDefaultFramerRejectsNonSequenceTag(t *testing.T) {
	ep, client := newFramerEndpoint(t)
	go func() { _, _ = client.Write([]byte{0x31, 0x00}) }()

	_, _, st := ep.GetFramer(ep)
	assert.Equal(t, StatusMalformed, st)
}

func TestDefaultFramerRejectsLengthOfLengthOverFour(t *testing.T) {
	ep, client := newFramerEndpoint(t)
	go func() { _, _ = client.Write([]byte{0x30, 0x85, 0, 0, 0, 0, 0}) }()

	_, _, st := ep.GetFramer(ep)
	assert.Equal(t, StatusMalformed, st)
}

func TestDefaultFramerReadsShortForm(t *testing.T) {
	ep, client := newFramerEndpoint(t)
	payload := []byte{0x30, 0x03, 0x02, 0x01, 0x01}
	go func() { _, _ = client.Write(payload) }()

	arena, frame, st := ep.GetFramer(ep)
	require.Equal(t, StatusOK, st)
	defer arena.End()
	assert.Equal(t, payload, frame.Bytes())
}

func TestDefaultFramerReadsLongForm(t *testing.T) {
	ep, client := newFramerEndpoint(t)
	content := make([]byte, 200)
	for i := range content {
		content[i] = byte(i)
	}
	payload := append([]byte{0x30, 0x81, 0xC8}, content...)
	go func() { _, _ = client.Write(payload) }()

	arena, frame, st := ep.GetFramer(ep)
	require.Equal(t, StatusOK, st)
	defer arena.End()
	assert.Equal(t, payload, frame.Bytes())
}

func TestDefaultFramerIOErrorOnEarlyClose(t *testing.T) {
	ep, client := newFramerEndpoint(t)
	client.Close()

	done := make(chan Status, 1)
	go func() {
		_, _, st := ep.GetFramer(ep)
		done <- st
	}()

	select {
	case st := <-done:
		assert.Equal(t, StatusIO, st)
	case <-time.After(time.Second):
		t.Fatal("framer did not return after peer closed")
	}
}
