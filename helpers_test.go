package blockstream

import (
	"bytes"
	"io"
	"math/rand/v2"
	"sync/atomic"
)

func testInputSet() []struct {
	name string
	data []byte
} {
	return []struct {
		name string
		data []byte
	}{
		{name: "nil", data: nil},
		{name: "empty", data: []byte{}},
		{name: "single-byte", data: []byte{0xAB}},
		{name: "short-text", data: []byte("hello world, block stream test")},
		{name: "repeated-pattern", data: bytes.Repeat([]byte("abc123"), 2000)},
		{name: "long-run", data: bytes.Repeat([]byte{0xFF}, 12000)},
		{name: "byte-cycle", data: bytes.Repeat([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, 1200)},
		{name: "random", data: randomBytes(1, 9000)},
	}
}

// randomBytes returns n reproducible incompressible bytes.
func randomBytes(seed uint64, n int) []byte {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(rng.Uint32())
	}
	return b
}

// repetitiveCorpus builds n bytes of random blocks that reappear at distances
// of several kilobytes, so quanta reference history from earlier quanta.
func repetitiveCorpus(n int) []byte {
	blocks := make([][]byte, 6)
	for i := range blocks {
		blocks[i] = randomBytes(uint64(i+10), 5000+i*700)
	}

	rng := rand.New(rand.NewPCG(7, 7))
	out := make([]byte, 0, n+8000)
	for len(out) < n {
		out = append(out, blocks[rng.IntN(len(blocks))]...)
		out = append(out, randomBytes(rng.Uint64(), 32)...)
	}
	return out[:n]
}

// chunkReader returns at most size bytes per Read.
type chunkReader struct {
	r    io.Reader
	size int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(p) > c.size {
		p = p[:c.size]
	}
	return c.r.Read(p)
}

// readInChunks drains r with reads of exactly size bytes.
func readInChunks(r io.Reader, size int) ([]byte, error) {
	var out []byte
	buf := make([]byte, size)
	for {
		n, err := r.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

// monitorEngine wraps an engine and records every session and call.
type monitorEngine struct {
	Engine
	newErr   error
	sessions []*monitorSession
	// check runs before every DecodeSome call.
	check func(s *monitorSession, req DecodeRequest)
	// override replaces the inner session's result when set.
	override func(req DecodeRequest) (DecodeResult, bool, error)
}

func (e *monitorEngine) NewSession(c Compressor, rawSize int64, sideData []byte) (Session, error) {
	if e.newErr != nil {
		return nil, e.newErr
	}
	inner, err := e.Engine.NewSession(c, rawSize, sideData)
	if err != nil {
		return nil, err
	}
	s := &monitorSession{engine: e, inner: inner}
	e.sessions = append(e.sessions, s)
	return s, nil
}

type monitorSession struct {
	engine   *monitorEngine
	inner    Session
	calls    int
	produced int64
	// closes is atomic because an abandoned reader closes its session from
	// the runtime's cleanup goroutine.
	closes atomic.Int32
	// compactions counts calls whose Pos moved backwards.
	compactions int
	lastPos     int
}

func (s *monitorSession) DecodeSome(req DecodeRequest) (DecodeResult, error) {
	s.calls++
	if req.Pos < s.lastPos {
		s.compactions++
	}
	if s.engine.check != nil {
		s.engine.check(s, req)
	}

	if s.engine.override != nil {
		if res, ok, err := s.engine.override(req); ok {
			return res, err
		}
	}

	res, err := s.inner.DecodeSome(req)
	s.produced += int64(res.Decoded)
	s.lastPos = req.Pos + res.Decoded
	return res, err
}

func (s *monitorSession) Close() error {
	s.closes.Add(1)
	return s.inner.Close()
}
