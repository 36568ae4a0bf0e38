package driver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/JBarrett33/go-teachmover/protocol"
)

// mockTransport simulates the TeachMover's side of the link: it records
// every write and serves scripted responses in order.
type mockTransport struct {
	writes    [][]byte
	responses [][]byte
	respIdx   int
	flushes   int
	writeErr  error
	readErr   error
	readHook  func() // runs at the start of ReadUntil, before any response
}

func newMockTransport() *mockTransport {
	return &mockTransport{}
}

func (m *mockTransport) Write(p []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	m.writes = append(m.writes, buf)
	return nil
}

func (m *mockTransport) ReadUntil(complete func([]byte) bool, timeout time.Duration) ([]byte, error) {
	if m.readHook != nil {
		m.readHook()
	}
	if m.readErr != nil {
		return nil, m.readErr
	}
	if m.respIdx >= len(m.responses) {
		return nil, ErrTimeout
	}
	resp := m.responses[m.respIdx]
	m.respIdx++
	if !complete(resp) {
		// Scripted partial response: the device went quiet mid-frame.
		return resp, ErrTimeout
	}
	return resp, nil
}

func (m *mockTransport) Flush() error {
	m.flushes++
	return nil
}

func (m *mockTransport) addResponse(resp []byte) {
	m.responses = append(m.responses, resp)
}

func (m *mockTransport) sentFrames() []string {
	frames := make([]string, len(m.writes))
	for i, w := range m.writes {
		frames[i] = string(w)
	}
	return frames
}

func TestNew(t *testing.T) {
	transport := newMockTransport()

	drv := New(transport,
		WithTimeout(5*time.Second),
		WithCommandDelay(0),
		WithTrace(func(Exchange) {}),
	)
	if drv == nil {
		t.Fatal("New() returned nil")
	}
	if drv.config.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", drv.config.ReadTimeout)
	}

	defer func() {
		if recover() == nil {
			t.Error("New(nil) should panic")
		}
	}()
	New(nil)
}

func TestCloseGripper(t *testing.T) {
	transport := newMockTransport()
	transport.addResponse([]byte("@"))

	drv := New(transport)
	if err := drv.CloseGripper(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	frames := transport.sentFrames()
	if len(frames) != 1 || frames[0] != "@C;" {
		t.Errorf("sent frames = %q, want [\"@C;\"]", frames)
	}
	if transport.flushes != 1 {
		t.Errorf("flushes = %d, want 1", transport.flushes)
	}
}

func TestReadRegisters(t *testing.T) {
	transport := newMockTransport()
	transport.addResponse([]byte("100,200,0,0,50;"))

	drv := New(transport)
	regs, err := drv.ReadRegisters(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := protocol.RegisterSet{100, 200, 0, 0, 50}
	if regs != want {
		t.Errorf("registers = %v, want %v", regs, want)
	}

	frames := transport.sentFrames()
	if len(frames) != 1 || frames[0] != "@R;" {
		t.Errorf("sent frames = %q, want [\"@R;\"]", frames)
	}
}

// Two reads against an unchanged device return identical snapshots.
func TestReadRegistersIdempotent(t *testing.T) {
	transport := newMockTransport()
	transport.addResponse([]byte("10,-20,30,0,5;"))
	transport.addResponse([]byte("10,-20,30,0,5;"))

	drv := New(transport)

	first, err := drv.ReadRegisters(context.Background())
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	second, err := drv.ReadRegisters(context.Background())
	if err != nil {
		t.Fatalf("second read: %v", err)
	}

	if first != second {
		t.Errorf("register snapshots differ: %v vs %v", first, second)
	}
}

func TestStep(t *testing.T) {
	tests := []struct {
		name      string
		deltas    []int
		response  []byte
		wantFrame string
		wantErr   bool
		errCheck  func(error) bool
	}{
		{
			name:      "valid deltas",
			deltas:    []int{100, 200, 0, 0, 50},
			response:  []byte("@"),
			wantFrame: "@S100,200,0,0,50;",
		},
		{
			name:     "too few deltas",
			deltas:   []int{100, 200},
			wantErr:  true,
			errCheck: protocol.IsEncodingError,
		},
		{
			name:     "delta out of range",
			deltas:   []int{0, 0, 0, 0, 40000},
			wantErr:  true,
			errCheck: protocol.IsEncodingError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := newMockTransport()
			if tt.response != nil {
				transport.addResponse(tt.response)
			}

			drv := New(transport)
			err := drv.Step(context.Background(), tt.deltas)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !tt.errCheck(err) {
					t.Errorf("error = %v, wrong type", err)
				}
				// Encoding failures must abort before any I/O.
				if len(transport.writes) != 0 {
					t.Errorf("transport written to %d times, want 0", len(transport.writes))
				}
				if transport.flushes != 0 {
					t.Errorf("transport flushed %d times, want 0", transport.flushes)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			frames := transport.sentFrames()
			if len(frames) != 1 || frames[0] != tt.wantFrame {
				t.Errorf("sent frames = %q, want [%q]", frames, tt.wantFrame)
			}
		})
	}
}

func TestDumpProgram(t *testing.T) {
	blob := []byte{0x01, 0x02, 0xFF}
	transport := newMockTransport()
	transport.addResponse(append(append([]byte{}, blob...), protocol.ProgramTerminator...))

	drv := New(transport)
	prog, err := drv.DumpProgram(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(prog, blob) {
		t.Errorf("program = %v, want %v", prog, blob)
	}
}

func TestWriteProgram(t *testing.T) {
	blob := protocol.Program{0x01, 0x02, 0x03}
	transport := newMockTransport()
	transport.addResponse([]byte("@"))

	drv := New(transport)
	if err := drv.WriteProgram(context.Background(), blob); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Two send phases: the QWRITE frame, then payload + terminator.
	if len(transport.writes) != 2 {
		t.Fatalf("writes = %d, want 2", len(transport.writes))
	}
	if string(transport.writes[0]) != "@W;" {
		t.Errorf("first write = %q, want %q", transport.writes[0], "@W;")
	}
	wantPayload := append(append([]byte{}, blob...), protocol.ProgramTerminator...)
	if !bytes.Equal(transport.writes[1], wantPayload) {
		t.Errorf("second write = %v, want %v", transport.writes[1], wantPayload)
	}
}

func TestWriteProgramEmpty(t *testing.T) {
	transport := newMockTransport()
	transport.addResponse([]byte("@"))

	drv := New(transport)
	if err := drv.WriteProgram(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(transport.writes[1], protocol.ProgramTerminator) {
		t.Errorf("payload = %v, want bare terminator", transport.writes[1])
	}
}

func TestRunAndResetAndTeach(t *testing.T) {
	tests := []struct {
		name      string
		invoke    func(*Driver) error
		wantFrame string
	}{
		{
			name:      "run",
			invoke:    func(d *Driver) error { return d.RunProgram(context.Background()) },
			wantFrame: "@G;",
		},
		{
			name:      "reset",
			invoke:    func(d *Driver) error { return d.Reset(context.Background()) },
			wantFrame: "@X;",
		},
		{
			name:      "teach mode",
			invoke:    func(d *Driver) error { return d.EnableTeachMode(context.Background()) },
			wantFrame: "@T;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := newMockTransport()
			transport.addResponse([]byte("@"))

			drv := New(transport)
			if err := tt.invoke(drv); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			frames := transport.sentFrames()
			if len(frames) != 1 || frames[0] != tt.wantFrame {
				t.Errorf("sent frames = %q, want [%q]", frames, tt.wantFrame)
			}
		})
	}
}

func TestTimeout(t *testing.T) {
	transport := newMockTransport() // no scripted response: ReadUntil times out

	drv := New(transport, WithTimeout(250*time.Millisecond))
	_, err := drv.ReadRegisters(context.Background())

	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !protocol.IsTimeout(err) {
		t.Errorf("error = %v, want protocol timeout", err)
	}
	if !bytes.Contains([]byte(err.Error()), []byte("250ms")) {
		t.Errorf("error should carry the configured timeout, got: %v", err)
	}
}

func TestTransportErrorPassthrough(t *testing.T) {
	linkErr := errors.New("device unplugged")

	t.Run("write error", func(t *testing.T) {
		transport := newMockTransport()
		transport.writeErr = linkErr

		drv := New(transport)
		err := drv.CloseGripper(context.Background())
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("error type = %T, want *TransportError", err)
		}
		if !errors.Is(err, linkErr) {
			t.Error("underlying error should pass through verbatim")
		}
		if te.Op != "write" {
			t.Errorf("Op = %q, want %q", te.Op, "write")
		}
	})

	t.Run("read error", func(t *testing.T) {
		transport := newMockTransport()
		transport.readErr = linkErr

		drv := New(transport)
		_, err := drv.ReadRegisters(context.Background())
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !errors.Is(err, linkErr) {
			t.Error("underlying error should pass through verbatim")
		}
	})
}

func TestLinkClosedMidResponse(t *testing.T) {
	transport := newMockTransport()
	transport.readErr = io.EOF

	drv := New(transport)
	_, err := drv.ReadRegisters(context.Background())

	if !protocol.IsTruncated(err) {
		t.Errorf("error = %v, want truncated protocol error", err)
	}
}

func TestPartialResponseThenTimeout(t *testing.T) {
	transport := newMockTransport()
	transport.addResponse([]byte("100,2")) // device went quiet mid-dump

	drv := New(transport)
	_, err := drv.ReadRegisters(context.Background())

	if !protocol.IsTimeout(err) {
		t.Errorf("error = %v, want timeout", err)
	}
}

func TestSequencingViolation(t *testing.T) {
	transport := newMockTransport()
	started := make(chan struct{})
	release := make(chan struct{})
	transport.readHook = func() {
		close(started)
		<-release
	}
	transport.addResponse(append([]byte{0x01}, protocol.ProgramTerminator...))

	drv := New(transport)

	dumpDone := make(chan error, 1)
	go func() {
		_, err := drv.DumpProgram(context.Background())
		dumpDone <- err
	}()

	<-started // dump is now awaiting its response

	err := drv.Step(context.Background(), []int{1, 2, 3, 4, 5})
	if err == nil {
		t.Fatal("expected sequencing violation, got nil")
	}
	var sv *SequencingViolation
	if !errors.As(err, &sv) {
		t.Fatalf("error type = %T, want *SequencingViolation", err)
	}
	if sv.Command != protocol.CmdStep {
		t.Errorf("violating command = %v, want STEP", sv.Command)
	}
	// The violating call must not have touched the transport.
	if len(transport.writes) != 1 {
		t.Errorf("writes = %d, want 1 (dump frame only)", len(transport.writes))
	}

	close(release)
	if err := <-dumpDone; err != nil {
		t.Fatalf("dump failed: %v", err)
	}

	// The slot frees up once the first command terminates.
	transport.readHook = nil
	transport.addResponse([]byte("@"))
	if err := drv.Step(context.Background(), []int{1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("step after dump completed: %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	transport := newMockTransport()
	transport.addResponse([]byte("@"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	drv := New(transport)
	err := drv.CloseGripper(ctx)

	if err == nil {
		t.Fatal("expected cancellation error, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if len(transport.writes) != 0 {
		t.Errorf("cancelled command wrote %d frames, want 0", len(transport.writes))
	}
}

func TestTrace(t *testing.T) {
	transport := newMockTransport()
	transport.addResponse([]byte("100,200,0,0,50;"))

	var exchanges []Exchange
	drv := New(transport, WithTrace(func(ex Exchange) {
		exchanges = append(exchanges, ex)
	}))

	if _, err := drv.ReadRegisters(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(exchanges) != 1 {
		t.Fatalf("trace calls = %d, want 1", len(exchanges))
	}
	ex := exchanges[0]
	if ex.Command != protocol.CmdRead {
		t.Errorf("Command = %v, want READ", ex.Command)
	}
	if ex.BytesSent != len("@R;") {
		t.Errorf("BytesSent = %d, want %d", ex.BytesSent, len("@R;"))
	}
	if ex.BytesReceived != len("100,200,0,0,50;") {
		t.Errorf("BytesReceived = %d, want %d", ex.BytesReceived, len("100,200,0,0,50;"))
	}
	if ex.Err != nil {
		t.Errorf("Err = %v, want nil", ex.Err)
	}
}

func TestTraceOnFailure(t *testing.T) {
	transport := newMockTransport()

	var traced Exchange
	drv := New(transport, WithTrace(func(ex Exchange) { traced = ex }))

	_, err := drv.ReadRegisters(context.Background())
	if err == nil {
		t.Fatal("expected timeout")
	}
	if traced.Err == nil {
		t.Error("trace should carry the terminal error")
	}
}

func BenchmarkReadRegisters(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		transport := newMockTransport()
		transport.addResponse([]byte("100,200,0,0,50;"))
		drv := New(transport)
		_, _ = drv.ReadRegisters(context.Background())
	}
}
