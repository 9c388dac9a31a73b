package vimchan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// fakeVim plays Vim's side of a JSON channel.
type fakeVim struct {
	toServer *io.PipeWriter
	dec      *json.Decoder

	wmu sync.Mutex

	mu      sync.Mutex
	exprs   map[string]string
	calls   []gjson.Result
	exs     []string
	redraws int

	replies chan gjson.Result
}

// startVim connects a fake Vim to a new Channel.
func startVim(t *testing.T, exprs map[string]string) (*fakeVim, *Channel) {
	t.Helper()

	vimR, serverW := io.Pipe()
	serverR, vimW := io.Pipe()

	v := newFakeVim(vimR, vimW, exprs)
	ch := NewChannel(serverR, serverW)
	t.Cleanup(func() {
		_ = vimW.Close()
		_ = ch.Close()
		_ = vimR.Close()
	})
	return v, ch
}

func newFakeVim(r io.Reader, w *io.PipeWriter, exprs map[string]string) *fakeVim {
	v := &fakeVim{
		toServer: w,
		dec:      json.NewDecoder(r),
		exprs:    exprs,
		replies:  make(chan gjson.Result, 16),
	}
	go v.run()
	return v
}

func (v *fakeVim) run() {
	for {
		var raw json.RawMessage
		if err := v.dec.Decode(&raw); err != nil {
			return
		}
		arr := gjson.ParseBytes(raw).Array()
		if len(arr) == 0 {
			continue
		}

		if arr[0].Type == gjson.Number {
			v.replies <- gjson.ParseBytes(raw)
			continue
		}

		switch arr[0].Str {
		case "expr":
			v.mu.Lock()
			result, ok := v.exprs[arr[1].Str]
			v.mu.Unlock()
			if !ok {
				result = `"ERROR"`
			}
			v.write(fmt.Sprintf("[%d,%s]", arr[2].Int(), result))
		case "call":
			v.mu.Lock()
			v.calls = append(v.calls, gjson.ParseBytes(raw))
			v.mu.Unlock()
			if len(arr) == 4 {
				v.write(fmt.Sprintf("[%d,0]", arr[3].Int()))
			}
		case "ex":
			v.mu.Lock()
			v.exs = append(v.exs, arr[1].Str)
			v.mu.Unlock()
		case "redraw":
			v.mu.Lock()
			v.redraws++
			v.mu.Unlock()
		}
	}
}

func (v *fakeVim) write(msg string) {
	v.wmu.Lock()
	defer v.wmu.Unlock()
	_, _ = io.WriteString(v.toServer, msg+"\n")
}

// request sends a Vim-initiated request and waits for the server's reply.
func (v *fakeVim) request(t *testing.T, id int, expr string) gjson.Result {
	t.Helper()
	v.write(fmt.Sprintf("[%d,%s]", id, expr))
	select {
	case r := <-v.replies:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("no reply from server")
		return gjson.Result{}
	}
}

func (v *fakeVim) setExpr(expr, result string) {
	v.mu.Lock()
	v.exprs[expr] = result
	v.mu.Unlock()
}

func (v *fakeVim) recordedCalls() []gjson.Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]gjson.Result(nil), v.calls...)
}

func (v *fakeVim) recordedEx() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.exs...)
}

func serve(t *testing.T, ch *Channel) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ch.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 5*time.Second, 5*time.Millisecond)
}
