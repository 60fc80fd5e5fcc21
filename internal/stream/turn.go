package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"smartrunai-edge/internal/domain"
)

const readBufferSize = 4096

type EventKind int

const (
	EventDelta EventKind = iota + 1
	EventDone
)

// Event is one step of a consumed turn. Text is always the full reply so far,
// so a caller can replace its in-progress message in place.
type Event struct {
	Kind  EventKind
	Delta string
	Text  string
}

// Consume reads an SSE chat stream to completion, yielding one event per delta
// and a final EventDone. A read failure or cancellation yields a single error
// event whose Text holds what was received before it.
func Consume(ctx context.Context, r io.Reader, opts ...AssemblerOption) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		dec := NewDecoder()
		asm := NewAssembler(opts...)
		buf := make([]byte, readBufferSize)

		emit := func(prev string, deltas []string) bool {
			for _, d := range deltas {
				prev += d
				if !yield(Event{Kind: EventDelta, Delta: d, Text: prev}, nil) {
					return false
				}
			}
			return true
		}
		fail := func(err error) {
			asm.Fail(err)
			yield(Event{Text: asm.Text()}, err)
		}

		for {
			if err := ctx.Err(); err != nil {
				fail(fmt.Errorf("%w: %w", domain.ErrStreamDecode, err))
				return
			}

			n, rerr := r.Read(buf)
			if n > 0 {
				prev := asm.Text()
				deltas, perr := asm.Push(dec.Decode(buf[:n]))
				if !emit(prev, deltas) {
					return
				}
				if perr != nil {
					yield(Event{Text: asm.Text()}, perr)
					return
				}
				if asm.State() == StateDone {
					yield(Event{Kind: EventDone, Text: asm.Text()}, nil)
					return
				}
			}

			if errors.Is(rerr, io.EOF) {
				prev := asm.Text()
				deltas, perr := asm.Push(dec.Flush())
				if !emit(prev, deltas) {
					return
				}
				if perr != nil {
					yield(Event{Text: asm.Text()}, perr)
					return
				}
				prev = asm.Text()
				if !emit(prev, asm.Flush()) {
					return
				}
				yield(Event{Kind: EventDone, Text: asm.Text()}, nil)
				return
			}
			if rerr != nil {
				fail(fmt.Errorf("%w: %w", domain.ErrStreamDecode, rerr))
				return
			}
		}
	}
}

// Collect drains a stream and returns the assembled reply. On error the
// partial reply is returned alongside it.
func Collect(ctx context.Context, r io.Reader, opts ...AssemblerOption) (string, error) {
	var text string
	for ev, err := range Consume(ctx, r, opts...) {
		text = ev.Text
		if err != nil {
			return text, err
		}
	}
	return text, nil
}
