package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
)

type chunkDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content"`
}

type chunkChoice struct {
	Index        int        `json:"index"`
	Delta        chunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

type completionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []chunkChoice `json:"choices"`
}

type flusher interface{ Flush() }

// Encoder writes chat completion chunks in the same SSE envelope the upstream
// gateway uses, so consumers cannot tell a synthesized reply from a relayed one.
type Encoder struct {
	w       io.Writer
	id      string
	model   string
	created int64
	first   bool
}

func NewEncoder(w io.Writer, model string) *Encoder {
	return &Encoder{
		w:       w,
		id:      "chatcmpl-" + ulid.Make().String(),
		model:   model,
		created: time.Now().Unix(),
		first:   true,
	}
}

func (e *Encoder) ID() string { return e.id }

// Delta writes one content frame. The first frame also carries the assistant role.
func (e *Encoder) Delta(content string) error {
	ch := completionChunk{
		ID:      e.id,
		Object:  "chat.completion.chunk",
		Created: e.created,
		Model:   e.model,
		Choices: []chunkChoice{{Delta: chunkDelta{Content: content}}},
	}
	if e.first {
		ch.Choices[0].Delta.Role = "assistant"
		e.first = false
	}
	b, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	return e.write(fmt.Sprintf("%s%s\n\n", dataPrefix, b))
}

// Done writes the terminating sentinel frame.
func (e *Encoder) Done() error {
	return e.write(dataPrefix + doneSentinel + "\n\n")
}

func (e *Encoder) write(s string) error {
	if _, err := io.WriteString(e.w, s); err != nil {
		return err
	}
	if f, ok := e.w.(flusher); ok {
		f.Flush()
	}
	return nil
}

// WriteReply emits a complete single-delta reply followed by [DONE].
func WriteReply(w io.Writer, model, text string) error {
	enc := NewEncoder(w, model)
	if err := enc.Delta(text); err != nil {
		return err
	}
	return enc.Done()
}
