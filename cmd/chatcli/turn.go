package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"smartrunai-edge/internal/domain/model"
	"smartrunai-edge/internal/infra/client"
)

// runTurn streams one reply to out and returns the text to keep in history.
// Relay rejections (400/429) are shown as-is. Any failure after the stream
// has started ends the reply with the fallback message.
func runTurn(ctx context.Context, c *client.Client, history []model.ChatMessage, out io.Writer) (string, error) {
	turn, err := c.Send(ctx, history)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Status < 500 {
			fmt.Fprint(out, apiErr.Message)
			return apiErr.Message, nil
		}
		fmt.Fprint(out, client.FallbackMessage)
		return client.FallbackMessage, err
	}
	defer turn.Close()

	var text string
	for ev, err := range turn.Events(ctx) {
		if err != nil {
			reply := client.WithFallback(ev.Text)
			fmt.Fprint(out, reply[len(ev.Text):])
			return reply, err
		}
		fmt.Fprint(out, ev.Delta)
		text = ev.Text
	}
	return text, nil
}
