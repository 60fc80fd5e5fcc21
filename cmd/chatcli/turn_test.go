//go:build !integration

package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smartrunai-edge/internal/domain/model"
	"smartrunai-edge/internal/infra/client"
	"smartrunai-edge/internal/stream"
)

func hi() []model.ChatMessage {
	return []model.ChatMessage{{Role: model.RoleUser, Content: "hi"}}
}

func TestRunTurnStreamsReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		enc := stream.NewEncoder(w, "m")
		_ = enc.Delta("Hello ")
		_ = enc.Delta("there")
		_ = enc.Done()
	}))
	defer srv.Close()

	var out bytes.Buffer
	reply, err := runTurn(context.Background(), client.New(srv.URL), hi(), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Hello there" || out.String() != "Hello there" {
		t.Fatalf("reply=%q out=%q", reply, out.String())
	}
}

func TestRunTurnShowsRateLimitMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":"Too many requests. Please wait a moment and try again."}`)
	}))
	defer srv.Close()

	var out bytes.Buffer
	reply, err := runTurn(context.Background(), client.New(srv.URL), hi(), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(reply, "Too many requests") {
		t.Fatalf("reply=%q", reply)
	}
}

func TestRunTurnFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"AI gateway error"}`)
	}))
	defer srv.Close()

	var out bytes.Buffer
	reply, err := runTurn(context.Background(), client.New(srv.URL), hi(), &out)
	if err == nil {
		t.Fatalf("want error")
	}
	if reply != client.FallbackMessage || out.String() != client.FallbackMessage {
		t.Fatalf("reply=%q out=%q", reply, out.String())
	}
}
