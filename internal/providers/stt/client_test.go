package stt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"medscribe/internal/ports"
)

func TestClientTranscribeUploadsClip(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotModel string
	var gotFileBytes int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart failed: %v", err)
		}
		gotModel = r.FormValue("model")
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing clip file: %v", err)
		} else {
			buf := make([]byte, 1024)
			n, _ := file.Read(buf)
			gotFileBytes = n
			file.Close()
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "let's start you on amoxicillin"}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{Endpoint: server.URL, APIKey: "key", Model: "whisper-1"})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}

	text, err := client.Transcribe(context.Background(), ports.Clip{
		PCM:        make([]byte, 32000),
		SampleRate: 16000,
		Channels:   1,
	})
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}

	if text != "let's start you on amoxicillin" {
		t.Fatalf("unexpected text: %q", text)
	}
	if gotAuth != "Bearer key" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotModel != "whisper-1" {
		t.Fatalf("unexpected model field: %q", gotModel)
	}
	if gotFileBytes == 0 {
		t.Fatalf("expected clip bytes to be uploaded")
	}
}

func TestClientTranscribeEmptyTextTolerated(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"text": ""}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{Endpoint: server.URL})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}

	text, err := client.Transcribe(context.Background(), ports.Clip{PCM: make([]byte, 640), SampleRate: 16000, Channels: 1})
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
}

func TestClientTranscribeHTTPErrorSurfaces(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewClient(Config{Endpoint: server.URL})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}

	if _, err := client.Transcribe(context.Background(), ports.Clip{PCM: make([]byte, 640), SampleRate: 16000, Channels: 1}); err == nil {
		t.Fatalf("expected HTTP error")
	}
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{}); err == nil {
		t.Fatalf("expected endpoint error")
	}
}
