package whisper

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/skillsenselab/vaani/audio"
	"github.com/skillsenselab/vaani/transcription"
)

func testRequest() *transcription.Request {
	return &transcription.Request{
		Clip: &audio.Clip{Filename: "test.wav", Data: []byte("fake audio"), DurationSeconds: 3},
	}
}

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "small" {
			t.Errorf("model = %q, want default small", got)
		}
		if got := r.FormValue("language"); got != "en" {
			t.Errorf("language = %q", got)
		}
		w.Write([]byte(`{
			"text": "hello world",
			"language": "en",
			"segments": [
				{"text": "hello", "start": 0, "end": 1.5, "avg_logprob": -0.2},
				{"text": "world", "start": 1.5, "end": 3.0, "avg_logprob": -0.4}
			]
		}`))
	}))
	defer srv.Close()

	b := New(Config{URL: srv.URL}, transcription.ModelKey{
		Language: "en", Decoding: transcription.DecodingCTC, Kind: transcription.KindWhisper,
	})

	raw, err := b.Transcribe(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if raw.Transcript != "hello world" {
		t.Errorf("Transcript = %q", raw.Transcript)
	}
	// exp((-0.2 + -0.4) / 2) = exp(-0.3)
	want := math.Exp(-0.3)
	if math.Abs(raw.Confidence-want) > 1e-9 {
		t.Errorf("Confidence = %f, want %f", raw.Confidence, want)
	}
	if raw.DurationSeconds != 3.0 {
		t.Errorf("DurationSeconds = %f, want last segment end", raw.DurationSeconds)
	}
}

func TestTranscribeNoSegments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"", "segments":[]}`))
	}))
	defer srv.Close()

	b := New(Config{URL: srv.URL}, transcription.ModelKey{Language: "en", Decoding: transcription.DecodingCTC})
	raw, err := b.Transcribe(context.Background(), testRequest())
	if err != nil {
		t.Fatal(err)
	}
	if raw.Confidence != 0 || raw.DurationSeconds != 0 {
		t.Errorf("empty response should yield zero confidence/duration, got %+v", raw)
	}
}

func TestIsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	b := New(Config{URL: srv.URL}, transcription.ModelKey{Language: "en", Decoding: transcription.DecodingCTC})
	if !b.IsAvailable(context.Background()) {
		t.Error("expected available")
	}
}
