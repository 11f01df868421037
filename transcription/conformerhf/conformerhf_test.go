package conformerhf

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
		Clip: &audio.Clip{Filename: "test.wav", Data: []byte("fake audio"), DurationSeconds: 2},
	}
}

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("language"); got != "ta" {
			t.Errorf("language = %q", got)
		}
		w.Write([]byte(`{"text":"வணக்கம்","confidence":0.7,"duration":1.5}`))
	}))
	defer srv.Close()

	b := New(Config{URL: srv.URL}, transcription.ModelKey{
		Language: "ta", Decoding: transcription.DecodingCTC, Kind: transcription.KindConformerHF,
	})

	raw, err := b.Transcribe(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if raw.Transcript != "வணக்கம்" {
		t.Errorf("Transcript = %q", raw.Transcript)
	}
	if math.Abs(raw.Confidence-0.7) > 1e-9 {
		t.Errorf("Confidence = %f", raw.Confidence)
	}
}

func TestTranscribeDefaultConfidence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"text":"வணக்கம்","duration":1.5}`))
	}))
	defer srv.Close()

	b := New(Config{URL: srv.URL}, transcription.ModelKey{Language: "ta", Decoding: transcription.DecodingCTC})
	raw, err := b.Transcribe(context.Background(), testRequest())
	if err != nil {
		t.Fatal(err)
	}
	// The pipeline omits confidence; the adapter fills in the default.
	if math.Abs(raw.Confidence-0.85) > 1e-9 {
		t.Errorf("Confidence = %f, want default 0.85", raw.Confidence)
	}
}

func TestTranscribeSidecarError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "OOM", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	b := New(Config{URL: srv.URL}, transcription.ModelKey{Language: "ta", Decoding: transcription.DecodingCTC})
	if _, err := b.Transcribe(context.Background(), testRequest()); err == nil {
		t.Error("expected error from 503 response")
	}
}
