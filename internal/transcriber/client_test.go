package transcriber

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/transcribe-video" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["mediaName"] != "clip.mp4" || req["projectName"] != "proj" {
			t.Errorf("unexpected request: %v", req)
		}
		json.NewEncoder(w).Encode(Result{MediaName: "clip.mp4", Text: "fala transcrita"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, quietLogger())
	res, err := c.Transcribe(context.Background(), "proj", "clip.mp4")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Text != "fala transcrita" {
		t.Fatalf("text = %q", res.Text)
	}

	// The in-flight slot is cleared after completion.
	c.mu.Lock()
	n := len(c.inFlight)
	c.mu.Unlock()
	if n != 0 {
		t.Fatalf("in-flight slots after completion = %d", n)
	}
}

func TestTranscribe_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, quietLogger())
	if _, err := c.Transcribe(context.Background(), "proj", "clip.mp4"); err == nil {
		t.Fatalf("expected error for HTTP 500")
	}
}

func TestTranscribe_NewerRequestSupersedesOlder(t *testing.T) {
	firstArrived := make(chan struct{})
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			// Drain the body so the server notices the client disconnect
			// and cancels the request context.
			io.Copy(io.Discard, r.Body)
			close(firstArrived)
			<-r.Context().Done() // held until the replacement cancels it
			return
		}
		<-release
		json.NewEncoder(w).Encode(Result{MediaName: "clip.mp4", Text: "segunda"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, quietLogger())

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Transcribe(context.Background(), "proj", "clip.mp4")
		errCh <- err
	}()
	<-firstArrived

	resCh := make(chan *Result, 1)
	go func() {
		res, err := c.Transcribe(context.Background(), "proj", "clip.mp4")
		if err != nil {
			t.Errorf("second transcription failed: %v", err)
		}
		resCh <- res
	}()

	// The first request is aborted by the second.
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("first request error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("first request was not cancelled")
	}

	close(release)
	select {
	case res := <-resCh:
		if res == nil || res.Text != "segunda" {
			t.Fatalf("second result = %+v", res)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("second request did not complete")
	}
}

func TestCancel(t *testing.T) {
	arrived := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the client disconnect
		// and cancels the request context.
		io.Copy(io.Discard, r.Body)
		close(arrived)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(srv.URL, quietLogger())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Transcribe(context.Background(), "proj", "clip.mp4")
		errCh <- err
	}()
	<-arrived
	c.Cancel("clip.mp4")

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("cancelled request error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("request survived cancellation")
	}
}
