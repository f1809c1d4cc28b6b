// Package main contains shutdown behavior tests for the API server.
package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"
)

func startTestServer(t *testing.T, handler http.Handler) (*http.Server, string, chan struct{}) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	server := &http.Server{
		Addr:    ln.Addr().String(),
		Handler: handler,
	}

	stopped := make(chan struct{})
	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			t.Errorf("server error: %v", err)
		}
		close(stopped)
	}()

	return server, ln.Addr().String(), stopped
}

func TestGracefulShutdown_CleanExit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server, addr, stopped := startTestServer(t, mux)

	resp, err := http.Get("http://" + addr + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		t.Errorf("expected clean shutdown, got %v", err)
	}

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("server failed to stop in time")
	}
}

func TestGracefulShutdown_InFlightRequestCompletes(t *testing.T) {
	started := make(chan struct{})
	proceed := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-proceed
		w.WriteHeader(http.StatusOK)
	})

	server, addr, stopped := startTestServer(t, mux)

	requestDone := make(chan int, 1)
	go func() {
		resp, err := http.Get("http://" + addr + "/slow")
		if err != nil {
			requestDone <- 0
			return
		}
		resp.Body.Close()
		requestDone <- resp.StatusCode
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not start in time")
	}

	// Begin shutdown while the request is still being handled, then let
	// the handler finish. Shutdown must wait for it.
	shutdownDone := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			t.Errorf("shutdown error: %v", err)
		}
		close(shutdownDone)
	}()

	time.Sleep(50 * time.Millisecond)
	close(proceed)

	select {
	case status := <-requestDone:
		if status != http.StatusOK {
			t.Errorf("in-flight request got status %d", status)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("in-flight request did not complete")
	}

	select {
	case <-shutdownDone:
	case <-time.After(10 * time.Second):
		t.Fatal("shutdown did not complete")
	}

	<-stopped
}

func TestSignalNotify_TermSignals(t *testing.T) {
	for _, sig := range []syscall.Signal{syscall.SIGINT, syscall.SIGTERM} {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		go func() {
			time.Sleep(50 * time.Millisecond)
			_ = syscall.Kill(syscall.Getpid(), sig)
		}()

		select {
		case got := <-quit:
			if got != sig {
				t.Errorf("expected %v, got %v", sig, got)
			}
		case <-time.After(2 * time.Second):
			t.Errorf("did not receive %v in time", sig)
		}
		signal.Stop(quit)
	}
}
