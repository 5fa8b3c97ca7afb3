package httpserver_test

import (
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	httpserver "guide_gateway/internal/adapters/http_server"
)

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	return ln
}

// slowServer answers after hold and reports when a request has started.
func slowServer(hold time.Duration, started chan<- struct{}) *http.Server {
	return &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		time.Sleep(hold)
		w.WriteHeader(http.StatusOK)
	})}
}

func serveAsync(srv *http.Server, ln net.Listener, grace time.Duration, sig chan os.Signal) <-chan int {
	code := make(chan int, 1)
	go func() { code <- httpserver.Serve(srv, ln, grace, sig) }()
	return code
}

func waitCode(t *testing.T, code <-chan int) int {
	t.Helper()
	select {
	case c := <-code:
		return c
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve did not return")
		return -1
	}
}

func TestServe_CleanShutdownDrainsInFlight(t *testing.T) {
	ln := listen(t)
	started := make(chan struct{}, 1)
	sig := make(chan os.Signal, 2)
	code := serveAsync(slowServer(100*time.Millisecond, started), ln, 2*time.Second, sig)

	resp := make(chan int, 1)
	go func() {
		res, err := http.Get("http://" + ln.Addr().String())
		if err != nil {
			resp <- 0
			return
		}
		res.Body.Close()
		resp <- res.StatusCode
	}()
	<-started
	sig <- syscall.SIGTERM

	if c := waitCode(t, code); c != 0 {
		t.Fatalf("exit code: %d", c)
	}
	if s := <-resp; s != http.StatusOK {
		t.Fatalf("in-flight request was not drained, status %d", s)
	}
}

func TestServe_GraceExpiryForcesExit(t *testing.T) {
	ln := listen(t)
	started := make(chan struct{}, 1)
	sig := make(chan os.Signal, 2)
	code := serveAsync(slowServer(2*time.Second, started), ln, 50*time.Millisecond, sig)

	go func() {
		if res, err := http.Get("http://" + ln.Addr().String()); err == nil {
			res.Body.Close()
		}
	}()
	<-started
	sig <- syscall.SIGINT

	if c := waitCode(t, code); c != 1 {
		t.Fatalf("exit code: %d", c)
	}
}

func TestServe_SecondSignalForcesExit(t *testing.T) {
	ln := listen(t)
	started := make(chan struct{}, 1)
	sig := make(chan os.Signal, 2)
	code := serveAsync(slowServer(2*time.Second, started), ln, 10*time.Second, sig)

	go func() {
		if res, err := http.Get("http://" + ln.Addr().String()); err == nil {
			res.Body.Close()
		}
	}()
	<-started
	sig <- syscall.SIGTERM
	time.Sleep(20 * time.Millisecond)
	sig <- syscall.SIGTERM

	if c := waitCode(t, code); c != 1 {
		t.Fatalf("exit code: %d", c)
	}
}
