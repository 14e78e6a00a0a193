// Command healthcheck is the container HEALTHCHECK command for fanquiz. Scratch
// images have no curl or wget, so the image ships this binary next to the
// server and runs it as `HEALTHCHECK CMD ["/healthcheck"]`. It exits 0 when
// GET /api/v1/health answers 200 within the timeout, 1 otherwise.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"
)

const (
	defaultAddr  = "127.0.0.1:8080"
	checkTimeout = 2 * time.Second
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	if err := check(ctx, http.DefaultClient, healthURL(os.Getenv("FANQUIZ_LISTEN_ADDR"))); err != nil {
		fmt.Fprintln(os.Stderr, "healthcheck:", err)
		os.Exit(1)
	}
}

func healthURL(listenAddr string) string {
	return "http://" + loopbackAddr(listenAddr) + "/api/v1/health"
}

// check returns nil when url answers 200 before ctx expires.
func check(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %d", url, resp.StatusCode)
	}
	return nil
}

// loopbackAddr maps the server's bind address to one the check can dial from
// inside the same container: a wildcard host becomes 127.0.0.1.
func loopbackAddr(listenAddr string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return defaultAddr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
