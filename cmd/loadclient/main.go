package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// Dispara REQUESTS requisições concorrentes contra TARGET_ADDR. Com MODE
// definido, envia antes a diretiva /setmode.
func main() {
	addr := getenvDefault("TARGET_ADDR", "127.0.0.1:8081")
	n := getenvIntDefault("REQUESTS", 5)
	mode := os.Getenv("MODE")
	timeout := getenvDurationDefault("REQUEST_TIMEOUT", 60*time.Second)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if mode != "" {
		body, err := get(ctx, addr, "/setmode?mode="+mode, timeout)
		if err != nil {
			log.Fatalf("setmode error: %v", err)
		}
		log.Printf("setmode -> %s", body)
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			body, err := get(gctx, addr, "/work?client="+strconv.Itoa(i), timeout)
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			var out map[string]any
			if err := json.Unmarshal(body, &out); err != nil {
				log.Printf("request %d: non-JSON response: %q", i, body)
				return nil
			}
			log.Printf("request %d: #%v %v wait=%vs proc=%vs total=%vs mode=%v",
				i, out["request_number"], out["thread_name"],
				out["queue_wait_time"], out["processing_time"], out["total_time"], out["scheduling_mode"])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("load error: %v", err)
	}
	log.Printf("%d requests finished in %s", n, time.Since(start).Round(time.Millisecond))
}

// get fala HTTP/1.1 direto sobre TCP: o servidor fecha a conexão após cada resposta.
func get(ctx context.Context, addr, path string, timeout time.Duration) ([]byte, error) {
	d := net.Dialer{Timeout: 5 * time.Second}
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	defer func() { _ = nc.Close() }()

	stop := context.AfterFunc(ctx, func() { _ = nc.SetDeadline(time.Now()) })
	defer stop()
	_ = nc.SetDeadline(time.Now().Add(timeout))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+path, nil)
	if err != nil {
		return nil, err
	}
	req.Close = true
	if err := req.Write(nc); err != nil {
		return nil, err
	}

	resp, err := http.ReadResponse(bufio.NewReader(nc), req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return body, fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
