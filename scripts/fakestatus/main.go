// Fakestatus is a stand-in connectivity endpoint for running the status
// board locally. It answers /api/check-connectivity with a fixed results map
// and never probes anything.
//
// Usage:
//
//	go run ./scripts/fakestatus --port 8000 --up Navigation,Router --down AIS
//
// Pass --fail to answer every request with HTTP 500, or --flap to invert every
// service on each request.
package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

type result struct {
	URL        string `json:"url"`
	Accessible bool   `json:"accessible"`
}

type response struct {
	IsLocal   bool              `json:"is_local"`
	Results   map[string]result `json:"results"`
	Timestamp float64           `json:"timestamp"`
}

func main() {
	port := pflag.Int("port", 8000, "port to listen on")
	up := pflag.String("up", "Navigation,Router,SignalK,InfluxDB,Dashboard", "comma separated services reported online")
	down := pflag.String("down", "AIS,SmartSolar", "comma separated services reported offline")
	fail := pflag.Bool("fail", false, "answer every request with HTTP 500")
	flap := pflag.Bool("flap", false, "invert every service on each request")
	delay := pflag.Duration("delay", 0, "wait this long before answering")
	pflag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	state := make(map[string]bool)
	for _, name := range splitList(*up) {
		state[name] = true
	}
	for _, name := range splitList(*down) {
		state[name] = false
	}

	var mutex sync.Mutex

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/check-connectivity", func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		if *delay > 0 {
			time.Sleep(*delay)
		}

		if *fail {
			log.Info("Failing request", slog.String("request_id", requestID))
			http.Error(w, `{"error": "simulated failure"}`, http.StatusInternalServerError)
			return
		}

		mutex.Lock()
		results := make(map[string]result, len(state))
		for name, accessible := range state {
			results[name] = result{
				URL:        "http://" + strings.ToLower(name) + ".local",
				Accessible: accessible,
			}
			if *flap {
				state[name] = !accessible
			}
		}
		mutex.Unlock()

		log.Info("Served status", slog.String("request_id", requestID), slog.Int("services", len(results)))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response{
			Results:   results,
			Timestamp: float64(time.Now().UnixNano()) / float64(time.Second),
		})
	})

	addr := ":" + strconv.Itoa(*port)
	log.Info("Fake status endpoint listening", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("Server stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
