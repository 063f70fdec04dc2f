package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Replays a JSONL capture of device reports against a running server.
// Each line holds {"stream":"climate","body":{...}}. Useful for
// seeding a dev database or reproducing a field ingest problem.
func main() {
	var (
		server = flag.String("server", "http://localhost:8080", "base URL of the homesentry-data server")
		apiKey = flag.String("api-key", os.Getenv("API_KEY_WRITE"), "write API key")
		file   = flag.String("file", "", "JSONL capture to replay")
		delay  = flag.Duration("delay", 0, "pause between reports")
	)
	flag.Parse()

	if *file == "" {
		log.Fatal("Usage: homesentry-replay -file capture.jsonl [-server url] [-api-key key]")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Failed to open capture: %v", err)
	}
	defer f.Close()

	client := resty.New().
		SetBaseURL(*server).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-API-Key", *apiKey)

	batchID := uuid.NewString()
	log.Printf("Replaying %s against %s (batch %s)", *file, *server, batchID)

	type capturedReport struct {
		Stream string          `json:"stream"`
		Body   json.RawMessage `json:"body"`
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	sent, failed := 0, 0
	for n := 1; scanner.Scan(); n++ {
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var rep capturedReport
		if err := json.Unmarshal(raw, &rep); err != nil {
			log.Printf("line %d: skipping malformed entry: %v", n, err)
			failed++
			continue
		}

		resp, err := client.R().
			SetBody(rep.Body).
			Post("/api/log/" + rep.Stream)
		if err != nil {
			log.Printf("line %d: request failed: %v", n, err)
			failed++
			continue
		}
		if resp.StatusCode() >= 300 {
			log.Printf("line %d: server answered %d: %s", n, resp.StatusCode(), resp.String())
			failed++
			continue
		}
		sent++

		if *delay > 0 {
			time.Sleep(*delay)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("Failed to read capture: %v", err)
	}

	log.Printf("Replay finished: %d sent, %d failed", sent, failed)
}
