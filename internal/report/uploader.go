// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/relabs-tech/kick_computer/internal/kick"
)

// Outcome says what happened to an upload attempt.
type Outcome int

const (
	// Delivered: the datastore answered 200.
	Delivered Outcome = iota
	// Rejected: the datastore answered, but not 200.
	Rejected
	// Unreachable: the request never completed (DNS, connect, timeout).
	Unreachable
)

// Result is an upload outcome as a plain value. Failures are reported, never
// raised; the caller logs and moves on, and nothing here touches detection
// state.
type Result struct {
	Outcome    Outcome
	StatusCode int
	Err        error
}

// OK reports whether the record reached the datastore.
func (r Result) OK() bool {
	return r.Outcome == Delivered
}

func (r Result) String() string {
	switch r.Outcome {
	case Delivered:
		return "delivered"
	case Rejected:
		return fmt.Sprintf("rejected (HTTP %d)", r.StatusCode)
	default:
		return fmt.Sprintf("unreachable: %v", r.Err)
	}
}

// Uploader POSTs one JSON record per kick to the remote datastore.
// Fire-and-forget: one attempt, bounded by the client timeout, no retry
// queue, no durable buffering.
type Uploader struct {
	url    string
	client *http.Client
}

func NewUploader(url string, timeout time.Duration) *Uploader {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Uploader{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Send uploads the record.
func (u *Uploader) Send(ctx context.Context, rec kick.Record) Result {
	payload, err := json.Marshal(rec)
	if err != nil {
		return Result{Outcome: Unreachable, Err: fmt.Errorf("marshal record: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, bytes.NewReader(payload))
	if err != nil {
		return Result{Outcome: Unreachable, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return Result{Outcome: Unreachable, Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Result{Outcome: Rejected, StatusCode: resp.StatusCode}
	}
	return Result{Outcome: Delivered, StatusCode: resp.StatusCode}
}
