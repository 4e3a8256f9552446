// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"testing"
	"time"
)

func TestValidLogLevel(t *testing.T) {
	for _, l := range []LogLevel{LogDebug, LogInfo, LogNotice, LogWarning, LogError, LogCritical, LogAlert, LogEmergency} {
		if !ValidLogLevel(l) {
			t.Errorf("ValidLogLevel(%q) = false, want true", l)
		}
	}
	if ValidLogLevel("bogus") {
		t.Error("ValidLogLevel(bogus) = true, want false")
	}
}

func TestLoggingThresholdFiltersBelowLevel(t *testing.T) {
	server := NewServer(Implementation{Name: "s", Version: "1"}, nil)
	cs, ss := connectedClientServer(t, server, nil)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	if err := cs.SetLoggingLevel(ctx, LogWarning); err != nil {
		t.Fatalf("SetLoggingLevel: %v", err)
	}

	ch := cs.Subscribe()

	if err := ss.LoggingMessage(ctx, LogInfo, "test", "below threshold"); err != nil {
		t.Fatalf("LoggingMessage: %v", err)
	}
	if err := ss.LoggingMessage(ctx, LogError, "test", "above threshold"); err != nil {
		t.Fatalf("LoggingMessage: %v", err)
	}

	select {
	case n := <-ch:
		if n.Method != "notifications/message" {
			t.Fatalf("notification method = %q, want notifications/message", n.Method)
		}
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for the above-threshold message")
	}

	select {
	case n := <-ch:
		t.Fatalf("unexpected second notification (the below-threshold message should have been dropped): %+v", n)
	case <-time.After(100 * time.Millisecond):
	}
}
