// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package roblox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robprofile/robprofile/internal/config"
	"github.com/robprofile/robprofile/internal/models"
)

// testConfig returns a client config pointed at the given test server
// with fast retry timings.
func testConfig(serverURL string) config.RobloxConfig {
	return config.RobloxConfig{
		UsersURL:       serverURL,
		BadgesURL:      serverURL,
		GroupsURL:      serverURL,
		GamesURL:       serverURL,
		ThumbnailsURL:  serverURL,
		ExploreURL:     serverURL,
		Timeout:        2 * time.Second,
		MaxRetries:     2,
		InitialBackoff: 5 * time.Millisecond,
		MaxRetryAfter:  30 * time.Second,
		RateLimit:      1000,
		RateBurst:      100,
		BreakerEnabled: false,
		BadgePageLimit: 100,
		BadgeMax:       200,
	}
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	res := client.Fetch(context.Background(), server.URL+"/v1/ping")

	if !res.OK {
		t.Fatalf("Fetch failed: %v", res.Err)
	}
	if res.Status != http.StatusOK {
		t.Errorf("Status = %d, want 200", res.Status)
	}
	if string(res.Data) != `{"ok":true}` {
		t.Errorf("Data = %q", res.Data)
	}
	if res.Duration <= 0 {
		t.Error("Duration should be positive")
	}
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	res := client.Fetch(context.Background(), server.URL+"/v1/flaky")

	if !res.OK {
		t.Fatalf("Fetch should succeed after retries: %v", res.Err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("upstream called %d times, want 3", got)
	}
}

func TestFetch_ClientErrorIsFatal(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	res := client.Fetch(context.Background(), server.URL+"/v1/missing")

	if res.OK {
		t.Fatal("Fetch should fail on 404")
	}
	if res.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", res.Status)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("404 must not be retried, upstream called %d times", got)
	}
}

func TestFetch_HonorsRetryAfter(t *testing.T) {
	var calls atomic.Int32
	start := time.Now()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	res := client.Fetch(context.Background(), server.URL+"/v1/limited")

	if !res.OK {
		t.Fatalf("Fetch should succeed after 429 retry: %v", res.Err)
	}
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Errorf("Retry-After of 1s not honored, elapsed %v", elapsed)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("upstream called %d times, want 2", got)
	}
}

func TestFetch_IgnoresExcessiveRetryAfter(t *testing.T) {
	var calls atomic.Int32
	start := time.Now()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "3600")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxRetryAfter = 30 * time.Second
	client := NewClient(cfg)
	res := client.Fetch(context.Background(), server.URL+"/v1/limited")

	if !res.OK {
		t.Fatalf("Fetch should fall back to exponential backoff: %v", res.Err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("excessive Retry-After should be ignored, elapsed %v", elapsed)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"5", 5 * time.Second},
		{" 10 ", 10 * time.Second},
		{"0", 0},
		{"-3", 0},
		{"", 0},
		{"Wed, 21 Oct 2026 07:28:00 GMT", 0},
		{"abc", 0},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.value); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestUserBadges_Pagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cursor := r.URL.Query().Get("cursor")
		switch cursor {
		case "":
			fmt.Fprint(w, `{"nextPageCursor":"page2","data":[{"id":1,"name":"Welcome"},{"id":2,"name":"Explorer"}]}`)
		case "page2":
			fmt.Fprint(w, `{"nextPageCursor":"","data":[{"id":3,"name":"Veteran"}]}`)
		default:
			t.Errorf("unexpected cursor %q", cursor)
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	badges, err := client.UserBadges(context.Background(), nil, 156)
	if err != nil {
		t.Fatalf("UserBadges: %v", err)
	}
	if len(badges) != 3 {
		t.Fatalf("got %d badges, want 3", len(badges))
	}
	if badges[2].Name != "Veteran" {
		t.Errorf("badges[2].Name = %q, want Veteran", badges[2].Name)
	}
}

func TestUserBadges_CapEnforced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Always claim another page exists; the cap must stop the loop.
		fmt.Fprint(w, `{"nextPageCursor":"more","data":[`)
		for i := 0; i < 100; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"id":%d,"name":"Badge %d"}`, i, i)
		}
		fmt.Fprint(w, `]}`)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.BadgeMax = 200
	client := NewClient(cfg)

	badges, err := client.UserBadges(context.Background(), nil, 156)
	if err != nil {
		t.Fatalf("UserBadges: %v", err)
	}
	if len(badges) != 200 {
		t.Errorf("got %d badges, want cap of 200", len(badges))
	}
}

func TestUserGroups_NestedShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"role":{"name":"Member"},"group":{"id":7,"name":"Speed Runners","memberCount":1200}}]}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	groups, err := client.UserGroups(context.Background(), nil, 156)
	if err != nil {
		t.Fatalf("UserGroups: %v", err)
	}
	if len(groups) != 1 || groups[0].Name != "Speed Runners" || groups[0].ID != 7 {
		t.Errorf("unexpected groups: %+v", groups)
	}
}

func TestFetchSignals_SettleAll(t *testing.T) {
	// Profile endpoint fails hard; badges and groups succeed. The bundle
	// must still carry the successful sources.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/users/156":
			w.WriteHeader(http.StatusInternalServerError)
		case r.URL.Path == "/v1/users/156/badges":
			fmt.Fprint(w, `{"nextPageCursor":"","data":[{"id":1,"name":"Welcome"}]}`)
		case r.URL.Path == "/v2/users/156/groups/roles":
			fmt.Fprint(w, `{"data":[{"group":{"id":9,"name":"Builders"}}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxRetries = 0
	client := NewClient(cfg)

	bundle, diag := client.FetchSignals(context.Background(), 156)

	if len(bundle.Badges) != 1 {
		t.Errorf("got %d badges, want 1", len(bundle.Badges))
	}
	if len(bundle.Groups) != 1 {
		t.Errorf("got %d groups, want 1", len(bundle.Groups))
	}
	if !bundle.AccountCreated.IsZero() {
		t.Error("AccountCreated should be zero when profile fetch fails")
	}
	if len(diag.Errors) == 0 {
		t.Error("diagnostics should record the failed profile fetch")
	}
}

func TestGameIcons_OnlyCompleted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[
			{"targetId":1,"state":"Completed","imageUrl":"https://cdn/icon1.png"},
			{"targetId":2,"state":"Pending","imageUrl":""},
			{"targetId":3,"state":"Blocked","imageUrl":"https://cdn/blocked.png"}
		]}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	icons, err := client.GameIcons(context.Background(), nil, []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("GameIcons: %v", err)
	}
	if len(icons) != 1 {
		t.Fatalf("got %d icons, want 1", len(icons))
	}
	if icons[1] != "https://cdn/icon1.png" {
		t.Errorf("icons[1] = %q", icons[1])
	}
}

func TestClassify(t *testing.T) {
	notFound := Result{Err: errors.New("status 404"), Status: 404}
	err := classify("user_profile", notFound)

	var classified *models.ClassifiedError
	if !errors.As(err, &classified) {
		t.Fatalf("classify should return *models.ClassifiedError, got %T", err)
	}
	if classified.Class != models.ClassInvalidInput {
		t.Errorf("404 should classify as invalid input, got %v", classified.Class)
	}

	serverErr := Result{Err: errors.New("status 502"), Status: 0}
	err = classify("games_list", serverErr)
	if !errors.As(err, &classified) || classified.Class != models.ClassUpstreamUnavailable {
		t.Errorf("5xx should classify as upstream unavailable, got %v", err)
	}
}
