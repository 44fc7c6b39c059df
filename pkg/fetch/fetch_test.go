package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/webquery-dev/webquery/internal/testutil"
)

// testPolicy keeps the suite fast: real delays stay in the policy tests.
func testPolicy(maxRetries int) Policy {
	p := DefaultPolicy()
	p.MaxRetries = maxRetries
	p.InitialDelay = 1 * time.Millisecond
	p.MaxDelay = 5 * time.Millisecond
	p.Jitter = false
	return p
}

func TestFetcher_SucceedsAfterRetryableStatuses(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.Script("/data",
		testutil.MockResponse{StatusCode: 429, Body: `{"error":"slow down"}`},
		testutil.MockResponse{StatusCode: 429, Body: `{"error":"slow down"}`},
		testutil.MockResponse{StatusCode: 200, Body: `{"ok":true}`},
	)

	f := New(nil)
	resp, err := f.Do(context.Background(), mock.URL()+"/data", Options{}, testPolicy(3))
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if got := mock.Requests(); got != 3 {
		t.Errorf("transport invoked %d times, want 3", got)
	}

	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %s", body)
	}
}

func TestFetcher_ExhaustsRetryBudget(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.Script("/broken", testutil.MockResponse{StatusCode: 500, Body: `{"error":"boom"}`})

	f := New(nil)
	_, err := f.Do(context.Background(), mock.URL()+"/broken", Options{}, testPolicy(2))
	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("err = %v, want ErrRetryExhausted", err)
	}

	// 1 initial try + 2 retries.
	if got := mock.Requests(); got != 3 {
		t.Errorf("transport invoked %d times, want 3", got)
	}
}

func TestFetcher_NonRetryableStatusReturnsImmediately(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.Script("/missing", testutil.MockResponse{StatusCode: 404, Body: `{"error":"nope"}`})

	f := New(nil)
	resp, err := f.Do(context.Background(), mock.URL()+"/missing", Options{}, testPolicy(3))
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	// The caller interprets status codes; the fetcher must not retry.
	if resp.StatusCode != 404 {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if got := mock.Requests(); got != 1 {
		t.Errorf("transport invoked %d times, want 1", got)
	}
}

func TestFetcher_NetworkErrorExhaustion(t *testing.T) {
	mock := testutil.NewMockUpstream()
	url := mock.URL()
	mock.Close() // nothing listening anymore

	f := New(nil)
	_, err := f.Do(context.Background(), url+"/gone", Options{}, testPolicy(1))
	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("err = %v, want ErrRetryExhausted", err)
	}
}

func TestFetcher_ZeroRetriesMeansSingleAttempt(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.Script("/flaky", testutil.MockResponse{StatusCode: 503, Body: `{}`})

	f := New(nil)
	_, err := f.Do(context.Background(), mock.URL()+"/flaky", Options{}, testPolicy(0))
	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("err = %v, want ErrRetryExhausted", err)
	}
	if got := mock.Requests(); got != 1 {
		t.Errorf("transport invoked %d times, want 1", got)
	}
}

func TestFetcher_PassesThroughOptions(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer token-123")
	header.Set("X-Custom", "yes")

	f := New(nil)
	resp, err := f.Do(context.Background(), mock.URL()+"/anything", Options{
		Method: http.MethodPost,
		Header: header,
		Body:   []byte(`{"q":1}`),
	}, testPolicy(0))
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()

	if got := mock.LastRequestHeader.Get("Authorization"); got != "Bearer token-123" {
		t.Errorf("Authorization header = %q", got)
	}
	if got := mock.LastRequestHeader.Get("X-Custom"); got != "yes" {
		t.Errorf("X-Custom header = %q", got)
	}
}

func TestFetcher_ContextCancelledDuringBackoff(t *testing.T) {
	mock := testutil.NewMockUpstream()
	defer mock.Close()
	mock.Script("/slow", testutil.MockResponse{StatusCode: 503, Body: `{}`})

	policy := testPolicy(3)
	policy.InitialDelay = 1 * time.Hour // force the sleep to be the blocker
	policy.MaxDelay = 1 * time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	f := New(nil)
	_, err := f.Do(ctx, mock.URL()+"/slow", Options{}, policy)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
