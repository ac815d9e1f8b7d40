package httpmiddleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestTokenBucketExhausts(t *testing.T) {
	l := NewTokenBucket(3, 60)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !l.Allow(ctx, "1.2.3.4") {
			t.Fatalf("request %d denied before bucket emptied", i+1)
		}
	}
	if l.Allow(ctx, "1.2.3.4") {
		t.Error("request allowed after bucket emptied")
	}
}

func TestTokenBucketKeysAreIndependent(t *testing.T) {
	l := NewTokenBucket(1, 60)
	ctx := context.Background()

	if !l.Allow(ctx, "1.2.3.4") {
		t.Fatal("first key denied")
	}
	if l.Allow(ctx, "1.2.3.4") {
		t.Error("first key not exhausted")
	}
	if !l.Allow(ctx, "5.6.7.8") {
		t.Error("second key throttled by first key's bucket")
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(NewTokenBucket(2, 60)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d: status %d, want %d", i+1, codes[i], want[i])
		}
	}
}
