package middleware

import (
	"sync"
	"testing"
	"time"
)

func TestSessionStoreCreateAndGet(t *testing.T) {
	ss := NewSessionStore()
	token, err := ss.Create("acc-1", "admin@alhudaspark.org", "admin")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	sess, ok := ss.Get(token)
	if !ok {
		t.Fatal("session not found after Create")
	}
	if sess.AccountID != "acc-1" || sess.Role != "admin" {
		t.Errorf("session = %+v", sess)
	}

	ss.Delete(token)
	if _, ok := ss.Get(token); ok {
		t.Error("session still present after Delete")
	}
}

func TestSessionStoreExpiry(t *testing.T) {
	ss := NewSessionStore()
	ss.sessions["stale"] = Session{
		AccountID: "acc-1",
		CreatedAt: time.Now().Add(-25 * time.Hour),
	}

	if _, ok := ss.Get("stale"); ok {
		t.Error("expired session returned")
	}
	if _, present := ss.sessions["stale"]; present {
		t.Error("expired session not evicted")
	}
}

func TestSessionStoreConcurrentExpiredGet(t *testing.T) {
	ss := NewSessionStore()
	ss.sessions["stale"] = Session{
		AccountID: "acc-1",
		CreatedAt: time.Now().Add(-25 * time.Hour),
	}

	// Parallel requests carrying the same stale cookie must not race on
	// the eviction write.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := ss.Get("stale"); ok {
				t.Error("expired session returned")
			}
		}()
	}
	wg.Wait()
}
