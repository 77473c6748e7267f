package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestGetLimiter_Singleton(t *testing.T) {
	if GetLimiter() != GetLimiter() {
		t.Error("GetLimiter() returned different instances")
	}
}

func TestLimiter_UnlimitedInTests(t *testing.T) {
	l := GetLimiter()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 100; i++ {
		if err := l.Wait(ctx, APISheets); err != nil {
			t.Fatalf("Wait() returned unexpected error on call %d: %v", i, err)
		}
	}
	if !l.Allow(APISheets) {
		t.Error("Allow() = false in test mode, want true")
	}
}

func TestLimiter_UnknownAPI(t *testing.T) {
	l := GetLimiter()
	if err := l.Wait(context.Background(), API("unknown")); err != nil {
		t.Errorf("Wait() for unknown API returned %v, want nil", err)
	}
	if !l.Allow(API("unknown")) {
		t.Error("Allow() for unknown API = false, want true")
	}
}
