package cache

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"github.com/ZaguanLabs/gotara"
)

// newMockRedis returns a RedisCache on a mocked client. Unmet expectations
// fail the test when it ends.
func newMockRedis(t *testing.T, ttlSeconds int, prefix string) (*RedisCache, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
		db.Close()
	})
	return NewRedisCacheFromClient(db, ttlSeconds, prefix), mock
}

func TestRedisCache_Get(t *testing.T) {
	c, mock := newMockRedis(t, 3600, "")
	friend := e2t("friend")

	mock.ExpectGet(DefaultRedisPrefix + friend).SetVal("ﾄﾓ")
	mock.ExpectGet(DefaultRedisPrefix + t2e("ﾄﾓ")).RedisNil()
	mock.ExpectGet(DefaultRedisPrefix + friend).SetErr(errors.New("LOADING Redis is loading the dataset in memory"))

	if val, ok := c.Get(friend); !ok || val != "ﾄﾓ" {
		t.Errorf("hit: got %q (ok=%v)", val, ok)
	}
	if val, ok := c.Get(t2e("ﾄﾓ")); ok || val != "" {
		t.Errorf("miss: got %q (ok=%v)", val, ok)
	}
	if _, ok := c.Get(friend); ok {
		t.Error("errors should be reported as misses")
	}
}

func TestRedisCache_Set(t *testing.T) {
	tests := []struct {
		name   string
		ttl    int
		prefix string
		want   time.Duration
		key    string
	}{
		{"ttl", 3600, "", time.Hour, DefaultRedisPrefix},
		{"no ttl", 0, "", 0, DefaultRedisPrefix},
		{"negative ttl", -5, "", 0, DefaultRedisPrefix},
		{"custom prefix", 60, "site-a:", time.Minute, "site-a:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mock := newMockRedis(t, tt.ttl, tt.prefix)
			mock.ExpectSet(tt.key+e2t("Hello"), "ｺﾝﾆﾁﾊ", tt.want).SetVal("OK")

			if err := c.Set(e2t("Hello"), "ｺﾝﾆﾁﾊ"); err != nil {
				t.Errorf("Set failed: %v", err)
			}
		})
	}
}

func TestRedisCache_Set_Error(t *testing.T) {
	c, mock := newMockRedis(t, 0, "test:")
	key := e2t("friend")

	mock.ExpectSet("test:"+key, "ﾄﾓ", 0).SetErr(errors.New("READONLY You can't write against a read only replica."))
	err := c.Set(key, "ﾄﾓ")

	var cerr *gotara.CacheError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected CacheError, got %v", err)
	}
	if cerr.Retryable {
		t.Error("server-side errors are not retryable")
	}

	mock.ExpectSet("test:"+key, "ﾄﾓ", 0).SetErr(&net.OpError{Op: "write", Net: "tcp", Err: errors.New("broken pipe")})
	if err := c.Set(key, "ﾄﾓ"); !gotara.IsRetryable(err) {
		t.Errorf("network errors should be retryable: %v", err)
	}

	mock.ExpectSet("test:"+key, "ﾄﾓ", 0).SetErr(context.DeadlineExceeded)
	if err := c.Set(key, "ﾄﾓ"); !gotara.IsRetryable(err) {
		t.Errorf("timeouts should be retryable: %v", err)
	}
}

func TestRedisCache_Entries(t *testing.T) {
	c, mock := newMockRedis(t, 0, "test:")
	hello, world, friend := e2t("Hello"), e2t("world"), t2e("ﾄﾓ")

	mock.ExpectScan(0, "test:*", 100).SetVal([]string{"test:" + hello, "test:" + world}, 7)
	mock.ExpectGet("test:" + hello).SetVal("ｺﾝﾆﾁﾊ")
	mock.ExpectGet("test:" + world).RedisNil() // expired between SCAN and GET
	mock.ExpectScan(7, "test:*", 100).SetVal([]string{"test:" + friend}, 0)
	mock.ExpectGet("test:" + friend).SetVal("Friend")

	entries, err := c.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 2 || entries[hello] != "ｺﾝﾆﾁﾊ" || entries[friend] != "Friend" {
		t.Errorf("Entries = %v", entries)
	}
}

func TestRedisCache_Entries_ScanError(t *testing.T) {
	c, mock := newMockRedis(t, 0, "test:")
	mock.ExpectScan(0, "test:*", 100).SetErr(errors.New("ERR unknown command"))

	var cerr *gotara.CacheError
	if _, err := c.Entries(); !errors.As(err, &cerr) {
		t.Errorf("expected CacheError, got %v", err)
	}
}

func TestRedisCache_Ping(t *testing.T) {
	c, mock := newMockRedis(t, 3600, "")

	mock.ExpectPing().SetVal("PONG")
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}

	mock.ExpectPing().SetErr(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")})
	if err := c.Ping(context.Background()); !gotara.IsRetryable(err) {
		t.Errorf("refused connections should be retryable: %v", err)
	}
}

func TestRedisCache_Close(t *testing.T) {
	db, _ := redismock.NewClientMock()
	if err := NewRedisCacheFromClient(db, 3600, "").Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), RedisConfig{URL: "not a url"})
	var cerr *gotara.CacheError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected CacheError, got %v", err)
	}
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	var retries int
	retry := gotara.RetryConfig{
		MaxRetries: 1,
		BaseDelay:  time.Millisecond,
		MaxDelay:   time.Millisecond,
		OnRetry:    func(int, error, time.Duration) { retries++ },
	}
	_, err := NewRedisCache(context.Background(), RedisConfig{
		URL:     "redis://127.0.0.1:1",
		Timeout: 200 * time.Millisecond,
		Retry:   &retry,
	})
	if err == nil {
		t.Fatal("expected connection error")
	}
	if retries != 1 {
		t.Errorf("retries = %d, want 1", retries)
	}
}
