package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/f1-draft/internal/config"
	"github.com/riskibarqy/f1-draft/internal/domain/state"
	"github.com/riskibarqy/f1-draft/internal/domain/user"
	"github.com/riskibarqy/f1-draft/internal/infrastructure/repository/failover"
	"github.com/riskibarqy/f1-draft/internal/platform/logging"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		HTTPAddr:          ":0",
		ReadTimeout:       time.Second,
		WriteTimeout:      time.Second,
		StateBackend:      config.BackendMemory,
		LeagueKey:         "default",
		LocalStatePath:    filepath.Join(t.TempDir(), "league.db"),
		StateHistoryLimit: 5,
		CacheEnabled:      true,
		CacheTTL:          time.Minute,
		DeadlineCheckSpec: "@every 1h",
		DeadlineLocation:  time.UTC,
		ScoringWorkers:    2,
	}
}

func TestNew_ServesHealthAndShutsDown(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	a.Start()
	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestNew_RejectsEmptyAddr(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTPAddr = ""
	if _, err := New(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}

func TestOpenStorage_LocalFilePersists(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	first, err := openStorage(ctx, cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	snapshot := state.Empty()
	snapshot.Users = []user.User{{ID: 1, Username: "alice"}}
	snapshot.Version = 3
	if err := first.state.Save(ctx, snapshot); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := first.close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := openStorage(ctx, cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("reopen storage: %v", err)
	}
	defer second.close()

	got, ok, err := second.state.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got.Version != 3 || len(got.Users) != 1 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestOpenStorage_RemoteBackendUsesFailover(t *testing.T) {
	cfg := testConfig(t)
	cfg.StateBackend = config.BackendRedis
	cfg.RedisAddr = "127.0.0.1:1"
	cfg.RedisStateKey = "f1draft:test"
	cfg.RemoteCircuitEnabled = true
	cfg.RemoteCircuitFailureCount = 1
	cfg.RemoteCircuitOpenTimeout = time.Minute
	cfg.RemoteCircuitHalfOpenMaxReq = 1

	out, err := openStorage(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	defer out.close()

	if _, ok := out.state.(*failover.StateRepository); !ok {
		t.Fatalf("expected failover repository, got %T", out.state)
	}
	if err := out.state.Save(context.Background(), state.Empty()); err != nil {
		t.Fatalf("save must succeed on the local store: %v", err)
	}
}
