package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockChecker は死活確認のモック。
type mockChecker struct {
	alive bool
}

func (m *mockChecker) Alive() bool { return m.alive }

// mockPinger はDB死活確認のモック。
type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(ctx context.Context) error { return m.err }

// mockCounter は件数取得のモック。
type mockCounter struct {
	count int
	err   error
}

func (m *mockCounter) Count(ctx context.Context) (int, error) { return m.count, m.err }

// TestAppHandler_Status は両バックエンドの状態がJSONに反映されることを検証する。
func TestAppHandler_Status(t *testing.T) {
	tests := []struct {
		name      string
		sessions  bool
		dbErr     error
		wantRedis bool
		wantDB    bool
	}{
		{name: "all healthy", sessions: true, dbErr: nil, wantRedis: true, wantDB: true},
		{name: "db down", sessions: true, dbErr: errors.New("refused"), wantRedis: true, wantDB: false},
		{name: "sessions down", sessions: false, dbErr: nil, wantRedis: false, wantDB: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAppHandler(&mockChecker{alive: tt.sessions}, &mockPinger{err: tt.dbErr}, &mockCounter{}, &mockCounter{})

			w := httptest.NewRecorder()
			h.Status(w, httptest.NewRequest(http.MethodGet, "/status", nil))

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
			}

			resp := decodeBody[statusResponse](t, w)
			if resp.Redis != tt.wantRedis || resp.DB != tt.wantDB {
				t.Errorf("body = %+v, want redis=%v db=%v", resp, tt.wantRedis, tt.wantDB)
			}
		})
	}
}

// TestAppHandler_Stats は件数がそのまま返ることを検証する。
func TestAppHandler_Stats(t *testing.T) {
	h := NewAppHandler(&mockChecker{alive: true}, &mockPinger{}, &mockCounter{count: 12}, &mockCounter{count: 1231})

	w := httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	resp := decodeBody[statsResponse](t, w)
	if resp.Users != 12 || resp.Files != 1231 {
		t.Errorf("body = %+v, want users=12 files=1231", resp)
	}
}

// TestAppHandler_Stats_CountError は件数取得失敗が500になることを検証する。
func TestAppHandler_Stats_CountError(t *testing.T) {
	h := NewAppHandler(&mockChecker{alive: true}, &mockPinger{}, &mockCounter{err: errors.New("query failed")}, &mockCounter{})

	w := httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
