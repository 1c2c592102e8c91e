package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrape(t *testing.T) string {
	t.Helper()
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	return w.Body.String()
}

func TestCollectorsExposed(t *testing.T) {
	MoveApplied(ModeManual)
	MoveApplied(ModeAuto)
	MoveRejected("same_rod")
	PuzzleSolved()
	Reset()
	AutoSolveStarted()
	AutoSolveFinished(OutcomeCancelled)

	body := scrape(t)
	for _, want := range []string{
		`hanoi_moves_applied_total{mode="manual"}`,
		`hanoi_moves_applied_total{mode="auto"}`,
		`hanoi_moves_rejected_total{reason="same_rod"}`,
		"hanoi_puzzles_solved_total",
		"hanoi_resets_total",
		`hanoi_autosolve_runs_total{outcome="cancelled"}`,
		"hanoi_autosolve_running 0",
		"hanoi_ws_clients",
		"hanoi_events_total",
		"hanoi_uptime_seconds",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestAutoSolveRunningGauge(t *testing.T) {
	AutoSolveStarted()
	if !strings.Contains(scrape(t), "hanoi_autosolve_running 1") {
		t.Error("expected running gauge at 1 after start")
	}
	AutoSolveFinished(OutcomeCompleted)
	if !strings.Contains(scrape(t), "hanoi_autosolve_running 0") {
		t.Error("expected running gauge at 0 after finish")
	}
}
