//go:build !windows

package cli

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"multiping/internal/pinger"
	"multiping/internal/storage"
	"multiping/internal/storage/models"
	"multiping/internal/storage/sqlite"
	"multiping/internal/tui"
)

// isolate points every user directory at a temp dir and returns it.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SUDO_USER", "")
	return home
}

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = Run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

// stubProbes replaces the ping binary with a shell that exits 0.
func stubProbes(t *testing.T) {
	t.Helper()
	orig := resolveCommand
	resolveCommand = func(string, time.Duration) (pinger.CommandFunc, error) {
		return func(string) *exec.Cmd { return exec.Command("sh", "-c", "exit 0") }, nil
	}
	t.Cleanup(func() { resolveCommand = orig })
}

// stubDisplay replaces the terminal UI with fn.
func stubDisplay(t *testing.T, fn func(context.Context, tui.Deps) error) {
	t.Helper()
	orig := runDisplay
	runDisplay = fn
	t.Cleanup(func() { runDisplay = orig })
}

func TestRun_PrintsHelp(t *testing.T) {
	isolate(t)

	tests := []struct {
		args     []string
		wantCode int
	}{
		{nil, exitUsage},
		{[]string{"-h"}, exitOK},
		{[]string{"--help"}, exitOK},
		{[]string{"a", "b"}, exitUsage},
		{[]string{"--bogus", "localhost"}, exitUsage},
	}
	for _, tt := range tests {
		code, stdout, stderr := run(t, tt.args...)
		if code != tt.wantCode {
			t.Errorf("%v: exit %d, want %d (stderr %q)", tt.args, code, tt.wantCode, stderr)
		}
		if !strings.Contains(stdout+stderr, "Usage:") {
			t.Errorf("%v: no usage printed", tt.args)
		}
	}
}

func TestRun_NegativeCount(t *testing.T) {
	isolate(t)
	if code, _, _ := run(t, "-c", "-1", "localhost"); code != exitUsage {
		t.Fatalf("exit %d, want %d", code, exitUsage)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	isolate(t)
	code, _, stderr := run(t, "--log-level", "loud", "--no-history", "localhost")
	if code != exitError {
		t.Fatalf("exit %d, want %d", code, exitError)
	}
	if !strings.Contains(stderr, "log_level") {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestRun_Version(t *testing.T) {
	isolate(t)
	code, stdout, _ := run(t, "version")
	if code != exitOK || !strings.Contains(stdout, "multiping") {
		t.Fatalf("exit %d, stdout %q", code, stdout)
	}
}

func TestRun_SwallowsInterrupt(t *testing.T) {
	home := isolate(t)
	stubProbes(t)
	dbPath := filepath.Join(home, "history.db")

	var sent int
	stubDisplay(t, func(ctx context.Context, deps tui.Deps) error {
		status := deps.Source.Status()
		deadline := time.Now().Add(5 * time.Second)
		for status.Sent() < 3 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		sent = status.Sent()
		return tea.ErrProgramKilled
	})

	code, _, stderr := run(t, "-i", "10ms", "--db", dbPath, "localhost")
	if code != exitOK {
		t.Fatalf("exit %d, want 0 (stderr %q)", code, stderr)
	}
	if sent < 3 {
		t.Fatalf("only %d attempts sent", sent)
	}

	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer db.Close()

	sessions, err := db.ListSessions(context.Background(), storage.SessionFilter{})
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	s := sessions[0]
	if s.Host != "localhost" || s.EndedAt == nil || s.Sent < 3 || len(s.Outcomes) != s.Sent {
		t.Fatalf("session = %+v", s)
	}
	if strings.Trim(s.Outcomes, "#") != "" {
		t.Fatalf("outcomes = %q, want only replies", s.Outcomes)
	}
}

func TestRun_CountStopsPinger(t *testing.T) {
	isolate(t)
	stubProbes(t)

	stubDisplay(t, func(ctx context.Context, deps tui.Deps) error {
		select {
		case <-deps.Source.Done():
		case <-time.After(5 * time.Second):
			t.Error("pinger did not stop after --count attempts")
		}
		if got := deps.Source.Status().Sent(); got != 5 {
			t.Errorf("sent %d, want 5", got)
		}
		return nil
	})

	if code, _, stderr := run(t, "-i", "1ms", "-c", "5", "--no-history", "localhost"); code != exitOK {
		t.Fatalf("exit %d (stderr %q)", code, stderr)
	}
}

func seedHistory(t *testing.T, dbPath string) {
	t.Helper()
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer db.Close()

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, host := range []string{"alpha.example", "beta.example", "alpha.example"} {
		ended := base.Add(time.Duration(i)*time.Hour + time.Minute)
		s := &models.Session{
			Host:      host,
			Interval:  time.Second,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			EndedAt:   &ended,
			Sent:      4,
			Received:  3,
			Outcomes:  "##-%",
		}
		if err := db.CreateSession(context.Background(), s); err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
	}
}

func TestHistoryCommands(t *testing.T) {
	home := isolate(t)
	dbPath := filepath.Join(home, "history.db")
	seedHistory(t, dbPath)

	code, stdout, stderr := run(t, "history", "--db", dbPath)
	if code != exitOK {
		t.Fatalf("history: exit %d (stderr %q)", code, stderr)
	}
	if strings.Count(stdout, "alpha.example") != 2 || !strings.Contains(stdout, "25.0%") {
		t.Fatalf("history output:\n%s", stdout)
	}

	code, stdout, _ = run(t, "history", "--db", dbPath, "--host", "beta.example")
	if code != exitOK || strings.Contains(stdout, "alpha.example") {
		t.Fatalf("filtered history: exit %d\n%s", code, stdout)
	}

	code, stdout, _ = run(t, "history", "show", "2", "--db", dbPath)
	if code != exitOK || !strings.Contains(stdout, "beta.example") || !strings.Contains(stdout, "##-%") {
		t.Fatalf("show: exit %d\n%s", code, stdout)
	}

	if code, _, _ = run(t, "history", "show", "99", "--db", dbPath); code != exitError {
		t.Fatalf("show missing: exit %d, want %d", code, exitError)
	}
	if code, _, _ = run(t, "history", "show", "x", "--db", dbPath); code != exitUsage {
		t.Fatalf("show bad id: exit %d, want %d", code, exitUsage)
	}

	code, stdout, _ = run(t, "history", "prune", "--keep", "1", "--db", dbPath)
	if code != exitOK || !strings.Contains(stdout, "Deleted 2") {
		t.Fatalf("prune: exit %d\n%s", code, stdout)
	}
}

func TestOutcomeRows(t *testing.T) {
	s := &models.Session{
		StartedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local),
		Interval:  time.Second,
		Outcomes:  "#####-----?",
	}
	rows := outcomeRows(s, 5)
	want := []string{"09:00:00 #####", "09:00:05 -----", "09:00:10 ?"}
	if len(rows) != len(want) {
		t.Fatalf("rows = %q", rows)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, rows[i], want[i])
		}
	}
}
