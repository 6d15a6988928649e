//go:build !windows

package process

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestSupervise - Cancellation kills the tree and Wait returns promptly
// ---------------------------------------------------------------------------

func TestSupervise_KillsTreeOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// sh forks sleep; killing only sh would leave sleep holding stdout.
	cmd := exec.CommandContext(ctx, "sh", "-c", "sleep 10; echo done")
	Supervise(cmd, 500*time.Millisecond)

	start := time.Now()
	out, err := cmd.Output()
	elapsed := time.Since(start)

	if err == nil {
		t.Fatalf("expected error after cancellation, got output %q", out)
	}
	if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Errorf("ctx.Err() = %v, want DeadlineExceeded", ctx.Err())
	}
	if elapsed > 3*time.Second {
		t.Errorf("Wait took %v, want prompt return after kill", elapsed)
	}
	if cmd.ProcessState == nil {
		t.Error("ProcessState = nil, process was not reaped")
	}
}

func TestSupervise_DefaultWaitDelay(t *testing.T) {
	t.Parallel()

	cmd := exec.CommandContext(context.Background(), "true")
	Supervise(cmd, 0)

	if cmd.WaitDelay != DefaultWaitDelay {
		t.Errorf("WaitDelay = %v, want %v", cmd.WaitDelay, DefaultWaitDelay)
	}
	if cmd.SysProcAttr == nil || !cmd.SysProcAttr.Setpgid {
		t.Error("Setpgid not set")
	}
	if err := cmd.Run(); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
}
