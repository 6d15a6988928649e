// Package process supervises short-lived child processes: group creation,
// tree kill on context cancellation, and bounded reaping.
package process

import (
	"os/exec"
	"time"
)

// DefaultWaitDelay bounds how long Wait blocks on pipe copying after the
// process was killed. A grandchild holding stdout open must not pin a worker.
const DefaultWaitDelay = 2 * time.Second

// Supervise prepares cmd (built with exec.CommandContext) so that context
// cancellation kills the whole process tree, then Wait reaps it within
// waitDelay. A zero waitDelay uses DefaultWaitDelay.
func Supervise(cmd *exec.Cmd, waitDelay time.Duration) {
	if waitDelay <= 0 {
		waitDelay = DefaultWaitDelay
	}
	setGroup(cmd)
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		if err := KillProcessGroup(cmd.Process.Pid); err != nil {
			// Group already gone or not ours; fall back to the direct child.
			return cmd.Process.Kill()
		}
		return nil
	}
	cmd.WaitDelay = waitDelay
}
