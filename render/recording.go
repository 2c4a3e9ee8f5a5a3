package render

import (
	"github.com/samber/lo"
)

// RecordingSubmitter keeps every submission in memory. It backs headless runs and tests.
type RecordingSubmitter struct {
	Commands   []DrawCommand
	DebugBoxes []DebugBox
	// Fail, when set, is consulted before recording a draw command; a non-nil result is returned instead.
	Fail func(cmd DrawCommand) error
}

// Submit records cmd.
func (rs *RecordingSubmitter) Submit(cmd DrawCommand) error {
	if rs.Fail != nil {
		if err := rs.Fail(cmd); err != nil {
			return err
		}
	}
	rs.Commands = append(rs.Commands, cmd)
	return nil
}

// SubmitDebugBox records box.
func (rs *RecordingSubmitter) SubmitDebugBox(box DebugBox) error {
	rs.DebugBoxes = append(rs.DebugBoxes, box)
	return nil
}

// Names returns the names of the recorded draw commands in submission order.
func (rs *RecordingSubmitter) Names() []string {
	return lo.Map(rs.Commands, func(cmd DrawCommand, _ int) string {
		return cmd.Name
	})
}

// Reset drops everything recorded so far.
func (rs *RecordingSubmitter) Reset() {
	rs.Commands = nil
	rs.DebugBoxes = nil
}
