package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRFI_Transitions(t *testing.T) {
	base := RFI{Number: "RFI-1", Status: StatusPending, Note: "needs scaffold"}

	approved := base.Approve("QC Lead")
	require.True(t, approved.Accepted)
	require.False(t, approved.Rejected)
	require.Equal(t, StatusApproved, approved.Status)
	require.Equal(t, "QC Lead", approved.Inspector)
	require.False(t, base.Accepted, "original value must stay untouched")

	rejected := approved.Reject("QC Lead", "weld porosity")
	require.True(t, rejected.Rejected)
	require.False(t, rejected.Accepted)
	require.Equal(t, "Rejected: weld porosity | needs scaffold", rejected.Note)

	cancelled := base.Cancel("")
	require.True(t, cancelled.Cancelled)
	require.Equal(t, StatusCancelled, cancelled.Status)
	require.Equal(t, "needs scaffold", cancelled.Note)
	require.False(t, cancelled.IsPending())
}

func TestRFI_RejectWithoutNote(t *testing.T) {
	r := RFI{}.Reject("insp", "wrong tag")
	require.Equal(t, "Rejected: wrong tag", r.Note)
}

func TestProjectStatus_Valid(t *testing.T) {
	require.True(t, ProjectOnHold.Valid())
	require.False(t, ProjectStatus("archived").Valid())
}
