package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m3rciful/cinebot/internal/access"
)

func TestStateVariants(t *testing.T) {
	cases := []struct {
		st    State
		flow  Flow
		phase Phase
		cap   access.Capability
	}{
		{UploadMedia{}, FlowUpload, PhaseAwaitingMedia, access.CapUpload},
		{UploadDescription{}, FlowUpload, PhaseAwaitingDescription, access.CapUpload},
		{UploadCode{}, FlowUpload, PhaseAwaitingCode, access.CapUpload},
		{UploadPreview{}, FlowUpload, PhasePreviewPending, access.CapUpload},
		{BroadcastForward{}, FlowBroadcast, PhaseAwaitingForward, access.CapBroadcast},
		{BroadcastMedia{}, FlowBroadcast, PhaseAwaitingMediaOrSkip, access.CapBroadcast},
		{BroadcastText{}, FlowBroadcast, PhaseAwaitingText, access.CapBroadcast},
		{BroadcastPreview{}, FlowBroadcast, PhasePreviewPending, access.CapBroadcast},
		{GrantAdmin{}, FlowAdmins, PhaseAwaitingAdminID, access.CapAdmins},
		{RevokeAdmin{}, FlowAdmins, PhaseAwaitingRevokeID, access.CapAdmins},
		{AddChannel{}, FlowChannels, PhaseAwaitingChannel, access.CapChannels},
		{PromoChannel{}, FlowSettings, PhaseAwaitingPromoChannel, access.CapSettings},
		{DeleteCode{}, FlowDelete, PhaseAwaitingDeleteCode, access.CapDelete},
		{DeletePreview{}, FlowDelete, PhasePreviewPending, access.CapDelete},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.flow, tc.st.Flow(), "%T", tc.st)
		assert.Equal(t, tc.phase, tc.st.Phase(), "%T", tc.st)
		assert.Equal(t, tc.cap, tc.st.Flow().Capability(), "%T", tc.st)
	}
}
