package dialog

import (
	"github.com/m3rciful/cinebot/internal/access"
	"github.com/m3rciful/cinebot/internal/broadcast"
	"github.com/m3rciful/cinebot/internal/domain"
)

// Flow names a multi-step admin dialog.
type Flow string

const (
	FlowUpload    Flow = "upload"
	FlowBroadcast Flow = "broadcast"
	FlowAdmins    Flow = "admins"
	FlowChannels  Flow = "channels"
	FlowSettings  Flow = "settings"
	FlowDelete    Flow = "delete"
)

// Capability is what an identity must hold to stay in the flow.
func (f Flow) Capability() access.Capability {
	switch f {
	case FlowUpload:
		return access.CapUpload
	case FlowBroadcast:
		return access.CapBroadcast
	case FlowAdmins:
		return access.CapAdmins
	case FlowChannels:
		return access.CapChannels
	case FlowSettings:
		return access.CapSettings
	case FlowDelete:
		return access.CapDelete
	}
	return access.CapPanel
}

// Phase is the step a dialog waits in.
type Phase string

const (
	PhaseAwaitingMedia        Phase = "AWAITING_MEDIA"
	PhaseAwaitingDescription  Phase = "AWAITING_DESCRIPTION"
	PhaseAwaitingCode         Phase = "AWAITING_CODE"
	PhasePreviewPending       Phase = "PREVIEW_PENDING_CONFIRM"
	PhaseAwaitingForward      Phase = "AWAITING_FORWARD"
	PhaseAwaitingMediaOrSkip  Phase = "AWAITING_MEDIA_OR_SKIP"
	PhaseAwaitingText         Phase = "AWAITING_TEXT"
	PhaseAwaitingAdminID      Phase = "AWAITING_ADMIN_ID"
	PhaseAwaitingRevokeID     Phase = "AWAITING_REVOKE_ID"
	PhaseAwaitingChannel      Phase = "AWAITING_CHANNEL"
	PhaseAwaitingPromoChannel Phase = "AWAITING_PROMO_CHANNEL"
	PhaseAwaitingDeleteCode   Phase = "AWAITING_DELETE_CODE"
)

// State is one of the variants below. Each carries only what is known at
// its phase. The set is closed to this package.
type State interface {
	Flow() Flow
	Phase() Phase
	isState()
}

type UploadMedia struct{}

type UploadDescription struct {
	Media  domain.Media
	Poster string
}

type UploadCode struct {
	Media       domain.Media
	Poster      string
	Title       string
	Description string
}

type UploadPreview struct {
	Draft domain.Item
}

type BroadcastForward struct{}

type BroadcastMedia struct{}

type BroadcastText struct {
	Media *domain.Media
}

type BroadcastPreview struct {
	Payload broadcast.Payload
}

type GrantAdmin struct {
	Role domain.Role
}

type RevokeAdmin struct{}

type AddChannel struct{}

type PromoChannel struct{}

type DeleteCode struct{}

type DeletePreview struct {
	Code  string
	Title string
}

func (UploadMedia) Flow() Flow         { return FlowUpload }
func (UploadDescription) Flow() Flow   { return FlowUpload }
func (UploadCode) Flow() Flow          { return FlowUpload }
func (UploadPreview) Flow() Flow       { return FlowUpload }
func (BroadcastForward) Flow() Flow    { return FlowBroadcast }
func (BroadcastMedia) Flow() Flow      { return FlowBroadcast }
func (BroadcastText) Flow() Flow       { return FlowBroadcast }
func (BroadcastPreview) Flow() Flow    { return FlowBroadcast }
func (GrantAdmin) Flow() Flow          { return FlowAdmins }
func (RevokeAdmin) Flow() Flow         { return FlowAdmins }
func (AddChannel) Flow() Flow          { return FlowChannels }
func (PromoChannel) Flow() Flow        { return FlowSettings }
func (DeleteCode) Flow() Flow          { return FlowDelete }
func (DeletePreview) Flow() Flow       { return FlowDelete }
func (UploadMedia) Phase() Phase       { return PhaseAwaitingMedia }
func (UploadDescription) Phase() Phase { return PhaseAwaitingDescription }
func (UploadCode) Phase() Phase        { return PhaseAwaitingCode }
func (UploadPreview) Phase() Phase     { return PhasePreviewPending }
func (BroadcastForward) Phase() Phase  { return PhaseAwaitingForward }
func (BroadcastMedia) Phase() Phase    { return PhaseAwaitingMediaOrSkip }
func (BroadcastText) Phase() Phase     { return PhaseAwaitingText }
func (BroadcastPreview) Phase() Phase  { return PhasePreviewPending }
func (GrantAdmin) Phase() Phase        { return PhaseAwaitingAdminID }
func (RevokeAdmin) Phase() Phase       { return PhaseAwaitingRevokeID }
func (AddChannel) Phase() Phase        { return PhaseAwaitingChannel }
func (PromoChannel) Phase() Phase      { return PhaseAwaitingPromoChannel }
func (DeleteCode) Phase() Phase        { return PhaseAwaitingDeleteCode }
func (DeletePreview) Phase() Phase     { return PhasePreviewPending }

func (UploadMedia) isState()       {}
func (UploadDescription) isState() {}
func (UploadCode) isState()        {}
func (UploadPreview) isState()     {}
func (BroadcastForward) isState()  {}
func (BroadcastMedia) isState()    {}
func (BroadcastText) isState()     {}
func (BroadcastPreview) isState()  {}
func (GrantAdmin) isState()        {}
func (RevokeAdmin) isState()       {}
func (AddChannel) isState()        {}
func (PromoChannel) isState()      {}
func (DeleteCode) isState()        {}
func (DeletePreview) isState()     {}
