// Package access resolves roles and the capabilities each role grants.
package access

import "github.com/m3rciful/cinebot/internal/domain"

// Capability names an action gated by role.
type Capability string

const (
	CapPanel     Capability = "panel"
	CapUpload    Capability = "upload"
	CapDelete    Capability = "delete"
	CapBroadcast Capability = "broadcast"
	CapAdmins    Capability = "admins"
	CapStats     Capability = "stats"
	CapChannels  Capability = "channels"
	CapSettings  Capability = "settings"
	CapGrantHead Capability = "grant_head"
)

// Set is an immutable capability set.
type Set map[Capability]struct{}

func newSet(caps ...Capability) Set {
	s := make(Set, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

// Has reports membership. A nil set has nothing.
func (s Set) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

var (
	juniorCaps = newSet(CapPanel, CapUpload)
	headCaps   = newSet(CapPanel, CapUpload, CapDelete, CapBroadcast, CapAdmins, CapStats, CapChannels, CapSettings)
	superCaps  = newSet(CapPanel, CapUpload, CapDelete, CapBroadcast, CapAdmins, CapStats, CapChannels, CapSettings, CapGrantHead)
)

// CapabilitiesOf returns the set held by role.
func CapabilitiesOf(role domain.Role) Set {
	switch role {
	case domain.RoleJunior:
		return juniorCaps
	case domain.RoleHead:
		return headCaps
	case domain.RoleSuper:
		return superCaps
	default:
		return nil
	}
}
