package domain

import "github.com/bwmarrin/discordgo"

// Status represents the online status of the tracked user.
type Status string

const (
	StatusOnline  Status = Status(discordgo.StatusOnline)
	StatusIdle    Status = Status(discordgo.StatusIdle)
	StatusDND     Status = Status(discordgo.StatusDoNotDisturb)
	StatusOffline Status = Status(discordgo.StatusOffline)
)

// DefaultStatus is used when neither the payload nor a prior snapshot carries a status.
const DefaultStatus = StatusOffline

// ParseStatus converts a raw status string to a Status.
// Returns false for empty or unrecognized values.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusOnline:
		return StatusOnline, true
	case StatusIdle:
		return StatusIdle, true
	case StatusDND:
		return StatusDND, true
	case StatusOffline:
		return StatusOffline, true
	case Status(discordgo.StatusInvisible):
		// Observers never see invisible users as anything but offline.
		return StatusOffline, true
	default:
		return "", false
	}
}

// String returns the raw status value.
func (s Status) String() string {
	return string(s)
}
