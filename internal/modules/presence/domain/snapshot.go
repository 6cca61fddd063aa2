package domain

import (
	"slices"

	"github.com/disgoorg/snowflake/v2"
)

// Defaults applied when a field is absent from both the payload and the prior snapshot.
const (
	DefaultUsername      = "Unknown User"
	DefaultDiscriminator = "0000"
)

// DefaultBadges are the profile badges shown when none are configured.
var DefaultBadges = []string{"nitro", "active_developer", "verified_developer"}

// PresenceUser carries the user fields of a presence payload. Empty means absent.
type PresenceUser struct {
	ID            snowflake.ID
	Username      string
	Discriminator string
	Avatar        string
}

// Presence is a decoded presence payload, from either the snapshot request or a push event.
type Presence struct {
	User PresenceUser
	// Activities is only meaningful when HasActivities is true.
	Activities    []Activity
	HasActivities bool
	// Status is empty when the payload carried no recognizable status.
	Status Status
}

// Snapshot is the current view of the tracked user's presence.
// A Snapshot is treated as immutable: every change produces a new value.
type Snapshot struct {
	ID            snowflake.ID
	Username      string
	Discriminator string
	Avatar        string
	BannerURL     string
	Status        Status
	Activities    []Activity
	About         string
	Badges        []string
}

// NewSnapshot maps a fetched presence into a snapshot, applying defaults for absent fields.
// BannerURL is left empty; enrichment fills it in later.
func NewSnapshot(p Presence, badges []string) Snapshot {
	if len(badges) == 0 {
		badges = DefaultBadges
	}

	s := Snapshot{
		ID:            p.User.ID,
		Username:      firstNonEmpty(p.User.Username, DefaultUsername),
		Discriminator: firstNonEmpty(p.User.Discriminator, DefaultDiscriminator),
		Avatar:        p.User.Avatar,
		Status:        DefaultStatus,
		Activities:    []Activity{},
		Badges:        dedupe(badges),
	}
	if p.Status != "" {
		s.Status = p.Status
	}
	if p.HasActivities {
		s.Activities = cloneActivities(p.Activities)
	}
	s.About, _ = customStatusText(s.Activities)

	return s
}

// Merge builds the successor of prev from a push event: each field takes the incoming
// value if present, else the prior value, else the default. The id and banner are
// always kept from prev; banners are owned by enrichment.
func Merge(prev Snapshot, p Presence) Snapshot {
	next := Snapshot{
		ID: prev.ID,
		Username: firstNonEmpty(
			p.User.Username,
			prev.Username,
			DefaultUsername,
		),
		Discriminator: firstNonEmpty(
			p.User.Discriminator,
			prev.Discriminator,
			DefaultDiscriminator,
		),
		Avatar:    firstNonEmpty(p.User.Avatar, prev.Avatar),
		BannerURL: prev.BannerURL,
		Status:    Status(firstNonEmpty(string(p.Status), string(prev.Status), string(DefaultStatus))),
		Badges:    slices.Clone(prev.Badges),
	}
	if next.ID == 0 {
		next.ID = p.User.ID
	}
	if len(next.Badges) == 0 {
		next.Badges = slices.Clone(DefaultBadges)
	}

	if p.HasActivities {
		next.Activities = cloneActivities(p.Activities)
	} else {
		next.Activities = cloneActivities(prev.Activities)
	}

	if about, ok := customStatusText(p.Activities); ok {
		next.About = about
	} else {
		next.About = prev.About
	}

	return next
}

// WithBanner returns a copy of s with the banner URL replaced.
func (s Snapshot) WithBanner(url string) Snapshot {
	next := s.Clone()
	next.BannerURL = url
	return next
}

// HasBanner returns true if a banner URL is known.
func (s Snapshot) HasBanner() bool {
	return s.BannerURL != ""
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Activities = cloneActivities(s.Activities)
	out.Badges = slices.Clone(s.Badges)
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
