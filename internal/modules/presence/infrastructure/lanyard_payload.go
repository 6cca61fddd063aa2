package infrastructure

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/domain"
)

// Wire types shared by the Lanyard REST lookup and the Lanyard socket.

type lanyardUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`
}

type lanyardTimestamps struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

type lanyardAssets struct {
	LargeImage string `json:"large_image"`
	LargeText  string `json:"large_text"`
}

type lanyardParty struct {
	ID   string `json:"id"`
	Size []int  `json:"size"`
}

type lanyardActivity struct {
	Type       int                `json:"type"`
	Name       string             `json:"name"`
	Details    string             `json:"details"`
	State      string             `json:"state"`
	Timestamps *lanyardTimestamps `json:"timestamps"`
	Assets     *lanyardAssets     `json:"assets"`
	SyncID     string             `json:"sync_id"`
	Party      *lanyardParty      `json:"party"`
}

type lanyardPresence struct {
	UserID        string             `json:"user_id"`
	DiscordUser   *lanyardUser       `json:"discord_user"`
	DiscordStatus string             `json:"discord_status"`
	Activities    *[]lanyardActivity `json:"activities"`
}

// userID returns the id the payload is about, preferring the event's user_id.
func (p lanyardPresence) userID() snowflake.ID {
	if id, err := snowflake.Parse(p.UserID); err == nil {
		return id
	}
	if p.DiscordUser != nil {
		if id, err := snowflake.Parse(p.DiscordUser.ID); err == nil {
			return id
		}
	}
	return 0
}

func (p lanyardPresence) toDomain() domain.Presence {
	var out domain.Presence

	if p.DiscordUser != nil {
		out.User = domain.PresenceUser{
			Username:      p.DiscordUser.Username,
			Discriminator: p.DiscordUser.Discriminator,
			Avatar:        p.DiscordUser.Avatar,
		}
		if id, err := snowflake.Parse(p.DiscordUser.ID); err == nil {
			out.User.ID = id
		}
	}

	if status, ok := domain.ParseStatus(p.DiscordStatus); ok {
		out.Status = status
	}

	if p.Activities != nil {
		out.HasActivities = true
		out.Activities = make([]domain.Activity, 0, len(*p.Activities))
		for _, a := range *p.Activities {
			out.Activities = append(out.Activities, a.toDomain())
		}
	}

	return out
}

func (a lanyardActivity) toDomain() domain.Activity {
	out := domain.Activity{
		Kind:    domain.ActivityKind(a.Type),
		Name:    a.Name,
		Details: a.Details,
		State:   a.State,
		SyncID:  a.SyncID,
	}
	if a.Timestamps != nil {
		out.Timestamps = &domain.Timestamps{Start: a.Timestamps.Start, End: a.Timestamps.End}
	}
	if a.Assets != nil {
		out.Assets = &domain.Assets{LargeImage: a.Assets.LargeImage, LargeText: a.Assets.LargeText}
	}
	if a.Party != nil {
		out.Party = &domain.Party{ID: a.Party.ID, Size: a.Party.Size}
	}
	return out
}
