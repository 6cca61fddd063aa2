package presentation

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/application/usecases"
	"github.com/sglre6355/sgrpresence/internal/modules/presence/domain"
)

type presenceResponse struct {
	Snapshot *snapshotResponse `json:"snapshot"`
	Loading  bool              `json:"loading"`
	Error    string            `json:"error,omitempty"`
}

type snapshotResponse struct {
	ID            string             `json:"id"`
	Username      string             `json:"username"`
	Discriminator string             `json:"discriminator"`
	Avatar        string             `json:"avatar,omitempty"`
	AvatarURL     string             `json:"avatar_url"`
	BannerURL     string             `json:"banner_url,omitempty"`
	Status        string             `json:"status"`
	Activities    []activityResponse `json:"activities"`
	About         string             `json:"about,omitempty"`
	Badges        []string           `json:"badges"`
}

type timestampsResponse struct {
	Start int64 `json:"start,omitempty"`
	End   int64 `json:"end,omitempty"`
}

type assetsResponse struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
}

type partyResponse struct {
	ID   string `json:"id,omitempty"`
	Size []int  `json:"size,omitempty"`
}

type activityResponse struct {
	Type       int                 `json:"type"`
	Name       string              `json:"name"`
	Details    string              `json:"details,omitempty"`
	State      string              `json:"state,omitempty"`
	Timestamps *timestampsResponse `json:"timestamps,omitempty"`
	Assets     *assetsResponse     `json:"assets,omitempty"`
	SyncID     string              `json:"sync_id,omitempty"`
	Party      *partyResponse      `json:"party,omitempty"`
}

type connectionResponse struct {
	State             string `json:"state"`
	Open              bool   `json:"open"`
	HeartbeatInterval int64  `json:"heartbeat_interval_ms,omitempty"`
	Attempt           int    `json:"attempt,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newPresenceResponse(view usecases.View) presenceResponse {
	resp := presenceResponse{Loading: view.Loading, Error: view.Error}
	if view.Snapshot != nil {
		s := newSnapshotResponse(*view.Snapshot)
		resp.Snapshot = &s
	}
	return resp
}

func newSnapshotResponse(s domain.Snapshot) snapshotResponse {
	user := &discordgo.User{
		ID:            s.ID.String(),
		Discriminator: s.Discriminator,
		Avatar:        s.Avatar,
	}

	resp := snapshotResponse{
		ID:            s.ID.String(),
		Username:      s.Username,
		Discriminator: s.Discriminator,
		Avatar:        s.Avatar,
		AvatarURL:     user.AvatarURL(""),
		BannerURL:     s.BannerURL,
		Status:        s.Status.String(),
		Activities:    make([]activityResponse, 0, len(s.Activities)),
		About:         s.About,
		Badges:        s.Badges,
	}
	for _, a := range s.Activities {
		resp.Activities = append(resp.Activities, newActivityResponse(a))
	}
	return resp
}

func newActivityResponse(a domain.Activity) activityResponse {
	resp := activityResponse{
		Type:    int(a.Kind),
		Name:    a.Name,
		Details: a.Details,
		State:   a.State,
		SyncID:  a.SyncID,
	}
	if a.Timestamps != nil {
		resp.Timestamps = &timestampsResponse{Start: a.Timestamps.Start, End: a.Timestamps.End}
	}
	if a.Assets != nil {
		resp.Assets = &assetsResponse{LargeImage: a.Assets.LargeImage, LargeText: a.Assets.LargeText}
	}
	if a.Party != nil {
		resp.Party = &partyResponse{ID: a.Party.ID, Size: a.Party.Size}
	}
	return resp
}

func newConnectionResponse(state domain.ConnectionState) connectionResponse {
	return connectionResponse{
		State:             state.Phase.String(),
		Open:              state.IsOpen(),
		HeartbeatInterval: state.HeartbeatInterval.Milliseconds(),
		Attempt:           state.Attempt,
	}
}
