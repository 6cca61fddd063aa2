package domain

import (
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// SpotifyApplicationID is the Discord application that publishes Spotify listening activity.
const SpotifyApplicationID = "463097721130377216"

const spotifyActivityName = "Spotify"

// Defaults applied to a Spotify activity missing its title or artist.
const (
	DefaultSongName   = "Unknown Song"
	DefaultArtistName = "Unknown Artist"
)

const (
	spotifyTrackURL  = "https://open.spotify.com/track/"
	spotifySearchURL = "https://open.spotify.com/search/"
	spotifyImageURL  = "https://i.scdn.co/image/"
	spotifyImageRef  = "spotify:"
)

// PlaybackView is the "now playing" projection of a snapshot.
type PlaybackView struct {
	IsPlaying  bool   `json:"isPlaying"`
	SongName   string `json:"songName,omitempty"`
	ArtistName string `json:"artistName,omitempty"`
	AlbumName  string `json:"albumName,omitempty"`
	AlbumArt   string `json:"albumArt,omitempty"`
	SongURL    string `json:"songUrl,omitempty"`
	ProgressMs *int64 `json:"progress_ms,omitempty"`
	DurationMs *int64 `json:"duration_ms,omitempty"`
}

// NotPlaying is the projection of a snapshot without Spotify activity.
var NotPlaying = PlaybackView{IsPlaying: false}

// Project derives the playback view from a snapshot at the given instant.
// Progress is only accurate at now; callers wanting a live counter must re-project.
func Project(s *Snapshot, now time.Time) PlaybackView {
	if s == nil {
		return NotPlaying
	}

	activity, ok := findSpotifyActivity(s.Activities)
	if !ok {
		return NotPlaying
	}

	view := PlaybackView{
		IsPlaying:  true,
		SongName:   firstNonEmpty(activity.Details, DefaultSongName),
		ArtistName: firstNonEmpty(activity.State, DefaultArtistName),
	}

	if activity.Assets != nil {
		view.AlbumName = activity.Assets.LargeText
		view.AlbumArt = coverArtURL(activity.Assets.LargeImage)
	}

	view.SongURL = listenURL(activity.SyncID, view.SongName, view.ArtistName)

	if ts := activity.Timestamps; ts != nil && ts.Start != 0 {
		progress := now.UnixMilli() - ts.Start
		view.ProgressMs = &progress
		if ts.End != 0 {
			duration := ts.End - ts.Start
			view.DurationMs = &duration
		}
	}

	return view
}

func findSpotifyActivity(activities []Activity) (Activity, bool) {
	for _, a := range activities {
		if a.Kind == ActivityKindListening && a.Name == spotifyActivityName {
			return a, true
		}
	}
	return Activity{}, false
}

// coverArtURL resolves an activity's large image reference to a fetchable URL.
func coverArtURL(ref string) string {
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "http"):
		return ref
	case strings.HasPrefix(ref, spotifyImageRef):
		return spotifyImageURL + strings.TrimPrefix(ref, spotifyImageRef)
	default:
		return discordgo.EndpointCDN + "app-assets/" + SpotifyApplicationID + "/" + ref + ".png"
	}
}

// componentUnescaper turns url.QueryEscape output into encodeURIComponent form:
// spaces as %20 and !'()* left literal. '+' only appears for an escaped space.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func encodeURIComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// listenURL links to the track when the sync id is known, else to a search for it.
func listenURL(syncID, song, artist string) string {
	if syncID != "" {
		return spotifyTrackURL + syncID
	}
	if song == "" || artist == "" {
		return ""
	}
	return spotifySearchURL + encodeURIComponent(song+" "+artist)
}
