package domain

import "github.com/bwmarrin/discordgo"

// ActivityKind is the Discord activity type.
type ActivityKind int

const (
	ActivityKindGame      = ActivityKind(discordgo.ActivityTypeGame)
	ActivityKindStreaming = ActivityKind(discordgo.ActivityTypeStreaming)
	ActivityKindListening = ActivityKind(discordgo.ActivityTypeListening)
	ActivityKindWatching  = ActivityKind(discordgo.ActivityTypeWatching)
	ActivityKindCustom    = ActivityKind(discordgo.ActivityTypeCustom)
	ActivityKindCompeting = ActivityKind(discordgo.ActivityTypeCompeting)
)

// Timestamps holds activity start/end times in epoch milliseconds. Zero means unset.
type Timestamps struct {
	Start int64
	End   int64
}

// Assets holds the activity's artwork references.
type Assets struct {
	LargeImage string
	LargeText  string
}

// Party describes the activity's party, if any.
type Party struct {
	ID   string
	Size []int
}

// Activity is a single entry of the user's activity list.
// Empty strings and nil pointers mean the field was absent.
type Activity struct {
	Kind       ActivityKind
	Name       string
	Details    string
	State      string
	Timestamps *Timestamps
	Assets     *Assets
	SyncID     string
	Party      *Party
}

// Clone returns a deep copy of the activity.
func (a Activity) Clone() Activity {
	out := a
	if a.Timestamps != nil {
		ts := *a.Timestamps
		out.Timestamps = &ts
	}
	if a.Assets != nil {
		assets := *a.Assets
		out.Assets = &assets
	}
	if a.Party != nil {
		party := Party{ID: a.Party.ID}
		if a.Party.Size != nil {
			party.Size = append([]int(nil), a.Party.Size...)
		}
		out.Party = &party
	}
	return out
}

// customStatusText returns the state of the first custom status activity.
func customStatusText(activities []Activity) (string, bool) {
	for _, a := range activities {
		if a.Kind == ActivityKindCustom {
			return a.State, a.State != ""
		}
	}
	return "", false
}

func cloneActivities(activities []Activity) []Activity {
	out := make([]Activity, len(activities))
	for i, a := range activities {
		out[i] = a.Clone()
	}
	return out
}
