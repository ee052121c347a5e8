package nowplaying

// StateTV is reported instead of the upstream playback state when a zone
// publishes no audio metadata at all (Playbar/Arc passing through TV audio).
const StateTV = "TV"

// Zone is one group entry of the node-sonos-http-api /zones payload.
type Zone struct {
	UUID        string      `json:"uuid"`
	Members     []Member    `json:"members"`
	Coordinator Coordinator `json:"coordinator"`
}

// Member is a single player in a zone.
type Member struct {
	UUID     string `json:"uuid"`
	RoomName string `json:"roomName"`
}

// Coordinator is the zone member that owns transport state for the group.
type Coordinator struct {
	UUID     string        `json:"uuid"`
	RoomName string        `json:"roomName"`
	State    PlaybackState `json:"state"`
}

// PlaybackState mirrors the coordinator state object.
type PlaybackState struct {
	CurrentTrack  Track  `json:"currentTrack"`
	NextTrack     Track  `json:"nextTrack"`
	PlaybackState string `json:"playbackState"`
}

// Track describes the current or upcoming item. Any field may be absent upstream.
type Track struct {
	URI                 string `json:"uri"`
	Type                string `json:"type"`
	Artist              string `json:"artist"`
	Title               string `json:"title"`
	Album               string `json:"album"`
	AlbumArtURI         string `json:"albumArtUri"`
	AbsoluteAlbumArtURI string `json:"absoluteAlbumArtUri"`
	TrackURI            string `json:"trackUri"`
	StationName         string `json:"stationName"`
}

// Room is the render-ready record for one zone.
type Room struct {
	Name     string `json:"name"`
	State    string `json:"state"`
	Artist   string `json:"artist"`
	Track    string `json:"track"`
	AlbumArt string `json:"albumArt"`
}

// Options controls normalization.
type Options struct {
	// Exclude lists room names that never appear in a display name.
	Exclude []string
	// FallbackBaseURL prefixes relative album art when neither the selected
	// track nor the current track carries an absoluteAlbumArtUri.
	FallbackBaseURL string
}

func (o Options) excludedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(o.Exclude))
	for _, name := range o.Exclude {
		set[name] = struct{}{}
	}
	return set
}
