package nowplaying

import "strings"

// TrackSource tags where the current track comes from. It decides which track
// object carries usable album art.
type TrackSource int

const (
	SourceOther TrackSource = iota
	SourceSpotify
	SourceRadio
	SourceAmazonRadio
	SourceAppleRadio
)

// Sonos music service IDs as they appear in the sid= query of track URIs.
const (
	spotifySID     = "sid=12"
	amazonMusicSID = "sid=201"
	appleMusicSID  = "sid=204"
)

func (s TrackSource) String() string {
	switch s {
	case SourceSpotify:
		return "spotify"
	case SourceRadio:
		return "radio"
	case SourceAmazonRadio:
		return "amazon_radio"
	case SourceAppleRadio:
		return "apple_radio"
	default:
		return "other"
	}
}

// ClassifySource derives the source of a track once, from its URI and type.
// Spotify wins over the radio type: Spotify station tracks report type "radio"
// but still publish art on the current track.
func ClassifySource(track Track) TrackSource {
	uri := strings.ToLower(track.URI)
	switch {
	case strings.Contains(uri, "spotify") || strings.Contains(uri, spotifySID+"&") || strings.HasSuffix(uri, spotifySID):
		return SourceSpotify
	case track.Type == "radio":
		return SourceRadio
	case strings.Contains(uri, amazonMusicSID) || strings.Contains(uri, "amazon"):
		return SourceAmazonRadio
	case strings.Contains(uri, appleMusicSID) || strings.Contains(uri, "apple"):
		return SourceAppleRadio
	default:
		return SourceOther
	}
}

// usesNextTrackArt reports whether the upcoming track should be consulted for
// the album art base URL. Amazon and Apple radio lists only fill in art on
// nextTrack; Spotify's nextTrack is unreliable and radio has none.
func (s TrackSource) usesNextTrackArt() bool {
	switch s {
	case SourceSpotify, SourceRadio:
		return false
	case SourceAmazonRadio, SourceAppleRadio, SourceOther:
		return true
	}
	return false
}
