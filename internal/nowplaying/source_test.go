package nowplaying

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySource(t *testing.T) {
	testCases := []struct {
		name     string
		track    Track
		expected TrackSource
	}{
		{"spotify uri", Track{URI: "x-sonos-spotify:spotify%3atrack%3aabc?sid=12&flags=8224&sn=1", Type: "track"}, SourceSpotify},
		{"spotify sid only", Track{URI: "x-sonosapi-hls:abc?sid=12&flags=0&sn=1"}, SourceSpotify},
		{"spotify radio wins over type", Track{URI: "x-sonosapi-radio:spotify%3aartistRadio%3aabc", Type: "radio"}, SourceSpotify},
		{"tunein radio", Track{URI: "x-sonosapi-stream:s17077?sid=254&flags=8224&sn=0", Type: "radio"}, SourceRadio},
		{"amazon music", Track{URI: "x-sonosapi-hls-static:catalog%2ftracks%2fB07?sid=201&flags=0&sn=3", Type: "track"}, SourceAmazonRadio},
		{"apple music", Track{URI: "x-sonos-http:song%3a1440857781.mp4?sid=204&flags=8224&sn=2", Type: "track"}, SourceAppleRadio},
		{"sid prefix is not spotify", Track{URI: "x-sonos-http:abc?sid=120&flags=0"}, SourceOther},
		{"local library", Track{URI: "x-file-cifs://nas/music/track.flac", Type: "track"}, SourceOther},
		{"empty", Track{}, SourceOther},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ClassifySource(tc.track))
		})
	}
}

func TestTrackSource_UsesNextTrackArt(t *testing.T) {
	assert.False(t, SourceSpotify.usesNextTrackArt())
	assert.False(t, SourceRadio.usesNextTrackArt())
	assert.True(t, SourceAmazonRadio.usesNextTrackArt())
	assert.True(t, SourceAppleRadio.usesNextTrackArt())
	assert.True(t, SourceOther.usesNextTrackArt())
}

func TestTrackSource_String(t *testing.T) {
	assert.Equal(t, "spotify", SourceSpotify.String())
	assert.Equal(t, "amazon_radio", SourceAmazonRadio.String())
	assert.Equal(t, "other", TrackSource(42).String())
}
