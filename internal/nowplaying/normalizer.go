package nowplaying

import (
	"strings"

	"go.uber.org/zap"
)

// Normalize maps zones to display records. It is pure: the result depends only
// on its arguments, and zones whose display name resolves to empty are skipped.
func Normalize(zones []Zone, opts Options) []Room {
	excluded := opts.excludedSet()
	rooms := make([]Room, 0, len(zones))
	for _, zone := range zones {
		name := roomName(zone, excluded)
		if name == "" {
			continue
		}
		rooms = append(rooms, normalizeZone(name, zone.Coordinator.State, opts.FallbackBaseURL))
	}
	return rooms
}

func roomName(zone Zone, excluded map[string]struct{}) string {
	if len(zone.Members) > 1 {
		names := make([]string, 0, len(zone.Members))
		for _, member := range zone.Members {
			if _, skip := excluded[member.RoomName]; skip {
				continue
			}
			names = append(names, member.RoomName)
		}
		return strings.Join(names, ", ")
	}
	if _, skip := excluded[zone.Coordinator.RoomName]; skip {
		return ""
	}
	return zone.Coordinator.RoomName
}

func normalizeZone(name string, state PlaybackState, fallbackBaseURL string) Room {
	current := state.CurrentTrack

	artSource := current
	if ClassifySource(current).usesNextTrackArt() && state.NextTrack.URI != "" {
		artSource = state.NextTrack
	}

	artist := strings.TrimSpace(current.Artist)
	track := strings.TrimSpace(current.Title)
	cover := strings.TrimSpace(current.AlbumArtURI)
	if cover != "" && !strings.HasPrefix(cover, "http") {
		cover = resolveBaseURL(artSource, current, fallbackBaseURL) + cover
	}

	if track == current.URI {
		track = ""
	}
	if current.TrackURI != "" && strings.Contains(current.TrackURI, track) {
		track = ""
	}

	displayState := state.PlaybackState
	if artist == "" && track == "" && cover == "" {
		displayState = StateTV
	}

	return Room{
		Name:     name,
		State:    displayState,
		Artist:   artist,
		Track:    track,
		AlbumArt: cover,
	}
}

// resolveBaseURL returns scheme://host:port of the first track that exposes an
// absoluteAlbumArtUri, trying the art source before the current track. When
// neither does, the configured fallback is used as is.
func resolveBaseURL(artSource, current Track, fallback string) string {
	for _, candidate := range []string{artSource.AbsoluteAlbumArtURI, current.AbsoluteAlbumArtURI} {
		if base := baseURL(candidate); base != "" {
			return base
		}
	}
	return strings.TrimRight(fallback, "/")
}

func baseURL(absolute string) string {
	absolute = strings.TrimSpace(absolute)
	if absolute == "" {
		return ""
	}
	parts := strings.Split(absolute, "/")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, "/")
}

// Normalizer binds normalization options to the caller-owned RoomList cell.
type Normalizer struct {
	opts   Options
	list   *RoomList
	logger *zap.Logger
}

// NewNormalizer creates a Normalizer writing into list.
func NewNormalizer(opts Options, list *RoomList, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if list == nil {
		list = NewRoomList()
	}
	return &Normalizer{opts: opts, list: list, logger: logger}
}

// List returns the cell this normalizer writes into.
func (n *Normalizer) List() *RoomList {
	return n.list
}

// Update decodes and normalizes one zones payload and stores the result.
// It reports whether the stored list changed. A malformed payload leaves the
// previous list and the loaded flag untouched.
func (n *Normalizer) Update(payload []byte) (bool, error) {
	zones, fieldErrs, err := DecodeZones(payload)
	if err != nil {
		return false, err
	}
	for _, fieldErr := range fieldErrs {
		n.logger.Debug("zone field ignored",
			zap.Int("zone", fieldErr.Zone),
			zap.String("field", fieldErr.Field),
			zap.Error(fieldErr.Err))
	}

	rooms := Normalize(zones, n.opts)
	changed := n.list.Replace(rooms)
	if changed {
		n.logger.Debug("room list changed", zap.Int("rooms", len(rooms)))
	}
	return changed, nil
}
