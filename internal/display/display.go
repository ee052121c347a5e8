package display

import (
	"strings"

	"github.com/strefethen/sonos-nowplaying-go/internal/config"
	"github.com/strefethen/sonos-nowplaying-go/internal/nowplaying"
)

// isActive reports whether a room is producing sound. Paused and stopped
// rooms are hidden when ShowStoppedRoom is off.
func isActive(state string) bool {
	switch state {
	case "PLAYING", "TRANSITIONING", nowplaying.StateTV:
		return true
	}
	return false
}

// Settings are the renderer flags. They never influence normalization.
type Settings struct {
	ShowStoppedRoom  bool
	ShowAlbumArt     bool
	AlbumArtLocation string
	ShowRoomName     bool
	AnimationSpeed   int
	Position         string
	Language         string
}

// SettingsFromConfig extracts the display flags.
func SettingsFromConfig(cfg config.Config) Settings {
	return Settings{
		ShowStoppedRoom:  cfg.ShowStoppedRoom,
		ShowAlbumArt:     cfg.ShowAlbumArt,
		AlbumArtLocation: cfg.AlbumArtLocation,
		ShowRoomName:     cfg.ShowRoomName,
		AnimationSpeed:   cfg.AnimationSpeed,
		Position:         cfg.Position,
		Language:         cfg.Language,
	}
}

// TemplateData is everything the room list template needs. Flip mirrors the
// layout for left-hand regions (top_left, bottom_left).
type TemplateData struct {
	Flip              bool              `json:"flip"`
	Loaded            bool              `json:"loaded"`
	ShowAlbumArtRight bool              `json:"showAlbumArtRight"`
	ShowAlbumArtLeft  bool              `json:"showAlbumArtLeft"`
	ShowRoomName      bool              `json:"showRoomName"`
	ShowStoppedRoom   bool              `json:"showStoppedRoom"`
	AnimationSpeed    int               `json:"animationSpeed"`
	RoomList          []nowplaying.Room `json:"roomList"`
	LabelLoading      string            `json:"labelLoading"`
}

// Build assembles template data from the current room list snapshot.
func Build(settings Settings, snapshot nowplaying.Snapshot) TemplateData {
	rooms := make([]nowplaying.Room, 0, len(snapshot.Rooms))
	for _, room := range snapshot.Rooms {
		if !settings.ShowStoppedRoom && !isActive(room.State) {
			continue
		}
		rooms = append(rooms, room)
	}

	return TemplateData{
		Flip:              strings.HasSuffix(settings.Position, "left"),
		Loaded:            snapshot.Loaded,
		ShowAlbumArtRight: settings.ShowAlbumArt && settings.AlbumArtLocation != "left",
		ShowAlbumArtLeft:  settings.ShowAlbumArt && settings.AlbumArtLocation == "left",
		ShowRoomName:      settings.ShowRoomName,
		ShowStoppedRoom:   settings.ShowStoppedRoom,
		AnimationSpeed:    settings.AnimationSpeed,
		RoomList:          rooms,
		LabelLoading:      Translate(settings.Language, KeyLoading),
	}
}
