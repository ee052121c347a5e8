package display

import (
	"html/template"
	"io"
	"strings"
)

var funcs = template.FuncMap{
	"lower": strings.ToLower,
}

var roomListTemplate = template.Must(template.New("rooms").Funcs(funcs).Parse(`<div class="sonos{{if .Flip}} flip{{end}}" data-animation-speed="{{.AnimationSpeed}}">
{{- if not .Loaded}}
  <div class="dimmed light small">{{.LabelLoading}}</div>
{{- else}}
  <ul class="room-list">
  {{- range .RoomList}}
    <li class="room state-{{lower .State}}">
    {{- if $.ShowAlbumArtLeft}}{{if .AlbumArt}}
      <img class="album-art" src="{{.AlbumArt}}" alt="">
    {{- end}}{{end}}
      <div class="details">
      {{- if $.ShowRoomName}}
        <div class="name normal medium">{{.Name}}</div>
      {{- end}}
      {{- if eq .State "TV"}}
        <div class="track normal small">TV</div>
      {{- else}}
        <div class="track normal small">{{.Track}}</div>
        <div class="artist dimmed xsmall">{{.Artist}}</div>
      {{- end}}
      </div>
    {{- if $.ShowAlbumArtRight}}{{if .AlbumArt}}
      <img class="album-art" src="{{.AlbumArt}}" alt="">
    {{- end}}{{end}}
    </li>
  {{- end}}
  </ul>
{{- end}}
</div>
`))

// Render writes the room list as an HTML fragment.
func Render(w io.Writer, data TemplateData) error {
	return roomListTemplate.Execute(w, data)
}
