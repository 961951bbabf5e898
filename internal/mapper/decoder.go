package mapper

import (
	"fmt"

	"github.com/desertthunder/spotbox/internal/jsonx"
	"github.com/desertthunder/spotbox/internal/models"
	"github.com/desertthunder/spotbox/internal/shared"
)

// decoder reads required fields and keeps the first failure. Values read after a failure are discarded by the caller.
type decoder struct {
	err error
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

func (d *decoder) fail(path string) {
	if d.err == nil {
		d.err = shared.MissingField(path)
	}
}

func (d *decoder) text(n jsonx.Node, path, key string, max int) string {
	s, ok := n.Get(key).String()
	if !ok {
		d.fail(join(path, key))
		return ""
	}
	return models.Truncate(s, max)
}

func (d *decoder) integer(n jsonx.Node, path, key string) int64 {
	v, ok := n.Get(key).Int()
	if !ok {
		d.fail(join(path, key))
	}
	return v
}

// optionalInt reads a nullable or absent integer as zero. A present value of another type still fails.
func (d *decoder) optionalInt(n jsonx.Node, path, key string) int64 {
	field := n.Get(key)
	if !field.Exists() || field.IsNull() {
		return 0
	}
	return d.integer(n, path, key)
}

func (d *decoder) boolean(n jsonx.Node, path, key string) bool {
	v, ok := n.Get(key).Bool()
	if !ok {
		d.fail(join(path, key))
	}
	return v
}

func (d *decoder) object(n jsonx.Node, path, key string) jsonx.Node {
	field := n.Get(key)
	if !field.IsObject() {
		d.fail(join(path, key))
	}
	return field
}

func (d *decoder) array(n jsonx.Node, path, key string) jsonx.Node {
	field := n.Get(key)
	if !field.IsArray() {
		d.fail(join(path, key))
	}
	return field
}

func (d *decoder) device(n jsonx.Node, path string) models.Device {
	if !n.IsObject() {
		d.fail(path)
		return models.Device{}
	}
	dev := models.NewDevice(
		d.text(n, path, "id", models.MaxDeviceIDLen),
		d.text(n, path, "name", models.MaxDeviceNameLen),
		d.text(n, path, "type", models.MaxDeviceTypeLen),
		int(d.integer(n, path, "volume_percent")),
	)
	dev.IsActive = d.boolean(n, path, "is_active")
	dev.IsRestricted = n.Get("is_restricted").IsTrue()
	dev.IsPrivateSession = n.Get("is_private_session").IsTrue()
	return dev
}

func (d *decoder) artists(n jsonx.Node, path string) []models.Artist {
	list := d.array(n, path, "artists")
	count := min(list.ArraySize(), models.MaxArtists)
	artists := make([]models.Artist, 0, count)
	for i := range count {
		p := index(join(path, "artists"), i)
		a := list.ArrayItem(i)
		artists = append(artists, models.NewArtist(
			d.text(a, p, "name", models.MaxNameLen),
			d.text(a, p, "uri", models.MaxURILen),
		))
	}
	return artists
}

// images tolerates an absent images key; a present one must be an array.
func (d *decoder) images(album jsonx.Node, path string) []models.Image {
	field := album.Get("images")
	if !field.Exists() || field.IsNull() {
		return []models.Image{}
	}
	list := d.array(album, path, "images")
	count := min(list.ArraySize(), models.MaxImages)
	images := make([]models.Image, 0, count)
	for i := range count {
		p := index(join(path, "images"), i)
		img := list.ArrayItem(i)
		images = append(images, models.Image{
			Height: int(d.optionalInt(img, p, "height")),
			Width:  int(d.optionalInt(img, p, "width")),
			URL:    d.text(img, p, "url", models.MaxURLLen),
		})
	}
	return images
}

func (d *decoder) track(n jsonx.Node, path string) models.Track {
	if !n.IsObject() {
		d.fail(path)
		return models.Track{}
	}
	albumPath := join(path, "album")
	album := d.object(n, path, "album")
	return models.Track{
		Name:        d.text(n, path, "name", models.MaxNameLen),
		URI:         d.text(n, path, "uri", models.MaxURILen),
		DurationMS:  d.integer(n, path, "duration_ms"),
		Artists:     d.artists(n, path),
		AlbumName:   d.text(album, albumPath, "name", models.MaxNameLen),
		AlbumURI:    d.text(album, albumPath, "uri", models.MaxURILen),
		AlbumImages: d.images(album, albumPath),
	}
}
