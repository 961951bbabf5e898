package models

import "fmt"

// Validate checks the bounds a decoded Device must satisfy.
func (d Device) Validate() error {
	switch {
	case len(d.ID) > MaxDeviceIDLen:
		return fmt.Errorf("device id exceeds %d bytes", MaxDeviceIDLen)
	case len(d.Name) > MaxDeviceNameLen:
		return fmt.Errorf("device name exceeds %d bytes", MaxDeviceNameLen)
	case len(d.Type) > MaxDeviceTypeLen:
		return fmt.Errorf("device type exceeds %d bytes", MaxDeviceTypeLen)
	case d.VolumePercent < 0 || d.VolumePercent > 100:
		return fmt.Errorf("volume %d out of range", d.VolumePercent)
	}
	return nil
}

// Validate checks string bounds and array capacities.
func (t Track) Validate() error {
	if len(t.Artists) > MaxArtists {
		return fmt.Errorf("track has %d artists, capacity is %d", len(t.Artists), MaxArtists)
	}
	if len(t.AlbumImages) > MaxImages {
		return fmt.Errorf("track has %d images, capacity is %d", len(t.AlbumImages), MaxImages)
	}
	if len(t.Name) > MaxNameLen || len(t.AlbumName) > MaxNameLen {
		return fmt.Errorf("track or album name exceeds %d bytes", MaxNameLen)
	}
	if len(t.URI) > MaxURILen || len(t.AlbumURI) > MaxURILen {
		return fmt.Errorf("track or album uri exceeds %d bytes", MaxURILen)
	}
	for _, img := range t.AlbumImages {
		if len(img.URL) > MaxURLLen {
			return fmt.Errorf("image url exceeds %d bytes", MaxURLLen)
		}
	}
	return nil
}

func (p PlayerState) Validate() error {
	if p.ProgressMS < 0 {
		return fmt.Errorf("negative progress %d", p.ProgressMS)
	}
	return p.Device.Validate()
}

func (c CurrentlyPlaying) Validate() error {
	if c.ProgressMS < 0 || c.DurationMS < 0 {
		return fmt.Errorf("negative progress or duration")
	}
	return c.Track().Validate()
}

func (s SearchResult) Validate() error {
	if len(s.Tracks) > MaxSearchResults {
		return fmt.Errorf("search returned %d tracks, capacity is %d", len(s.Tracks), MaxSearchResults)
	}
	for i, t := range s.Tracks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("track %d: %w", i, err)
		}
	}
	return nil
}
