package models

// Location represents a geographical point.
type Location struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// RequestLocation is the location attached to a service request. The
// address is the human-readable form shown to providers.
type RequestLocation struct {
	Lat     float64 `bson:"lat" json:"lat"`
	Lng     float64 `bson:"lng" json:"lng"`
	Address string  `bson:"address" json:"address"`
}

// HasCoordinates reports whether the location carries usable coordinates.
// Providers without a stored location are skipped during discovery.
func (l *Location) HasCoordinates() bool {
	return l != nil && !(l.Lat == 0 && l.Lng == 0)
}
