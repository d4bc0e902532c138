package liteapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/FACorreiaa/saferstays/internal/app/models"
)

// number decodes a JSON number and silently ignores any other type, so a
// malformed field only disqualifies itself and not the whole payload.
type number struct {
	v  float64
	ok bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		n.v, n.ok = f, true
	}
	return nil
}

type latLng struct {
	Latitude  number `json:"latitude"`
	Longitude number `json:"longitude"`
	Lat       number `json:"lat"`
	Lng       number `json:"lng"`
}

// coordinate accepts either latitude/longitude or lat/lng naming.
func (p *latLng) coordinate() (models.Coordinate, bool) {
	lat, lng := p.Latitude, p.Longitude
	if !lat.ok {
		lat = p.Lat
	}
	if !lng.ok {
		lng = p.Lng
	}
	if !lat.ok || !lng.ok {
		return models.Coordinate{}, false
	}
	return models.Coordinate{Latitude: lat.v, Longitude: lng.v}, true
}

type placeShape struct {
	Data     json.RawMessage `json:"data"`
	Location *struct {
		Latitude  number `json:"latitude"`
		Longitude number `json:"longitude"`
	} `json:"location"`
	Geometry *struct {
		Location *struct {
			Lat number `json:"lat"`
			Lng number `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Lat      number `json:"lat"`
	Lng      number `json:"lng"`
	Viewport *struct {
		High *latLng `json:"high"`
		Low  *latLng `json:"low"`
	} `json:"viewport"`
}

// NormalizePlaceLocation parses a place detail payload into the canonical
// location shape. Coordinates are taken from location{latitude,longitude},
// then geometry.location{lat,lng}, then top-level lat/lng. A payload wrapped
// in an object-valued "data" field is unwrapped first.
func NormalizePlaceLocation(raw []byte) (*models.PlaceLocation, error) {
	var shape placeShape
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, fmt.Errorf("failed to decode place details: %w", models.ErrNoCoordinates)
	}
	if inner := bytes.TrimSpace(shape.Data); len(inner) > 0 && inner[0] == '{' {
		shape = placeShape{}
		if err := json.Unmarshal(inner, &shape); err != nil {
			return nil, fmt.Errorf("failed to decode place details: %w", models.ErrNoCoordinates)
		}
	}

	var (
		loc   models.Coordinate
		found bool
	)
	switch {
	case shape.Location != nil && shape.Location.Latitude.ok && shape.Location.Longitude.ok:
		loc, found = models.Coordinate{Latitude: shape.Location.Latitude.v, Longitude: shape.Location.Longitude.v}, true
	case shape.Geometry != nil && shape.Geometry.Location != nil && shape.Geometry.Location.Lat.ok && shape.Geometry.Location.Lng.ok:
		loc, found = models.Coordinate{Latitude: shape.Geometry.Location.Lat.v, Longitude: shape.Geometry.Location.Lng.v}, true
	case shape.Lat.ok && shape.Lng.ok:
		loc, found = models.Coordinate{Latitude: shape.Lat.v, Longitude: shape.Lng.v}, true
	}
	if !found {
		return nil, models.ErrNoCoordinates
	}

	out := &models.PlaceLocation{Location: loc}
	if vp := shape.Viewport; vp != nil && vp.High != nil && vp.Low != nil {
		high, okHigh := vp.High.coordinate()
		low, okLow := vp.Low.coordinate()
		if okHigh && okLow {
			out.Viewport = &models.Viewport{High: high, Low: low}
		}
	}
	return out, nil
}

type reviewsShape struct {
	Data              json.RawMessage         `json:"data"`
	SentimentAnalysis *models.ReviewSentiment `json:"sentiment_analysis"`
}

type reviewsData struct {
	Sentiment         *models.ReviewSentiment `json:"sentiment"`
	SentimentAnalysis *models.ReviewSentiment `json:"sentiment_analysis"`
}

// extractSentiment looks for the sentiment block under data.sentiment,
// data.sentiment_analysis and then the top-level sentiment_analysis.
func extractSentiment(raw []byte) *models.ReviewSentiment {
	var shape reviewsShape
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil
	}
	var found *models.ReviewSentiment
	if inner := bytes.TrimSpace(shape.Data); len(inner) > 0 && inner[0] == '{' {
		var d reviewsData
		if json.Unmarshal(inner, &d) == nil {
			found = d.Sentiment
			if found == nil {
				found = d.SentimentAnalysis
			}
		}
	}
	if found == nil {
		found = shape.SentimentAnalysis
	}
	if found.Empty() {
		return nil
	}
	return found
}
