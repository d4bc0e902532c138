package models

// HotelSummary is one row of the results list.
type HotelSummary struct {
	HotelID             string      `json:"hotelId"`
	Name                string      `json:"name"`
	Photo               string      `json:"photo,omitempty"`
	Address             string      `json:"address,omitempty"`
	Rating              *float64    `json:"rating,omitempty"`
	Price               *float64    `json:"price,omitempty"`
	Currency            string      `json:"currency"`
	HasFreeCancellation bool        `json:"hasFreeCancellation"`
	Location            *Coordinate `json:"location,omitempty"`
	Tags                []string    `json:"tags,omitempty"`
	Persona             string      `json:"persona,omitempty"`
	Style               string      `json:"style,omitempty"`
	Story               string      `json:"story,omitempty"`
}

// Filters narrow a results list. A nil MaxPrice means no ceiling.
type Filters struct {
	MinRating            float64
	MaxPrice             *float64
	FreeCancellationOnly bool
}

// RoomGroup is a room card: all rates that map to the same room.
type RoomGroup struct {
	RoomID   int64  `json:"roomId"`
	RoomName string `json:"roomName"`
	Photo    string `json:"photo,omitempty"`
	OfferID  string `json:"offerId,omitempty"`
	Rates    []Rate `json:"rates"`
}

// StayDetail is the hotel page payload.
type StayDetail struct {
	Hotel               *HotelDetail `json:"hotel"`
	Rooms               []RoomGroup  `json:"rooms"`
	HasFreeCancellation bool         `json:"hasFreeCancellation"`
}
