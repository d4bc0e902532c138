package models

import "encoding/json"

// Place is a text-search suggestion for a destination.
type Place struct {
	PlaceID          string `json:"placeId"`
	DisplayName      string `json:"displayName"`
	FormattedAddress string `json:"formattedAddress,omitempty"`
}

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Viewport struct {
	High Coordinate `json:"high"`
	Low  Coordinate `json:"low"`
}

// PlaceLocation is the canonical shape of a place detail lookup.
type PlaceLocation struct {
	Location Coordinate `json:"location"`
	Viewport *Viewport  `json:"viewport,omitempty"`
}

// RateSearchParams selects hotels by place, explicit ids or free-text intent.
type RateSearchParams struct {
	PlaceID          string   `json:"placeId,omitempty"`
	HotelIDs         []string `json:"hotelIds,omitempty"`
	AISearch         string   `json:"aiSearch,omitempty"`
	Checkin          string   `json:"checkin"`
	Checkout         string   `json:"checkout"`
	Adults           int      `json:"adults,omitempty"`
	Currency         string   `json:"currency,omitempty"`
	GuestNationality string   `json:"guestNationality,omitempty"`
	MaxRatesPerHotel int      `json:"maxRatesPerHotel,omitempty"`
}

type Amount struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type TaxOrFee struct {
	Included bool     `json:"included"`
	Amount   *float64 `json:"amount,omitempty"`
}

type RetailRate struct {
	Total        []Amount   `json:"total"`
	TaxesAndFees []TaxOrFee `json:"taxesAndFees,omitempty"`
}

type CancelPolicyInfo struct {
	CancelTime string   `json:"cancelTime,omitempty"`
	Amount     *float64 `json:"amount,omitempty"`
	Currency   string   `json:"currency,omitempty"`
}

type CancellationPolicies struct {
	RefundableTag     string             `json:"refundableTag,omitempty"`
	CancelPolicyInfos []CancelPolicyInfo `json:"cancelPolicyInfos,omitempty"`
}

// RefundableTag values used by the provider.
const (
	TagRefundable    = "RFN"
	TagNonRefundable = "NRFN"
)

type Rate struct {
	Name                 string                `json:"name"`
	MappedRoomID         int64                 `json:"mappedRoomId"`
	OfferID              string                `json:"offerId,omitempty"`
	BoardName            string                `json:"boardName,omitempty"`
	RetailRate           RetailRate            `json:"retailRate"`
	CancellationPolicies *CancellationPolicies `json:"cancellationPolicies,omitempty"`
}

func (r Rate) Refundable() bool {
	return r.CancellationPolicies != nil && r.CancellationPolicies.RefundableTag == TagRefundable
}

type RoomType struct {
	OfferID string `json:"offerId,omitempty"`
	Rates   []Rate `json:"rates"`
}

// HotelRateData is the rate group returned for one hotel.
type HotelRateData struct {
	HotelID   string     `json:"hotelId"`
	RoomTypes []RoomType `json:"roomTypes"`
}

type HotelImage struct {
	URL          string `json:"url"`
	DefaultImage bool   `json:"defaultImage,omitempty"`
}

// HotelInfo is the hotel metadata embedded in a rate search response.
type HotelInfo struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	MainPhoto string      `json:"main_photo,omitempty"`
	Address   string      `json:"address,omitempty"`
	Rating    *float64    `json:"rating,omitempty"`
	Tags      []string    `json:"tags,omitempty"`
	Persona   string      `json:"persona,omitempty"`
	Style     string      `json:"style,omitempty"`
	Story     string      `json:"story,omitempty"`
	Location  *Coordinate `json:"location,omitempty"`
}

// RateSearchResponse carries rate groups and, for some searches, embedded hotel metadata.
type RateSearchResponse struct {
	Data   []HotelRateData `json:"data"`
	Hotels []HotelInfo     `json:"hotels,omitempty"`
}

type RoomPhoto struct {
	URL string `json:"url"`
}

type HotelRoom struct {
	ID       int64       `json:"id"`
	RoomName string      `json:"roomName"`
	Photos   []RoomPhoto `json:"photos,omitempty"`
}

type Facility struct {
	Name string `json:"name,omitempty"`
}

type SentimentCategory struct {
	Name        string   `json:"name,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Description string   `json:"description,omitempty"`
}

// ReviewSentiment summarises what guests say about a hotel.
type ReviewSentiment struct {
	Pros       []string            `json:"pros,omitempty"`
	Cons       []string            `json:"cons,omitempty"`
	Categories []SentimentCategory `json:"categories,omitempty"`
}

func (s *ReviewSentiment) Empty() bool {
	return s == nil || (len(s.Pros) == 0 && len(s.Cons) == 0 && len(s.Categories) == 0)
}

type HotelDetail struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	HotelDescription  string           `json:"hotelDescription,omitempty"`
	MainPhoto         string           `json:"main_photo,omitempty"`
	HotelImages       []HotelImage     `json:"hotelImages,omitempty"`
	Address           string           `json:"address,omitempty"`
	City              string           `json:"city,omitempty"`
	Country           string           `json:"country,omitempty"`
	StarRating        *float64         `json:"starRating,omitempty"`
	Location          *Coordinate      `json:"location,omitempty"`
	HotelFacilities   []string         `json:"hotelFacilities,omitempty"`
	Facilities        []Facility       `json:"facilities,omitempty"`
	Rooms             []HotelRoom      `json:"rooms,omitempty"`
	SentimentAnalysis *ReviewSentiment `json:"sentiment_analysis,omitempty"`
}

// Photo returns the main photo, else the first gallery image.
func (h HotelDetail) Photo() string {
	if h.MainPhoto != "" {
		return h.MainPhoto
	}
	if len(h.HotelImages) > 0 {
		return h.HotelImages[0].URL
	}
	return ""
}

// FacilityNames prefers the flat list and falls back to named facility objects.
func (h HotelDetail) FacilityNames() []string {
	if len(h.HotelFacilities) > 0 {
		return h.HotelFacilities
	}
	var names []string
	for _, f := range h.Facilities {
		if f.Name != "" {
			names = append(names, f.Name)
		}
	}
	return names
}

// Envelope is the {data: ...} wrapper used by the provider and by this API.
type Envelope[T any] struct {
	Data T `json:"data"`
}

// RawEnvelope keeps an upstream payload untouched.
type RawEnvelope struct {
	Data json.RawMessage `json:"data"`
}
