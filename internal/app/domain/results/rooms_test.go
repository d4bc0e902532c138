package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/saferstays/internal/app/models"
)

func TestGroupRooms(t *testing.T) {
	resp := &models.RateSearchResponse{Data: []models.HotelRateData{
		{HotelID: "other", RoomTypes: []models.RoomType{{Rates: []models.Rate{{MappedRoomID: 1, Name: "Elsewhere"}}}}},
		{HotelID: "paris-1", RoomTypes: []models.RoomType{
			{OfferID: "off-a", Rates: []models.Rate{
				{MappedRoomID: 7, Name: "Deluxe Double", BoardName: "Room only"},
				{MappedRoomID: 9, OfferID: "ignored"},
			}},
			{Rates: []models.Rate{
				{MappedRoomID: 7, Name: "Deluxe Double", BoardName: "Breakfast", OfferID: "off-b"},
				{MappedRoomID: 11, OfferID: "off-c"},
			}},
		}},
	}}
	detail := &models.HotelDetail{Rooms: []models.HotelRoom{
		{ID: 9, RoomName: "Garden Suite", Photos: []models.RoomPhoto{{URL: "https://img/9a.jpg"}, {URL: "https://img/9b.jpg"}}},
	}}

	groups := GroupRooms(resp, "paris-1", detail)
	require.Len(t, groups, 3)

	assert.Equal(t, int64(7), groups[0].RoomID)
	assert.Equal(t, "Deluxe Double", groups[0].RoomName)
	require.Len(t, groups[0].Rates, 2)
	assert.Equal(t, "off-a", groups[0].Rates[0].OfferID)
	assert.Equal(t, "off-b", groups[0].Rates[1].OfferID)

	assert.Equal(t, "Garden Suite", groups[1].RoomName)
	assert.Equal(t, "https://img/9a.jpg", groups[1].Photo)
	assert.Equal(t, "off-a", groups[1].OfferID)

	assert.Equal(t, "Room 11", groups[2].RoomName)
	assert.Equal(t, "off-c", groups[2].OfferID)

	assert.Nil(t, GroupRooms(nil, "paris-1", detail))
	assert.Empty(t, GroupRooms(resp, "missing", nil))
}
