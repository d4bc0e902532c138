package results

import (
	"strconv"

	"github.com/FACorreiaa/saferstays/internal/app/models"
)

// GroupRooms collects the rates of hotelID into one card per mapped room,
// in the order rooms first appear. Each rate carries the offer id it books.
func GroupRooms(resp *models.RateSearchResponse, hotelID string, detail *models.HotelDetail) []models.RoomGroup {
	if resp == nil {
		return nil
	}
	rooms := make(map[int64]models.HotelRoom)
	if detail != nil {
		for _, r := range detail.Rooms {
			rooms[r.ID] = r
		}
	}

	var groups []models.RoomGroup
	index := make(map[int64]int)
	for _, d := range resp.Data {
		if d.HotelID != hotelID {
			continue
		}
		for _, rt := range d.RoomTypes {
			for _, rate := range rt.Rates {
				if rt.OfferID != "" {
					rate.OfferID = rt.OfferID
				}
				i, ok := index[rate.MappedRoomID]
				if !ok {
					groups = append(groups, newGroup(rate, rooms[rate.MappedRoomID]))
					i = len(groups) - 1
					index[rate.MappedRoomID] = i
				}
				groups[i].Rates = append(groups[i].Rates, rate)
			}
		}
	}
	return groups
}

func newGroup(first models.Rate, room models.HotelRoom) models.RoomGroup {
	g := models.RoomGroup{
		RoomID:  first.MappedRoomID,
		OfferID: first.OfferID,
	}
	switch {
	case first.Name != "":
		g.RoomName = first.Name
	case room.RoomName != "":
		g.RoomName = room.RoomName
	default:
		g.RoomName = "Room " + strconv.FormatInt(first.MappedRoomID, 10)
	}
	if len(room.Photos) > 0 {
		g.Photo = room.Photos[0].URL
	}
	return g
}
