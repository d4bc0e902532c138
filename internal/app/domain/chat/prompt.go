package chat

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/FACorreiaa/saferstays/internal/app/models"
)

const maxDescriptionRunes = 800

// bookingTerms explains the rate codes shown on the site.
const bookingTerms = "Booking and cancellation terms used on this site (use when users ask what a code or term means): " +
	"RFN = Refundable / free cancellation (you can cancel under the policy and get a refund). " +
	"NRFN = Non-refundable (the rate cannot be refunded if you cancel). " +
	"Board/meal plans: room rates may include breakfast, half board, or room only—shown as board name on each rate."

const edgeCasesTemplate = `EDGE CASES – follow these rules:
- If the user asks about "this hotel", "this place", or "breakfast/safety here" but you have NO hotel data in this request: say briefly that you need them to open the specific hotel page (or checkout) so you can see which property they mean, then they can ask again.
- If they are on the results page (path /results): you don't know which listing they mean; suggest they open the hotel they're interested in and ask there.
- Off-topic (weather, visas, "what is 2+2", general travel tips): give a very short, friendly answer and offer to help with booking or safety on Safer Stays.
- Ambiguous or very short ("breakfast?", "safe?", "good?"): interpret in the current page context and the data you have; if no hotel data, ask them to open a hotel page or clarify which hotel.
- Rude or inappropriate: stay professional and calm; offer to help with booking or safety.
- If they ask in another language: answer in that language if you can, but keep it short; for safety/booking details prefer English if the site is in English.
- Multiple questions in one message: answer the main one briefly or the first one; suggest they ask the rest in a follow-up.
- On confirmation page: if they ask about their booking, cancellation, or refund, say to use the details on the confirmation page or in their email, or contact the hotel/support; you don't have access to their booking.
- You have hotel context for this message: %s. Use that to decide whether you can answer about "this" hotel or not.`

const hotelSystemPreamble = `The visitor is currently viewing this hotel. Use ONLY the following data to answer questions about it (e.g. "Is this good for a woman travelling alone?", "Do they have breakfast?", "What are the facilities?", "What do others say?", "Is it close to the city / centrum?"). The data includes address, city, country, coordinates, guest review summaries and sentiment (including a "Location" category when present). For "close to city/centrum?" use the address, city, and the description or the guest-review "Location" score/description; if no distance to center is in the data, say so and suggest checking the map or the hotel description. Do not invent details.`

var hotelPathPattern = regexp.MustCompile(`^/hotel/([^/?#]+)`)

// HotelIDFromPage returns the hotel the visitor is looking at: the hotel page
// path segment, or the hotelId query of the checkout page.
func HotelIDFromPage(pathname, search string) string {
	if m := hotelPathPattern.FindStringSubmatch(pathname); m != nil {
		return m[1]
	}
	if pathname == "/checkout" && search != "" {
		q, err := url.ParseQuery(strings.TrimPrefix(search, "?"))
		if err != nil {
			return ""
		}
		return q.Get("hotelId")
	}
	return ""
}

func edgeCasesMessage(hasHotelContext bool) string {
	return strings.Replace(edgeCasesTemplate, "%s", strconv.FormatBool(hasHotelContext), 1)
}

func hotelSystemMessage(hotelContext string) string {
	return hotelSystemPreamble + "\n\n" + hotelContext
}

// composeMessages puts the glossary and policy first, then the hotel data
// when present, then the visitor transcript.
func composeMessages(transcript []models.ChatMessage, hotelContext string, hasHotel bool) []models.ChatMessage {
	out := make([]models.ChatMessage, 0, len(transcript)+3)
	out = append(out,
		models.ChatMessage{Role: "system", Content: bookingTerms},
		models.ChatMessage{Role: "system", Content: edgeCasesMessage(hasHotel)},
	)
	if hasHotel {
		out = append(out, models.ChatMessage{Role: "system", Content: hotelSystemMessage(hotelContext)})
	}
	return append(out, transcript...)
}

// HotelContext renders hotel data as plain text lines. reviews takes
// precedence over the sentiment embedded in the hotel record.
func HotelContext(h *models.HotelDetail, reviews *models.ReviewSentiment) string {
	var parts []string
	add := func(label, v string) {
		if v != "" {
			parts = append(parts, label+": "+v)
		}
	}
	add("Name", h.Name)
	add("Address", h.Address)
	add("City", h.City)
	add("Country", h.Country)
	if h.Location != nil {
		parts = append(parts, "Coordinates: "+formatNumber(h.Location.Latitude)+", "+formatNumber(h.Location.Longitude))
	}
	if h.StarRating != nil {
		parts = append(parts, "Star rating: "+formatNumber(*h.StarRating))
	}
	add("Description", plainDescription(h.HotelDescription))
	if names := h.FacilityNames(); len(names) > 0 {
		parts = append(parts, "Facilities/amenities: "+strings.Join(names, ", "))
	}

	sentiment := reviews
	if sentiment == nil {
		sentiment = h.SentimentAnalysis
	}
	if block := reviewsBlock(sentiment); block != "" {
		parts = append(parts, block)
	}
	return strings.Join(parts, "\n")
}

func reviewsBlock(s *models.ReviewSentiment) string {
	if s == nil {
		return ""
	}
	var parts []string
	if len(s.Pros) > 0 {
		parts = append(parts, "What guests liked: "+strings.Join(s.Pros, ", "))
	}
	if len(s.Cons) > 0 {
		parts = append(parts, "What guests criticised: "+strings.Join(s.Cons, ", "))
	}
	var scores []string
	for _, c := range s.Categories {
		if c.Name == "" {
			continue
		}
		score := ""
		if c.Rating != nil {
			score = formatNumber(*c.Rating) + "/10"
		}
		scores = append(scores, strings.TrimSpace(c.Name+": "+score+" "+c.Description))
	}
	if len(scores) > 0 {
		parts = append(parts, "Review scores: "+strings.Join(scores, "; "))
	}
	if len(parts) == 0 {
		return ""
	}
	return "Guest reviews / what others say:\n" + strings.Join(parts, "\n")
}

// plainDescription strips markup, collapses whitespace and truncates.
func plainDescription(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	text := html
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		// Each element ends with a space so adjacent blocks do not run together.
		doc.Find("body *").AppendHtml(" ")
		text = doc.Find("body").Text()
	}
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > maxDescriptionRunes {
		text = string(r[:maxDescriptionRunes])
	}
	return text
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
