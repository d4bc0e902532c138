package models

import "time"

// PrebookHold is the short-lived price lock returned by prebook.
type PrebookHold struct {
	PrebookID     string `json:"prebookId"`
	TransactionID string `json:"transactionId,omitempty"`
	SecretKey     string `json:"secretKey"`
	OfferID       string `json:"offerId,omitempty"`
}

// GuestProfile is the single identity captured in the checkout form.
type GuestProfile struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required"`
	Phone     string `json:"phone,omitempty"`
}

type Guest struct {
	OccupancyNumber int    `json:"occupancyNumber"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
}

const (
	PaymentTransactionID = "TRANSACTION_ID"
	PaymentAccountCard   = "ACC_CREDIT_CARD"
)

type Payment struct {
	Method        string `json:"method"`
	TransactionID string `json:"transactionId,omitempty"`
}

type BookParams struct {
	PrebookID string       `json:"prebookId"`
	Holder    GuestProfile `json:"holder"`
	Payment   Payment      `json:"payment"`
	Guests    []Guest      `json:"guests"`
}

type BookingHotel struct {
	HotelID string `json:"hotelId,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Booking is a confirmed reservation. It is never mutated after creation.
type Booking struct {
	BookingID             string                `json:"bookingId"`
	Status                string                `json:"status,omitempty"`
	HotelConfirmationCode string                `json:"hotelConfirmationCode,omitempty"`
	Checkin               string                `json:"checkin,omitempty"`
	Checkout              string                `json:"checkout,omitempty"`
	Price                 *float64              `json:"price,omitempty"`
	Currency              string                `json:"currency,omitempty"`
	Hotel                 *BookingHotel         `json:"hotel,omitempty"`
	CancellationPolicies  *CancellationPolicies `json:"cancellationPolicies,omitempty"`
	PrebookID             string                `json:"prebookId,omitempty"`
	CreatedAt             time.Time             `json:"createdAt,omitempty"`
}

// Stay is what the visitor selected on the hotel page before checkout.
type Stay struct {
	OfferID  string `json:"offerId"`
	HotelID  string `json:"hotelId"`
	Checkin  string `json:"checkin"`
	Checkout string `json:"checkout"`
	Adults   int    `json:"adults"`
}
