package checkout

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FACorreiaa/saferstays/internal/app/models"
)

// returnClaims bind a payment return to the checkout and hold it was issued for.
type returnClaims struct {
	CheckoutID    string `json:"cid"`
	PrebookID     string `json:"pbid"`
	TransactionID string `json:"txid,omitempty"`
	jwt.RegisteredClaims
}

// StateSigner signs and verifies the state parameter of the payment return URL.
type StateSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewStateSigner(secret string, ttl time.Duration) *StateSigner {
	return &StateSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *StateSigner) Sign(checkoutID, prebookID, transactionID string) (string, error) {
	now := s.now()
	claims := returnClaims{
		CheckoutID:    checkoutID,
		PrebookID:     prebookID,
		TransactionID: transactionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "saferstays-checkout",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign payment return state: %w", err)
	}
	return token, nil
}

// Verify checks the signature and expiry and that the token was issued for
// exactly this checkout, hold and transaction.
func (s *StateSigner) Verify(token, checkoutID, prebookID, transactionID string) error {
	claims := &returnClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer("saferstays-checkout"),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return models.Invalid("Payment return could not be verified. Please start the checkout again.")
	}
	if claims.CheckoutID != checkoutID || claims.PrebookID != prebookID || claims.TransactionID != transactionID {
		return models.Invalid("Payment return does not match this checkout.")
	}
	return nil
}
