package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/saferstays/internal/app/domain/sessionstore"
	"github.com/FACorreiaa/saferstays/internal/app/handlers"
	"github.com/FACorreiaa/saferstays/internal/app/models"
	"github.com/FACorreiaa/saferstays/internal/app/observability/metrics"
	"github.com/FACorreiaa/saferstays/internal/pkg/config"
)

var _ Orchestrator = (*OrchestratorImpl)(nil)

// Session is the persisted checkout record. It survives the payment redirect.
type Session struct {
	ID        string              `json:"checkoutId"`
	State     State               `json:"state"`
	Stay      models.Stay         `json:"stay"`
	Hold      *models.PrebookHold `json:"hold,omitempty"`
	ReturnURL string              `json:"returnUrl,omitempty"`
	BookingID string              `json:"bookingId,omitempty"`
	Error     string              `json:"error,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// View is a session plus the booking once it is done.
type View struct {
	Session
	Booking *models.Booking `json:"booking,omitempty"`
}

// Orchestrator drives one checkout through its states. Calls for the same
// checkout never overlap: a second call while one is in flight is refused.
type Orchestrator interface {
	Start(ctx context.Context, stay models.Stay) (*View, error)
	SubmitGuest(ctx context.Context, checkoutID string, guest models.GuestProfile) (*View, error)
	PaymentReturned(ctx context.Context, checkoutID, prebookID, transactionID, state string) (*View, error)
	Get(ctx context.Context, checkoutID string) (*View, error)
}

type OrchestratorImpl struct {
	svc      Service
	store    sessionstore.Store
	signer   *StateSigner
	cfg      config.CheckoutConfig
	validate *validator.Validate
	locks    *keyedLock
	newID    func() string
	logger   *zap.Logger
}

func NewOrchestrator(svc Service, store sessionstore.Store, signer *StateSigner, cfg config.CheckoutConfig, logger *zap.Logger) *OrchestratorImpl {
	return &OrchestratorImpl{
		svc:      svc,
		store:    store,
		signer:   signer,
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		locks:    newKeyedLock(),
		newID:    func() string { return uuid.NewString() },
		logger:   logger,
	}
}

// step carries the data effects produce and consume within one call.
type step struct {
	sess     *Session
	guest    models.GuestProfile
	hold     *models.PrebookHold
	finalize FinalizeRequest
	booking  *models.Booking
}

func (o *OrchestratorImpl) Start(ctx context.Context, stay models.Stay) (*View, error) {
	stay.OfferID = strings.TrimSpace(stay.OfferID)
	stay.HotelID = strings.TrimSpace(stay.HotelID)
	if stay.OfferID == "" || stay.HotelID == "" || stay.Checkin == "" || stay.Checkout == "" {
		return nil, models.Invalid("Missing checkout parameters.")
	}
	if stay.Adults < 1 {
		stay.Adults = 1
	}

	now := time.Now().UTC()
	sess := &Session{
		ID:        o.newID(),
		State:     StateCollectingGuestDetails,
		Stay:      stay,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := o.save(ctx, sess); err != nil {
		return nil, err
	}
	o.logger.Info("Checkout started", zap.String("checkoutID", sess.ID), zap.String("offerID", stay.OfferID))
	return &View{Session: *sess}, nil
}

func (o *OrchestratorImpl) SubmitGuest(ctx context.Context, checkoutID string, guest models.GuestProfile) (*View, error) {
	ctx, span := otel.Tracer("CheckoutOrchestrator").Start(ctx, "SubmitGuest", trace.WithAttributes(
		attribute.String("checkout.id", checkoutID),
	))
	defer span.End()

	release, err := o.acquire(ctx, checkoutID)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := o.load(ctx, checkoutID)
	if err != nil {
		return nil, err
	}
	if sess.State.InFlight() {
		return nil, fmt.Errorf("checkout %s is %s: %w", checkoutID, sess.State, models.ErrCheckoutInFlight)
	}

	guest = trimGuest(guest)
	if verr := o.validate.Struct(guest); verr != nil {
		if _, err := o.move(ctx, sess, EventGuestInvalid); err != nil {
			return nil, err
		}
		return nil, models.Invalid("Please fill in all guest details.")
	}

	effects, err := o.move(ctx, sess, EventGuestSubmitted)
	if err != nil {
		return nil, err
	}
	if err := o.save(ctx, sess); err != nil {
		return nil, err
	}

	st := &step{sess: sess, guest: guest}
	if err := o.run(ctx, st, effects); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Prebook failed")
		return o.fail(ctx, sess, err)
	}

	sess.Hold = st.hold
	returnURL, err := o.returnURL(sess)
	if err != nil {
		return o.fail(ctx, sess, err)
	}
	sess.ReturnURL = returnURL

	effects, err = o.move(ctx, sess, EventPrebookSucceeded)
	if err != nil {
		return nil, err
	}
	if err := o.run(ctx, st, effects); err != nil {
		return o.fail(ctx, sess, err)
	}
	if err := o.save(ctx, sess); err != nil {
		return nil, err
	}

	span.SetStatus(codes.Ok, "Awaiting payment")
	return &View{Session: *sess}, nil
}

func (o *OrchestratorImpl) PaymentReturned(ctx context.Context, checkoutID, prebookID, transactionID, state string) (*View, error) {
	ctx, span := otel.Tracer("CheckoutOrchestrator").Start(ctx, "PaymentReturned", trace.WithAttributes(
		attribute.String("checkout.id", checkoutID),
		attribute.String("prebook.id", prebookID),
	))
	defer span.End()

	l := o.logger.With(zap.String("method", "PaymentReturned"), zap.String("checkoutID", checkoutID))

	release, err := o.acquire(ctx, checkoutID)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := o.load(ctx, checkoutID)
	if err != nil {
		return nil, err
	}
	if sess.State.InFlight() {
		return nil, fmt.Errorf("checkout %s is %s: %w", checkoutID, sess.State, models.ErrCheckoutInFlight)
	}
	if _, _, err := Transition(sess.State, EventPaymentReturned); err != nil {
		return nil, err
	}
	if sess.Hold == nil || sess.Hold.PrebookID != prebookID {
		return nil, models.Invalid("Payment return does not match this checkout.")
	}
	if err := o.signer.Verify(state, checkoutID, prebookID, transactionID); err != nil {
		l.Warn("Rejected payment return", zap.Error(err))
		return nil, err
	}

	var guest models.GuestProfile
	if err := o.store.Get(ctx, sessionstore.GuestProfileKey(checkoutID), &guest); err != nil {
		if !errors.Is(err, sessionstore.ErrNotFound) {
			return nil, err
		}
		if _, err := o.move(ctx, sess, EventGuestProfileMissing); err != nil {
			return nil, err
		}
		sess.Error = models.ErrGuestProfileGone.Error()
		if err := o.save(ctx, sess); err != nil {
			return nil, err
		}
		return nil, models.ErrGuestProfileGone
	}

	effects, err := o.move(ctx, sess, EventPaymentReturned)
	if err != nil {
		return nil, err
	}
	if err := o.save(ctx, sess); err != nil {
		return nil, err
	}

	st := &step{
		sess:  sess,
		guest: guest,
		finalize: FinalizeRequest{
			PrebookID:              prebookID,
			TransactionID:          transactionID,
			UseStoredPaymentMethod: transactionID == "",
			Holder:                 guest,
			Guests:                 SynthesizeGuests(guest, sess.Stay.Adults),
		},
	}
	if err := o.run(ctx, st, effects); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Finalize failed")
		return o.fail(ctx, sess, err)
	}

	sess.BookingID = st.booking.BookingID
	effects, err = o.move(ctx, sess, EventFinalizeSucceeded)
	if err != nil {
		return nil, err
	}
	if err := o.run(ctx, st, effects); err != nil {
		// The booking is confirmed upstream; a local bookkeeping failure must not hide it.
		l.Error("Post-booking bookkeeping failed", zap.Error(err))
	}
	if err := o.save(ctx, sess); err != nil {
		l.Error("Failed to save completed checkout", zap.Error(err))
	}

	span.SetStatus(codes.Ok, "Booking confirmed")
	return &View{Session: *sess, Booking: st.booking}, nil
}

func (o *OrchestratorImpl) Get(ctx context.Context, checkoutID string) (*View, error) {
	sess, err := o.load(ctx, checkoutID)
	if err != nil {
		return nil, err
	}
	view := &View{Session: *sess}
	if sess.State == StateDone && sess.BookingID != "" {
		var b models.Booking
		if err := o.store.Get(ctx, sessionstore.BookingKey(sess.BookingID), &b); err == nil {
			view.Booking = &b
		}
	}
	return view, nil
}

// run executes effects in order, stopping at the first failure.
func (o *OrchestratorImpl) run(ctx context.Context, st *step, effects []Effect) error {
	id := st.sess.ID
	for _, eff := range effects {
		switch eff {
		case EffectCallPrebook:
			hold, err := o.svc.Prebook(ctx, st.sess.Stay.OfferID)
			if err != nil {
				return err
			}
			st.hold = hold
		case EffectSaveGuestProfile:
			if err := o.store.Put(ctx, sessionstore.GuestProfileKey(id), st.guest, o.cfg.GuestProfileTTL); err != nil {
				return err
			}
		case EffectCallBook:
			booking, err := o.svc.Book(ctx, st.finalize, id)
			if err != nil {
				return err
			}
			st.booking = booking
		case EffectStoreBooking:
			if err := o.svc.Record(ctx, st.booking); err != nil {
				return err
			}
		case EffectDeleteGuestProfile:
			if err := o.store.Delete(ctx, sessionstore.GuestProfileKey(id)); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown checkout effect %q", eff)
		}
	}
	return nil
}

// move applies event to the session state and returns the effects to run.
func (o *OrchestratorImpl) move(ctx context.Context, sess *Session, event Event) ([]Effect, error) {
	next, effects, err := Transition(sess.State, event)
	if err != nil {
		return nil, err
	}
	if next != sess.State {
		o.logger.Debug("Checkout transition",
			zap.String("checkoutID", sess.ID),
			zap.String("from", string(sess.State)),
			zap.String("to", string(next)),
			zap.String("event", string(event)))
		metrics.Get().CheckoutTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("to", string(next))))
	}
	sess.State = next
	return effects, nil
}

// fail moves the session to error, keeps the cause's user message and
// returns the cause unchanged.
func (o *OrchestratorImpl) fail(ctx context.Context, sess *Session, cause error) (*View, error) {
	if _, err := o.move(ctx, sess, EventCallFailed); err != nil {
		return nil, errors.Join(cause, err)
	}
	sess.Error = handlers.MessageFor(cause)
	if err := o.save(ctx, sess); err != nil {
		o.logger.Error("Failed to save failed checkout", zap.String("checkoutID", sess.ID), zap.Error(err))
	}
	return nil, cause
}

func (o *OrchestratorImpl) load(ctx context.Context, checkoutID string) (*Session, error) {
	var sess Session
	if err := o.store.Get(ctx, sessionstore.CheckoutSessionKey(checkoutID), &sess); err != nil {
		if errors.Is(err, sessionstore.ErrNotFound) {
			return nil, fmt.Errorf("checkout %s: %w", checkoutID, models.ErrNotFound)
		}
		return nil, err
	}
	return &sess, nil
}

func (o *OrchestratorImpl) save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now().UTC()
	if err := o.store.Put(ctx, sessionstore.CheckoutSessionKey(sess.ID), sess, o.cfg.SessionTTL); err != nil {
		return fmt.Errorf("failed to save checkout session: %w", err)
	}
	return nil
}

func (o *OrchestratorImpl) acquire(_ context.Context, checkoutID string) (func(), error) {
	if !o.locks.tryAcquire(checkoutID) {
		return nil, fmt.Errorf("checkout %s: %w", checkoutID, models.ErrCheckoutInFlight)
	}
	return func() { o.locks.release(checkoutID) }, nil
}

// returnURL is where the payment widget sends the browser back to.
func (o *OrchestratorImpl) returnURL(sess *Session) (string, error) {
	token, err := o.signer.Sign(sess.ID, sess.Hold.PrebookID, sess.Hold.TransactionID)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("checkoutId", sess.ID)
	q.Set("hotelId", sess.Stay.HotelID)
	q.Set("prebookId", sess.Hold.PrebookID)
	if sess.Hold.TransactionID != "" {
		q.Set("transactionId", sess.Hold.TransactionID)
	}
	q.Set("state", token)
	return o.cfg.PublicBaseURL + "/checkout?" + q.Encode(), nil
}

func trimGuest(g models.GuestProfile) models.GuestProfile {
	g.FirstName = strings.TrimSpace(g.FirstName)
	g.LastName = strings.TrimSpace(g.LastName)
	g.Email = strings.TrimSpace(g.Email)
	g.Phone = strings.TrimSpace(g.Phone)
	return g
}

// keyedLock is a set of non-blocking per-key locks.
type keyedLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func newKeyedLock() *keyedLock {
	return &keyedLock{held: make(map[string]struct{})}
}

func (k *keyedLock) tryAcquire(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, busy := k.held[key]; busy {
		return false
	}
	k.held[key] = struct{}{}
	return true
}

func (k *keyedLock) release(key string) {
	k.mu.Lock()
	delete(k.held, key)
	k.mu.Unlock()
}
