package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	auditsvc "stayadmin/internal/app/services/audit"
	"stayadmin/internal/app/uow"
	domainapartment "stayadmin/internal/domain/apartment"
	domainaudit "stayadmin/internal/domain/audit"
	domainbooking "stayadmin/internal/domain/booking"
	domainguest "stayadmin/internal/domain/guest"
	domainpricing "stayadmin/internal/domain/pricing"
	"stayadmin/internal/infra/mail"
)

var (
	ErrGuestRequired = errors.New("booking: guest id or guest details required")
	ErrNotConfirmed  = errors.New("booking: confirmation email requires a confirmed booking")
	ErrNoGuestEmail  = errors.New("booking: guest has no email address")
	ErrEmailSent     = errors.New("booking: confirmation email already sent")
	ErrMailDisabled  = errors.New("booking: mail delivery is not configured")
)

// ConfirmationMailer sends the guest-facing confirmation mail.
type ConfirmationMailer interface {
	SendBookingConfirmation(data mail.BookingConfirmation) error
}

// Service runs the booking write pipeline: validate the stay, price it
// against the current rule, check availability and persist the row with its
// audit entry in one transaction.
type Service struct {
	UoW        uow.Factory
	Bookings   domainbooking.Repository
	Apartments domainapartment.Repository
	Rules      domainpricing.Repository
	Calculator domainpricing.Calculator
	Policy     domainbooking.TransitionPolicy
	Audit      *auditsvc.Recorder
	Mailer     ConfirmationMailer
	Logger     *slog.Logger
}

// GuestDetails identifies or describes the guest of a booking. When ID is
// zero the guest is looked up by phone and created on a miss.
type GuestDetails struct {
	ID             uint
	Name           string
	Phone          string
	Email          string
	Address        string
	GuestType      string
	PlaceOrCountry string
	Introduced     string
	IntroducedBy   string
}

type WriteParams struct {
	Guest         GuestDetails
	ApartmentID   uint
	FromDatetime  time.Time
	ToDatetime    time.Time
	Season        string
	Discount      decimal.Decimal
	PaymentType   string
	AmountPaid    decimal.Decimal
	PaymentStatus string
	PaymentMethod string
	BookingStatus string
}

type stayPlan struct {
	days      int
	season    domainpricing.Season
	status    domainbooking.Status
	apartment *domainapartment.Apartment
	quote     domainpricing.Quote
}

// plan validates the interval and status, resolves the apartment and prices
// the stay against the rule currently in effect. Shared by create and update.
func (s *Service) plan(ctx context.Context, params WriteParams) (*stayPlan, error) {
	if err := domainbooking.ValidateStay(params.FromDatetime, params.ToDatetime); err != nil {
		return nil, err
	}
	seasonRaw := params.Season
	if seasonRaw == "" {
		seasonRaw = string(domainpricing.SeasonRegular)
	}
	season, err := domainpricing.ParseSeason(seasonRaw)
	if err != nil {
		return nil, err
	}
	statusRaw := params.BookingStatus
	if statusRaw == "" {
		statusRaw = string(domainbooking.StatusDraft)
	}
	status, err := domainbooking.ParseStatus(statusRaw)
	if err != nil {
		return nil, err
	}
	apt, err := s.Apartments.ByID(ctx, params.ApartmentID)
	if err != nil {
		return nil, err
	}
	rule, err := s.Rules.Current(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	days := domainbooking.StayDays(params.FromDatetime, params.ToDatetime)
	quote, err := s.Calculator.Calculate(days, season, params.Discount, rule)
	if err != nil {
		return nil, err
	}
	return &stayPlan{days: days, season: season, status: status, apartment: apt, quote: quote}, nil
}

// CheckAvailability probes an interval without writing anything.
func (s *Service) CheckAvailability(ctx context.Context, q domainbooking.ConflictQuery) (bool, []domainbooking.Booking, error) {
	if err := domainbooking.ValidateStay(q.From, q.To); err != nil {
		return false, nil, err
	}
	conflicts, err := s.Bookings.Overlapping(ctx, q)
	if err != nil {
		return false, nil, err
	}
	return len(conflicts) == 0, conflicts, nil
}

// Create books a stay. The overlap pre-check runs before the transaction for
// a friendly conflict list; the guarded insert inside the transaction is the
// authoritative check, so a concurrent winner still beats this writer.
func (s *Service) Create(ctx context.Context, params WriteParams, actorID uint) (*domainbooking.Booking, error) {
	plan, err := s.plan(ctx, params)
	if err != nil {
		return nil, err
	}
	probe := domainbooking.ConflictQuery{
		ApartmentID: params.ApartmentID,
		From:        params.FromDatetime,
		To:          params.ToDatetime,
	}
	conflicts, err := s.Bookings.Overlapping(ctx, probe)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &domainbooking.ConflictError{Conflicts: conflicts}
	}

	tx, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	gst, err := s.resolveGuest(ctx, tx.Guests(), params.Guest)
	if err != nil {
		return nil, err
	}

	b := s.buildBooking(params, plan, gst.ID, actorID)
	if err := tx.Bookings().CreateGuarded(ctx, b); err != nil {
		var conflict *domainbooking.ConflictError
		if errors.As(err, &conflict) {
			return nil, s.conflictWithList(ctx, probe, conflict)
		}
		return nil, err
	}
	entry := s.Audit.Record(ctx, tx.Audit(), auditsvc.Change{
		Entity: "booking", EntityID: b.ID, Action: domainaudit.ActionCreate,
		New: b, UserID: actorID,
	})
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.Audit.Publish(ctx, entry)
	b.Guest = gst
	b.Apartment = plan.apartment
	if s.Logger != nil {
		s.Logger.Info("booking created", "booking_id", b.ID, "apartment_id", b.ApartmentID, "status", b.BookingStatus)
	}
	s.maybeSendConfirmation(ctx, b, gst)
	return b, nil
}

// Update reruns the whole pipeline on an existing booking. Totals are
// recomputed from scratch and the booking is excluded from its own overlap
// check.
func (s *Service) Update(ctx context.Context, id uint, params WriteParams, actorID uint) (*domainbooking.Booking, error) {
	existing, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	plan, err := s.plan(ctx, params)
	if err != nil {
		return nil, err
	}
	if !s.policy().Allowed(existing.BookingStatus, plan.status) {
		return nil, domainbooking.ErrTransitionNotAllowed
	}
	probe := domainbooking.ConflictQuery{
		ApartmentID: params.ApartmentID,
		From:        params.FromDatetime,
		To:          params.ToDatetime,
		ExcludeID:   id,
	}
	conflicts, err := s.Bookings.Overlapping(ctx, probe)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &domainbooking.ConflictError{Conflicts: conflicts}
	}

	tx, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	gst, err := s.resolveGuestForUpdate(ctx, tx.Guests(), existing.GuestID, params.Guest)
	if err != nil {
		return nil, err
	}

	wasConfirmed := existing.BookingStatus == domainbooking.StatusConfirmed

	b := s.buildBooking(params, plan, gst.ID, existing.BookingByUser)
	b.ID = existing.ID
	b.EmailSent = existing.EmailSent
	b.CreatedAt = existing.CreatedAt
	if err := tx.Bookings().UpdateGuarded(ctx, b); err != nil {
		var conflict *domainbooking.ConflictError
		if errors.As(err, &conflict) {
			return nil, s.conflictWithList(ctx, probe, conflict)
		}
		return nil, err
	}
	entry := s.Audit.Record(ctx, tx.Audit(), auditsvc.Change{
		Entity: "booking", EntityID: b.ID, Action: domainaudit.ActionUpdate,
		Old: existing, New: b, UserID: actorID,
	})
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.Audit.Publish(ctx, entry)
	b.Guest = gst
	b.Apartment = plan.apartment
	if s.Logger != nil {
		s.Logger.Info("booking updated", "booking_id", b.ID, "status", b.BookingStatus)
	}
	if !wasConfirmed {
		s.maybeSendConfirmation(ctx, b, gst)
	}
	return b, nil
}

func (s *Service) Delete(ctx context.Context, id uint, actorID uint) error {
	existing, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return err
	}
	tx, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := tx.Bookings().Delete(ctx, id); err != nil {
		return err
	}
	entry := s.Audit.Record(ctx, tx.Audit(), auditsvc.Change{
		Entity: "booking", EntityID: id, Action: domainaudit.ActionDelete,
		Old: existing, UserID: actorID,
	})
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.Audit.Publish(ctx, entry)
	if s.Logger != nil {
		s.Logger.Info("booking deleted", "booking_id", id)
	}
	return nil
}

// SendConfirmation is the explicit resend endpoint. Unlike the automatic
// send it reports failures to the caller, and the email_sent guard keeps it
// a one-shot.
func (s *Service) SendConfirmation(ctx context.Context, id uint) error {
	if s.Mailer == nil {
		return ErrMailDisabled
	}
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return err
	}
	if b.BookingStatus != domainbooking.StatusConfirmed {
		return ErrNotConfirmed
	}
	if b.Guest == nil || b.Guest.Email == "" {
		return ErrNoGuestEmail
	}
	if b.EmailSent {
		return ErrEmailSent
	}
	if err := s.Mailer.SendBookingConfirmation(s.confirmationData(ctx, b, b.Guest)); err != nil {
		return err
	}
	return s.Bookings.MarkEmailSent(ctx, b.ID)
}

func (s *Service) resolveGuest(ctx context.Context, guests domainguest.Repository, details GuestDetails) (*domainguest.Guest, error) {
	if details.ID != 0 {
		return guests.ByID(ctx, details.ID)
	}
	if details.Phone == "" || details.Name == "" {
		return nil, ErrGuestRequired
	}
	existing, err := guests.ByPhone(ctx, details.Phone)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domainguest.ErrNotFound) {
		return nil, err
	}
	gtype := domainguest.TypeLocal
	if details.GuestType != "" {
		gtype, err = domainguest.ParseType(details.GuestType)
		if err != nil {
			return nil, err
		}
	}
	introduced := details.Introduced
	if introduced == "" {
		introduced = "no"
	}
	g := &domainguest.Guest{
		Name:           details.Name,
		Phone:          details.Phone,
		Email:          details.Email,
		Address:        details.Address,
		GuestType:      gtype,
		PlaceOrCountry: details.PlaceOrCountry,
		Introduced:     introduced,
		IntroducedBy:   details.IntroducedBy,
	}
	if err := guests.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) resolveGuestForUpdate(ctx context.Context, guests domainguest.Repository, currentGuestID uint, details GuestDetails) (*domainguest.Guest, error) {
	if details.ID == 0 && details.Phone == "" {
		return guests.ByID(ctx, currentGuestID)
	}
	return s.resolveGuest(ctx, guests, details)
}

func (s *Service) buildBooking(params WriteParams, plan *stayPlan, guestID, actorID uint) *domainbooking.Booking {
	paymentType := domainbooking.PaymentType(params.PaymentType)
	if paymentType == "" {
		paymentType = domainbooking.PaymentTypeFull
	}
	paymentStatus := domainbooking.PaymentStatus(params.PaymentStatus)
	if paymentStatus == "" {
		paymentStatus = domainbooking.PaymentPending
	}
	paymentMethod := params.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "cash"
	}
	q := plan.quote
	return &domainbooking.Booking{
		GuestID:       guestID,
		ApartmentID:   params.ApartmentID,
		Floor:         plan.apartment.Floor,
		UnitNo:        plan.apartment.Unit,
		FromDatetime:  params.FromDatetime,
		ToDatetime:    params.ToDatetime,
		Days:          plan.days,
		Season:        plan.season,
		BaseRate:      q.BaseRate,
		Multiplier:    q.Multiplier,
		Subtotal:      q.Subtotal,
		Discount:      q.Discount,
		Tax:           q.Tax,
		GrandTotal:    q.GrandTotal,
		PaymentType:   paymentType,
		AmountPaid:    params.AmountPaid,
		PaymentStatus: paymentStatus,
		PaymentMethod: paymentMethod,
		BookingStatus: plan.status,
		BookingByUser: actorID,
	}
}

// conflictWithList re-queries the conflicting rows after a guarded write
// lost the race. The losing transaction is already doomed, so the lookup
// runs on the plain connection.
func (s *Service) conflictWithList(ctx context.Context, probe domainbooking.ConflictQuery, conflict *domainbooking.ConflictError) error {
	if len(conflict.Conflicts) > 0 {
		return conflict
	}
	conflicts, err := s.Bookings.Overlapping(ctx, probe)
	if err == nil {
		conflict.Conflicts = conflicts
	}
	return conflict
}

// maybeSendConfirmation fires the confirmation mail after a booking lands in
// confirmed. Mail trouble never fails the booking; it is logged and the
// email_sent flag stays false so the send can be retried explicitly.
func (s *Service) maybeSendConfirmation(ctx context.Context, b *domainbooking.Booking, g *domainguest.Guest) {
	if s.Mailer == nil || b.BookingStatus != domainbooking.StatusConfirmed || b.EmailSent || g == nil || g.Email == "" {
		return
	}
	if err := s.Mailer.SendBookingConfirmation(s.confirmationData(ctx, b, g)); err != nil {
		if s.Logger != nil {
			s.Logger.Error("confirmation mail failed", "booking_id", b.ID, "error", err)
		}
		return
	}
	if err := s.Bookings.MarkEmailSent(ctx, b.ID); err != nil {
		if s.Logger != nil {
			s.Logger.Error("email_sent flag update failed", "booking_id", b.ID, "error", err)
		}
		return
	}
	b.EmailSent = true
}

func (s *Service) confirmationData(ctx context.Context, b *domainbooking.Booking, g *domainguest.Guest) mail.BookingConfirmation {
	apartmentName := ""
	if b.Apartment != nil {
		apartmentName = b.Apartment.Name
	}
	currency := "USD"
	if rule, err := s.Rules.Current(ctx, time.Now()); err == nil {
		currency = rule.Currency
	}
	return mail.BookingConfirmation{
		BookingID:     b.ID,
		GuestName:     g.Name,
		GuestEmail:    g.Email,
		ApartmentName: apartmentName,
		UnitNo:        b.UnitNo,
		CheckIn:       b.FromDatetime,
		CheckOut:      b.ToDatetime,
		Days:          b.Days,
		GrandTotal:    b.GrandTotal,
		AmountPaid:    b.AmountPaid,
		Currency:      currency,
	}
}

func (s *Service) policy() domainbooking.TransitionPolicy {
	if s.Policy == nil {
		return domainbooking.PermissivePolicy{}
	}
	return s.Policy
}
