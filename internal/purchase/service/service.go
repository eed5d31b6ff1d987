package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	catalog "teranga/internal/catalog/models"
	funnel "teranga/internal/funnel/models"
	"teranga/internal/purchase/metrics"
	"teranga/internal/purchase/models"
	"teranga/internal/purchase/store"
	id "teranga/pkg/domain"
	dErrors "teranga/pkg/domain-errors"
	audit "teranga/pkg/platform/audit"
	"teranga/pkg/platform/sentinel"
	txcontext "teranga/pkg/platform/tx"
	"teranga/pkg/requestcontext"
)

var tracer = otel.Tracer("teranga/purchase")

// Store persists purchases. Status-changing methods are guarded and report
// sentinel.ErrInvalidState when the row moved on.
type Store interface {
	CreateOrGetActive(ctx context.Context, p *models.Purchase) (*models.Purchase, bool, error)
	FindByID(ctx context.Context, purchaseID id.PurchaseID) (*models.Purchase, error)
	FindActive(ctx context.Context, userID id.UserID, propertyID id.PropertyID) (*models.Purchase, error)
	LatestActive(ctx context.Context, userID id.UserID) (*models.Purchase, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]models.Purchase, error)
	Transition(ctx context.Context, purchaseID id.PurchaseID, from []models.Status, to models.Status, at time.Time) (*models.Purchase, error)
	CompletePayment(ctx context.Context, purchaseID id.PurchaseID, payment store.Payment) (*models.Purchase, error)
	SubmitLoanApplication(ctx context.Context, purchaseID id.PurchaseID, loan models.LoanApplication) (*models.Purchase, error)
	DeleteMessages(ctx context.Context, purchaseID id.PurchaseID) error
	Delete(ctx context.Context, purchaseID id.PurchaseID, statuses []models.Status) error
	AppendMessage(ctx context.Context, msg models.Message) error
	ListMessages(ctx context.Context, purchaseID id.PurchaseID) ([]models.Message, error)
}

// Catalog resolves the normalized property a purchase refers to.
type Catalog interface {
	GetProperty(ctx context.Context, propertyID id.PropertyID) (*catalog.Property, error)
	GetProperties(ctx context.Context, ids []id.PropertyID) ([]catalog.Property, error)
}

// Profiles reads the buyer's funnel profile to check KYC.
type Profiles interface {
	FindProfile(ctx context.Context, userID id.UserID) (*funnel.Profile, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service drives the purchase lifecycle for authenticated buyers. Every
// operation is scoped to the caller: another user's purchase reads as not
// found.
type Service struct {
	store    Store
	catalog  Catalog
	profiles Profiles
	tx       txcontext.Runner
	logger   *slog.Logger
	metrics  *metrics.Metrics
	auditor  AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

// WithTxRunner sets the unit-of-work runner used by Delete.
func WithTxRunner(r txcontext.Runner) Option {
	return func(s *Service) {
		s.tx = r
	}
}

func New(store Store, catalog Catalog, profiles Profiles, opts ...Option) *Service {
	s := &Service{
		store:    store,
		catalog:  catalog,
		profiles: profiles,
		tx:       txcontext.NoopRunner{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func fail(span trace.Span, err error, msg string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
}

func translate(err error, action string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "purchase not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeInvalidState, "purchase status changed, reload and try again")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action)
}

// owned loads a purchase and hides it unless userID owns it.
func (s *Service) owned(ctx context.Context, userID id.UserID, purchaseID id.PurchaseID) (*models.Purchase, error) {
	p, err := s.store.FindByID(ctx, purchaseID)
	if err != nil {
		return nil, translate(err, "load purchase")
	}
	if !p.IsOwnedBy(userID) {
		return nil, dErrors.New(dErrors.CodeNotFound, "purchase not found")
	}
	return p, nil
}

func (s *Service) property(ctx context.Context, propertyID id.PropertyID) (*catalog.Property, error) {
	prop, err := s.catalog.GetProperty(ctx, propertyID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "property not found")
		}
		return nil, err
	}
	return prop, nil
}

// Initiate opens a pending_kyc purchase for an available property. A buyer
// with an active purchase for the same property gets that purchase back.
func (s *Service) Initiate(ctx context.Context, userID id.UserID, propertyID id.PropertyID) (*models.Purchase, error) {
	ctx, span := tracer.Start(ctx, "purchase.Initiate",
		trace.WithAttributes(attribute.String("property_id", propertyID.String())))
	defer span.End()

	prop, err := s.property(ctx, propertyID)
	if err != nil {
		fail(span, err, "load property")
		return nil, err
	}
	if !prop.IsAvailable() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "property is not available")
	}

	now := requestcontext.Now(ctx)
	p, created, err := s.store.CreateOrGetActive(ctx, &models.Purchase{
		ID:         id.PurchaseID(uuid.New()),
		UserID:     userID,
		PropertyID: propertyID,
		Status:     models.StatusPendingKYC,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		fail(span, err, "create purchase")
		return nil, translate(err, "create purchase")
	}
	if created {
		s.metrics.IncrementInitiated()
		s.emit(ctx, audit.Event{
			UserID:  userID,
			Subject: p.ID.String(),
			Action:  string(audit.EventPurchaseInitiated),
			Reason:  "property " + propertyID.String(),
		})
		s.logger.InfoContext(ctx, "purchase initiated",
			"purchase_id", p.ID.String(),
			"property_id", propertyID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return p, nil
}

// StartAcquisition initiates a purchase and tells the buyer where to go next:
// the payment page when their identity is already verified, otherwise the
// first funnel step.
func (s *Service) StartAcquisition(ctx context.Context, userID id.UserID, propertyID id.PropertyID) (*models.AcquisitionResult, error) {
	p, err := s.Initiate(ctx, userID, propertyID)
	if err != nil {
		return nil, err
	}
	profile, err := s.findProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil && profile.KYCVerified.IsTrue() && slices.Contains(models.AwaitingKYC, p.Status) {
		if p, err = s.advance(ctx, p); err != nil {
			return nil, err
		}
	}
	if slices.Contains(models.AwaitingKYC, p.Status) {
		return &models.AcquisitionResult{
			Purchase:   p,
			RedirectTo: funnel.StepPersonal.Path() + "?propertyId=" + propertyID.String(),
		}, nil
	}
	return &models.AcquisitionResult{Purchase: p, RedirectTo: PurchasePath(p.ID)}, nil
}

// ActiveFor returns the buyer's active purchase for a property, or nil.
func (s *Service) ActiveFor(ctx context.Context, userID id.UserID, propertyID id.PropertyID) (*models.Purchase, error) {
	p, err := s.store.FindActive(ctx, userID, propertyID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "load purchase")
	}
	return p, nil
}

// Pending returns the buyer's most recent purchase that is neither completed
// nor cancelled, or nil.
func (s *Service) Pending(ctx context.Context, userID id.UserID) (*models.Purchase, error) {
	p, err := s.store.LatestActive(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, "load purchase")
	}
	return p, nil
}

// PurchasePath is the buyer-facing page of a purchase.
func PurchasePath(purchaseID id.PurchaseID) string {
	return "/purchases/" + purchaseID.String()
}

func (s *Service) findProfile(ctx context.Context, userID id.UserID) (*funnel.Profile, error) {
	profile, err := s.profiles.FindProfile(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return profile, nil
}

// AdvanceAfterKYC moves a purchase waiting on identity verification to
// pending_payment once the owner's profile is verified. A purchase already
// past that point is returned unchanged.
func (s *Service) AdvanceAfterKYC(ctx context.Context, userID id.UserID, purchaseID id.PurchaseID) (*models.Purchase, error) {
	ctx, span := tracer.Start(ctx, "purchase.AdvanceAfterKYC",
		trace.WithAttributes(attribute.String("purchase_id", purchaseID.String())))
	defer span.End()

	p, err := s.owned(ctx, userID, purchaseID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(models.AwaitingKYC, p.Status) {
		if p.Status == models.StatusCancelled {
			return nil, dErrors.New(dErrors.CodeInvalidState, "purchase was cancelled")
		}
		return p, nil
	}
	profile, err := s.findProfile(ctx, userID)
	if err != nil {
		fail(span, err, "load profile")
		return nil, err
	}
	if profile == nil || !profile.KYCVerified.IsTrue() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "identity verification is not complete")
	}
	return s.advance(ctx, p)
}

func (s *Service) advance(ctx context.Context, p *models.Purchase) (*models.Purchase, error) {
	from := p.Status
	updated, err := s.store.Transition(ctx, p.ID, models.AwaitingKYC, models.StatusPendingPayment, requestcontext.Now(ctx))
	if errors.Is(err, sentinel.ErrInvalidState) {
		// Another request advanced it first.
		current, ferr := s.store.FindByID(ctx, p.ID)
		if ferr == nil && current.Status != models.StatusCancelled {
			return current, nil
		}
	}
	if err != nil {
		return nil, translate(err, "advance purchase")
	}
	s.statusChanged(ctx, updated, from)
	return updated, nil
}

func (s *Service) statusChanged(ctx context.Context, p *models.Purchase, from models.Status) {
	s.metrics.IncrementTransition(string(p.Status))
	s.emit(ctx, audit.Event{
		UserID:  p.UserID,
		Subject: p.ID.String(),
		Action:  string(audit.EventPurchaseStatusChanged),
		Reason:  string(from) + " -> " + string(p.Status),
	})
}

// CompleteDirectPayment pays the initial payment of the property schedule and
// completes the purchase. Paying twice returns the first confirmation.
func (s *Service) CompleteDirectPayment(ctx context.Context, userID id.UserID, purchaseID id.PurchaseID, method models.PaymentMethod) (*models.PaymentConfirmation, error) {
	ctx, span := tracer.Start(ctx, "purchase.CompleteDirectPayment",
		trace.WithAttributes(
			attribute.String("purchase_id", purchaseID.String()),
			attribute.String("method", string(method)),
		))
	defer span.End()

	if _, err := models.ParsePaymentMethod(string(method)); err != nil {
		return nil, err
	}
	p, err := s.owned(ctx, userID, purchaseID)
	if err != nil {
		return nil, err
	}
	if p.Status == models.StatusCompleted {
		return confirmation(p, true), nil
	}
	if p.Status != models.StatusPendingPayment {
		return nil, dErrors.New(dErrors.CodeInvalidState, "purchase is not awaiting payment")
	}

	prop, err := s.property(ctx, p.PropertyID)
	if err != nil {
		fail(span, err, "load property")
		return nil, err
	}
	payment := store.Payment{
		Method:    method,
		Reference: models.NewTransactionID(),
		Amount:    prop.PaymentSchedule.InitialPayment,
		PaidAt:    requestcontext.Now(ctx),
	}
	paid, err := s.store.CompletePayment(ctx, purchaseID, payment)
	if errors.Is(err, sentinel.ErrInvalidState) {
		current, ferr := s.store.FindByID(ctx, purchaseID)
		if ferr == nil && current.Status == models.StatusCompleted {
			return confirmation(current, true), nil
		}
	}
	if err != nil {
		fail(span, err, "complete payment")
		return nil, translate(err, "complete payment")
	}

	s.statusChanged(ctx, paid, models.StatusPendingPayment)
	s.metrics.AddPayment(payment.Amount.InexactFloat64())
	s.emit(ctx, audit.Event{
		UserID:  userID,
		Subject: purchaseID.String(),
		Action:  string(audit.EventPurchasePaid),
		Reason:  payment.Reference,
	})
	s.logger.InfoContext(ctx, "direct payment completed",
		"purchase_id", purchaseID.String(),
		"reference", payment.Reference,
		"request_id", requestcontext.RequestID(ctx),
	)
	return confirmation(paid, false), nil
}

func confirmation(p *models.Purchase, already bool) *models.PaymentConfirmation {
	c := &models.PaymentConfirmation{PurchaseID: p.ID, AlreadyCompleted: already}
	if p.PaymentReference != nil {
		c.Reference = *p.PaymentReference
	}
	if p.PaymentMethod != nil {
		c.Method = *p.PaymentMethod
	}
	if p.PaidAmount != nil {
		c.Amount = *p.PaidAmount
	}
	if p.PaidAt != nil {
		c.PaidAt = *p.PaidAt
	}
	return c
}

// SubmitLoanApplication files a financing request and moves the purchase to
// processing.
func (s *Service) SubmitLoanApplication(ctx context.Context, userID id.UserID, purchaseID id.PurchaseID, docs []models.LoanDocument) (*models.Purchase, error) {
	ctx, span := tracer.Start(ctx, "purchase.SubmitLoanApplication",
		trace.WithAttributes(
			attribute.String("purchase_id", purchaseID.String()),
			attribute.Int("documents", len(docs)),
		))
	defer span.End()

	if len(docs) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one document is required")
	}
	normalized := make([]models.LoanDocument, 0, len(docs))
	for _, d := range docs {
		d.Name = strings.TrimSpace(d.Name)
		d.URL = strings.TrimSpace(d.URL)
		if d.Name == "" || d.URL == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "each document needs a name and a url")
		}
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		normalized = append(normalized, d)
	}

	p, err := s.owned(ctx, userID, purchaseID)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusPendingPayment {
		return nil, dErrors.New(dErrors.CodeInvalidState, "purchase is not awaiting payment")
	}
	updated, err := s.store.SubmitLoanApplication(ctx, purchaseID, models.LoanApplication{
		Status:      models.LoanPending,
		Documents:   normalized,
		SubmittedAt: requestcontext.Now(ctx),
	})
	if err != nil {
		fail(span, err, "submit loan application")
		return nil, translate(err, "submit loan application")
	}
	s.statusChanged(ctx, updated, models.StatusPendingPayment)
	s.emit(ctx, audit.Event{
		UserID:  userID,
		Subject: purchaseID.String(),
		Action:  string(audit.EventLoanApplicationFiled),
	})
	return updated, nil
}

// Delete withdraws a purchase that has not reached processing. Its messages
// go first, then the purchase, in one unit of work.
func (s *Service) Delete(ctx context.Context, userID id.UserID, purchaseID id.PurchaseID) error {
	ctx, span := tracer.Start(ctx, "purchase.Delete",
		trace.WithAttributes(attribute.String("purchase_id", purchaseID.String())))
	defer span.End()

	p, err := s.owned(ctx, userID, purchaseID)
	if err != nil {
		return err
	}
	if !p.Status.IsDeletable() {
		return dErrors.New(dErrors.CodeInvalidState, "purchase can no longer be withdrawn")
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.DeleteMessages(ctx, purchaseID); err != nil {
			return err
		}
		if err := s.store.Delete(ctx, purchaseID, models.DeletableStatuses); err != nil {
			return err
		}
		s.emit(ctx, audit.Event{
			UserID:  userID,
			Subject: purchaseID.String(),
			Action:  string(audit.EventPurchaseDeleted),
			Reason:  string(p.Status),
		})
		return nil
	})
	if err != nil {
		fail(span, err, "delete purchase")
		return translate(err, "delete purchase")
	}
	s.metrics.IncrementDeleted()
	return nil
}

// AppendMessage adds a message from the owner to the purchase log.
func (s *Service) AppendMessage(ctx context.Context, userID id.UserID, purchaseID id.PurchaseID, content string) (*models.Message, error) {
	content, err := models.NormalizeMessage(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, userID, purchaseID); err != nil {
		return nil, err
	}
	msg := models.Message{
		ID:         id.MessageID(uuid.New()),
		PurchaseID: purchaseID,
		SenderID:   userID,
		Content:    content,
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, translate(err, "post message")
	}
	s.metrics.IncrementMessages()
	s.emit(ctx, audit.Event{
		UserID:  userID,
		Subject: purchaseID.String(),
		Action:  string(audit.EventPurchaseMessagePosted),
	})
	return &msg, nil
}

// ListMessages returns the purchase log, oldest first.
func (s *Service) ListMessages(ctx context.Context, userID id.UserID, purchaseID id.PurchaseID) ([]models.Message, error) {
	if _, err := s.owned(ctx, userID, purchaseID); err != nil {
		return nil, err
	}
	msgs, err := s.store.ListMessages(ctx, purchaseID)
	if err != nil {
		return nil, translate(err, "list messages")
	}
	return msgs, nil
}

// List returns the buyer's purchases, newest first, each with its property.
func (s *Service) List(ctx context.Context, userID id.UserID) ([]models.View, error) {
	ctx, span := tracer.Start(ctx, "purchase.List")
	defer span.End()

	purchases, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		fail(span, err, "list purchases")
		return nil, translate(err, "list purchases")
	}
	ids := make([]id.PropertyID, 0, len(purchases))
	for _, p := range purchases {
		ids = append(ids, p.PropertyID)
	}
	props, err := s.catalog.GetProperties(ctx, ids)
	if err != nil {
		fail(span, err, "load properties")
		return nil, err
	}
	byID := make(map[string]*catalog.Property, len(props))
	for i := range props {
		byID[props[i].ID] = &props[i]
	}

	views := make([]models.View, 0, len(purchases))
	for _, p := range purchases {
		views = append(views, models.View{
			Purchase:    p,
			StatusLabel: p.Status.Label(),
			Property:    byID[p.PropertyID.String()],
		})
	}
	return views, nil
}

// Get returns one purchase with its property and message log.
func (s *Service) Get(ctx context.Context, userID id.UserID, purchaseID id.PurchaseID) (*models.View, error) {
	ctx, span := tracer.Start(ctx, "purchase.Get",
		trace.WithAttributes(attribute.String("purchase_id", purchaseID.String())))
	defer span.End()

	p, err := s.owned(ctx, userID, purchaseID)
	if err != nil {
		return nil, err
	}
	view := &models.View{Purchase: *p, StatusLabel: p.Status.Label()}

	prop, err := s.property(ctx, p.PropertyID)
	switch {
	case err == nil:
		view.Property = prop
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		s.logger.WarnContext(ctx, "purchase references a missing property",
			"purchase_id", purchaseID.String(),
			"property_id", p.PropertyID.String(),
		)
	default:
		fail(span, err, "load property")
		return nil, err
	}

	if view.Messages, err = s.store.ListMessages(ctx, purchaseID); err != nil {
		fail(span, err, "list messages")
		return nil, translate(err, "list messages")
	}
	return view, nil
}

// Receipt assembles the payment receipt of a completed purchase.
func (s *Service) Receipt(ctx context.Context, userID id.UserID, purchaseID id.PurchaseID) (*models.Receipt, error) {
	p, err := s.owned(ctx, userID, purchaseID)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusCompleted || p.PaymentReference == nil {
		return nil, dErrors.New(dErrors.CodeInvalidState, "purchase has not been paid")
	}
	prop, err := s.property(ctx, p.PropertyID)
	if err != nil {
		return nil, err
	}

	c := confirmation(p, true)
	r := &models.Receipt{
		Reference:        c.Reference,
		PaidAt:           c.PaidAt,
		PropertyTitle:    prop.Title,
		PropertyLocation: prop.Location,
		CountryName:      prop.Country.Name,
		Amount:           c.Amount,
		Method:           c.Method,
	}
	if dev := prop.Developer; dev != nil {
		r.DeveloperName = dev.CompanyName
		r.DeveloperEmail = dev.Email
		r.DeveloperPhone = dev.Phone
	}
	return r, nil
}
