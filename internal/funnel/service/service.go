package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"teranga/internal/funnel/metrics"
	"teranga/internal/funnel/models"
	purchase "teranga/internal/purchase/models"
	id "teranga/pkg/domain"
	dErrors "teranga/pkg/domain-errors"
	audit "teranga/pkg/platform/audit"
	"teranga/pkg/platform/sentinel"
	txcontext "teranga/pkg/platform/tx"
	"teranga/pkg/requestcontext"
)

var tracer = otel.Tracer("teranga/funnel")

// Store persists funnel profiles. Answer writes report
// sentinel.ErrInvalidState once identity verification has started.
type Store interface {
	FindProfile(ctx context.Context, userID id.UserID) (*models.Profile, error)
	SavePersonal(ctx context.Context, userID id.UserID, info models.PersonalInfo, at time.Time) (*models.Profile, error)
	SaveProfessional(ctx context.Context, userID id.UserID, info models.ProfessionalInfo, at time.Time) (*models.Profile, error)
	SaveResidency(ctx context.Context, userID id.UserID, hasEUResidency bool, at time.Time) (*models.Profile, error)
	MarkKYCVerified(ctx context.Context, userID id.UserID, at time.Time) (*models.Profile, error)
	MarkKYCInProgress(ctx context.Context, userID id.UserID, at time.Time) (*models.Profile, error)
}

// Purchases is the slice of the purchase lifecycle the funnel drives.
type Purchases interface {
	Initiate(ctx context.Context, userID id.UserID, propertyID id.PropertyID) (*purchase.Purchase, error)
	ActiveFor(ctx context.Context, userID id.UserID, propertyID id.PropertyID) (*purchase.Purchase, error)
	AdvanceAfterKYC(ctx context.Context, userID id.UserID, purchaseID id.PurchaseID) (*purchase.Purchase, error)
	Pending(ctx context.Context, userID id.UserID) (*purchase.Purchase, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs the buyer funnel: personal, professional, residency and kyc.
type Service struct {
	store     Store
	purchases Purchases
	tx        txcontext.Runner
	logger    *slog.Logger
	metrics   *metrics.Metrics
	auditor   AuditPublisher
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

// WithTxRunner sets the runner for DocumentsSubmitted. With a Postgres runner
// the profile and purchase writes commit together; NoopRunner gives no
// atomicity, and a failed advance is completed by the next call instead.
func WithTxRunner(r txcontext.Runner) Option {
	return func(s *Service) {
		s.tx = r
	}
}

func New(store Store, purchases Purchases, opts ...Option) *Service {
	s := &Service{
		store:     store,
		purchases: purchases,
		tx:        txcontext.NoopRunner{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) emit(ctx context.Context, userID id.UserID, action audit.AuditEvent, subject string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{UserID: userID, Subject: subject, Action: string(action)})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(action),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

// profile returns the buyer's profile, or nil before the first submission.
func (s *Service) profile(ctx context.Context, userID id.UserID) (*models.Profile, error) {
	p, err := s.store.FindProfile(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return p, nil
}

func (s *Service) locked() error {
	s.metrics.IncrementLockedRefusals()
	return dErrors.New(dErrors.CodeProfileLocked,
		"identity verification has started; profile answers can no longer be changed")
}

// saved maps store errors from an answer write.
func (s *Service) saved(err error, step models.Step) error {
	switch {
	case errors.Is(err, sentinel.ErrInvalidState):
		return s.locked()
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodePrecondition, "complete the personal step first")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save "+string(step)+" step")
}

// checkSubmit loads the profile and refuses the write when it is locked or
// the step's prerequisites are missing.
func (s *Service) checkSubmit(ctx context.Context, userID id.UserID, step models.Step) (*models.Profile, error) {
	p, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := models.CanSubmit(p, step); err != nil {
		s.metrics.IncrementLockedRefusals()
		return nil, err
	}
	switch step {
	case models.StepProfessional:
		if !p.HasPersonalInfo() {
			return nil, dErrors.New(dErrors.CodePrecondition, "complete the personal step first")
		}
	case models.StepResidency:
		if !p.HasProfessionalInfo() {
			return nil, dErrors.New(dErrors.CodePrecondition, "complete the professional step first")
		}
	}
	return p, nil
}

func (s *Service) accepted(ctx context.Context, userID id.UserID, step models.Step) {
	s.metrics.IncrementStep(string(step))
	s.emit(ctx, userID, audit.EventProfileUpdated, string(step))
}

// Load resolves the step the buyer actually lands on when opening step.
func (s *Service) Load(ctx context.Context, userID id.UserID, step models.Step) (models.Resolution, error) {
	ctx, span := tracer.Start(ctx, "funnel.Load", trace.WithAttributes(attribute.String("step", string(step))))
	defer span.End()

	if !step.IsValid() {
		return models.Resolution{}, dErrors.New(dErrors.CodeBadRequest, "unknown funnel step")
	}
	p, err := s.profile(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load profile")
		return models.Resolution{}, err
	}
	return models.Resolve(p, step), nil
}

// SubmitPersonal stores the personal answers, creating the profile on first
// use, and moves on to the professional step.
func (s *Service) SubmitPersonal(ctx context.Context, userID id.UserID, info models.PersonalInfo) (models.Resolution, error) {
	ctx, span := tracer.Start(ctx, "funnel.SubmitPersonal")
	defer span.End()

	info.Normalize()
	if err := info.Validate(); err != nil {
		return models.Resolution{}, err
	}
	if _, err := s.checkSubmit(ctx, userID, models.StepPersonal); err != nil {
		return models.Resolution{}, err
	}
	p, err := s.store.SavePersonal(ctx, userID, info, requestcontext.Now(ctx))
	if err != nil {
		span.RecordError(err)
		return models.Resolution{}, s.saved(err, models.StepPersonal)
	}
	s.accepted(ctx, userID, models.StepPersonal)
	return models.Resolve(p, models.StepProfessional), nil
}

// SubmitProfessional stores activity and revenue range, then branches to
// residency for European phone numbers and to kyc otherwise.
func (s *Service) SubmitProfessional(ctx context.Context, userID id.UserID, info models.ProfessionalInfo) (models.Resolution, error) {
	ctx, span := tracer.Start(ctx, "funnel.SubmitProfessional")
	defer span.End()

	info.Normalize()
	if err := info.Validate(); err != nil {
		return models.Resolution{}, err
	}
	if _, err := s.checkSubmit(ctx, userID, models.StepProfessional); err != nil {
		return models.Resolution{}, err
	}
	p, err := s.store.SaveProfessional(ctx, userID, info, requestcontext.Now(ctx))
	if err != nil {
		span.RecordError(err)
		return models.Resolution{}, s.saved(err, models.StepProfessional)
	}
	s.accepted(ctx, userID, models.StepProfessional)
	return models.Resolve(p, models.NextAfterProfessional(p)), nil
}

// SubmitResidency records whether the buyer holds EU residency.
func (s *Service) SubmitResidency(ctx context.Context, userID id.UserID, hasEUResidency bool) (models.Resolution, error) {
	ctx, span := tracer.Start(ctx, "funnel.SubmitResidency")
	defer span.End()

	if _, err := s.checkSubmit(ctx, userID, models.StepResidency); err != nil {
		return models.Resolution{}, err
	}
	p, err := s.store.SaveResidency(ctx, userID, hasEUResidency, requestcontext.Now(ctx))
	if err != nil {
		span.RecordError(err)
		return models.Resolution{}, s.saved(err, models.StepResidency)
	}
	s.accepted(ctx, userID, models.StepResidency)
	return models.Resolve(p, models.StepKYC), nil
}

// EnterKYC opens the verification step. With a property and verification
// not yet started, the buyer's purchase of that property is bound here,
// reusing an active one.
func (s *Service) EnterKYC(ctx context.Context, userID id.UserID, propertyID *id.PropertyID) (*models.KYCState, error) {
	ctx, span := tracer.Start(ctx, "funnel.EnterKYC")
	defer span.End()

	p, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	state := &models.KYCState{Resolution: models.Resolve(p, models.StepKYC)}
	if state.CurrentStep != models.StepKYC || propertyID == nil {
		return state, nil
	}
	span.SetAttributes(attribute.String("property_id", propertyID.String()))

	var bound *purchase.Purchase
	if p.KYCStatus() == models.KYCNotStarted {
		bound, err = s.purchases.Initiate(ctx, userID, *propertyID)
		if err == nil {
			s.emit(ctx, userID, audit.EventKYCStarted, bound.ID.String())
		}
	} else {
		bound, err = s.purchases.ActiveFor(ctx, userID, *propertyID)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bind purchase")
		return nil, err
	}
	if bound != nil {
		state.PurchaseID = &bound.ID
	}
	return state, nil
}

// DocumentsSubmitted marks the buyer identity-verified. A purchase bound for
// propertyID advances to pending_payment and the buyer is sent to it;
// otherwise to the profile page. Calling it again after verification only
// finishes an advance that did not happen the first time.
func (s *Service) DocumentsSubmitted(ctx context.Context, userID id.UserID, propertyID *id.PropertyID) (*models.KYCOutcome, error) {
	ctx, span := tracer.Start(ctx, "funnel.DocumentsSubmitted")
	defer span.End()

	p, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	verified := p.KYCStatus() == models.KYCVerified
	if !verified && !models.ReadyForKYC(p) {
		return nil, dErrors.New(dErrors.CodePrecondition, "complete the previous steps first")
	}

	// Resolved before any write so a lookup failure leaves the profile as it was.
	var bound *purchase.Purchase
	if propertyID != nil {
		if bound, err = s.purchases.ActiveFor(ctx, userID, *propertyID); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	out := &models.KYCOutcome{RedirectTo: models.ProfilePath}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if !verified {
			if _, err := s.store.MarkKYCVerified(ctx, userID, requestcontext.Now(ctx)); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record verification")
			}
		}
		if bound != nil {
			advanced, err := s.purchases.AdvanceAfterKYC(ctx, userID, bound.ID)
			if err != nil {
				return err
			}
			out.RedirectTo = purchasePath(advanced.ID)
			out.PurchaseID = &advanced.ID
		}
		if !verified {
			s.emit(ctx, userID, audit.EventKYCSubmitted, "kyc")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "documents submitted")
		return nil, err
	}
	if verified {
		return out, nil
	}
	s.metrics.IncrementKYCVerified()
	s.logger.InfoContext(ctx, "identity verification recorded",
		"redirect_to", out.RedirectTo,
		"request_id", requestcontext.RequestID(ctx),
	)
	return out, nil
}

func purchasePath(purchaseID id.PurchaseID) string {
	return "/purchases/" + purchaseID.String()
}

// MarkKYCInProgress is called by the verification provider once it has the
// buyer's documents under review. From then on the funnel is read-only.
func (s *Service) MarkKYCInProgress(ctx context.Context, userID id.UserID) (*models.Profile, error) {
	p, err := s.store.MarkKYCInProgress(ctx, userID, requestcontext.Now(ctx))
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return nil, dErrors.New(dErrors.CodeInvalidState, "identity is already verified")
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record verification start")
	}
	s.emit(ctx, userID, audit.EventKYCStarted, "provider")
	return p, nil
}

// Profile assembles the buyer's profile page.
func (s *Service) Profile(ctx context.Context, userID id.UserID) (*models.ProfileView, error) {
	ctx, span := tracer.Start(ctx, "funnel.Profile")
	defer span.End()

	p, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := &models.ProfileView{
		Profile:    p,
		KYCStatus:  p.KYCStatus(),
		Completion: p.Completion(),
	}
	if p != nil && p.Country != "" {
		view.CountryName = models.CountryName(p.Country)
	}
	if view.PendingPurchase, err = s.purchases.Pending(ctx, userID); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return view, nil
}
