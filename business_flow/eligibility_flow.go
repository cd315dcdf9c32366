package businessflow

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/amirphl/Eligibility-Roster/app/dto"
	"github.com/amirphl/Eligibility-Roster/app/services"
	"github.com/amirphl/Eligibility-Roster/lookuplog"
	"github.com/amirphl/Eligibility-Roster/roster"
)

// EligibleOffers are the promotions presented with every eligible result
var EligibleOffers = []string{
	"$25 off the Activation fee on add a line",
	"25% off on any Bluetooth speaker",
	"$25 off on tier 3 and tier 4 accessory bundle",
}

// CheckTask is an eligibility check running in the background. It finishes exactly once, either
// with a recorded result or with an error.
type CheckTask struct {
	done   chan struct{}
	res    *dto.CheckEligibilityResponse
	err    error
	cancel func()
}

// Done is closed when the check has finished.
func (t *CheckTask) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the check finishes or ctx is done.
func (t *CheckTask) Wait(ctx context.Context) (*dto.CheckEligibilityResponse, error) {
	select {
	case <-t.done:
		return t.res, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel abandons the check. A cancelled check is never recorded.
func (t *CheckTask) Cancel() {
	t.cancel()
}

// EligibilityFlow runs eligibility checks and records each one in the lookup history
type EligibilityFlow interface {
	StartCheck(ctx context.Context, session *roster.Session, req *dto.CheckEligibilityRequest) (*CheckTask, error)
	CheckEligibility(ctx context.Context, session *roster.Session, req *dto.CheckEligibilityRequest) (*dto.CheckEligibilityResponse, error)
}

// EligibilityFlowImpl implements EligibilityFlow
type EligibilityFlowImpl struct {
	resolver services.EligibilityResolver
	history  *lookuplog.Log
	latency  time.Duration
	logger   *log.Logger
}

// NewEligibilityFlow creates an eligibility flow. latency delays every check before the resolver
// is asked.
func NewEligibilityFlow(resolver services.EligibilityResolver, history *lookuplog.Log, latency time.Duration, logger *log.Logger) EligibilityFlow {
	if logger == nil {
		logger = log.Default()
	}
	return &EligibilityFlowImpl{
		resolver: resolver,
		history:  history,
		latency:  latency,
		logger:   logger,
	}
}

// StartCheck validates the phone number and starts the check. Starting a check cancels the
// session's previous one if it is still running, so only the latest check is recorded.
func (f *EligibilityFlowImpl) StartCheck(ctx context.Context, session *roster.Session, req *dto.CheckEligibilityRequest) (*CheckTask, error) {
	if req == nil {
		return nil, NewBusinessError(CodeInvalidRequest, "request is required", nil)
	}
	if session == nil {
		return nil, NewBusinessError(CodeSessionRequired, "Staff session is required", ErrSessionRequired)
	}
	phone, err := normalizePhone(req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	checkCtx, release := session.BeginCheck(ctx)
	task := &CheckTask{done: make(chan struct{}), cancel: release}
	actor := session.Actor()

	go func() {
		defer close(task.done)
		defer release()
		task.res, task.err = f.run(checkCtx, actor, phone)
	}()
	return task, nil
}

// CheckEligibility starts a check and waits for its result
func (f *EligibilityFlowImpl) CheckEligibility(ctx context.Context, session *roster.Session, req *dto.CheckEligibilityRequest) (*dto.CheckEligibilityResponse, error) {
	task, err := f.StartCheck(ctx, session, req)
	if err != nil {
		return nil, err
	}
	return task.Wait(ctx)
}

func (f *EligibilityFlowImpl) run(ctx context.Context, actor roster.Actor, phone string) (*dto.CheckEligibilityResponse, error) {
	start := time.Now()
	defer func() { eligibilityCheckDuration.Observe(time.Since(start).Seconds()) }()

	if err := f.delay(ctx); err != nil {
		eligibilityChecksTotal.WithLabelValues("cancelled").Inc()
		return nil, NewBusinessError(CodeCheckCancelled, "Eligibility check was cancelled", errors.Join(ErrCheckCancelled, err))
	}

	result, err := f.resolver.Check(ctx, phone)
	if err != nil {
		if ctx.Err() != nil {
			eligibilityChecksTotal.WithLabelValues("cancelled").Inc()
			return nil, NewBusinessError(CodeCheckCancelled, "Eligibility check was cancelled", errors.Join(ErrCheckCancelled, ctx.Err()))
		}
		eligibilityChecksTotal.WithLabelValues("error").Inc()
		f.logger.Printf("eligibility: check for %s failed: %v", phone, err)
		return nil, NewBusinessError(CodeCheckFailed, "Failed to check eligibility", errors.Join(ErrResolverUnavailable, err))
	}
	// A check superseded while the resolver answered is dropped unrecorded.
	if err := ctx.Err(); err != nil {
		eligibilityChecksTotal.WithLabelValues("cancelled").Inc()
		return nil, NewBusinessError(CodeCheckCancelled, "Eligibility check was cancelled", errors.Join(ErrCheckCancelled, err))
	}

	record := lookuplog.Record{
		PhoneNumber: phone,
		IsEligible:  result.IsEligible,
		CheckedBy:   actor.Identity(),
		UserID:      actor.ID,
	}
	if result.IsEligible {
		record.Customer = result.Customer
	}
	stored, err := f.history.Append(context.WithoutCancel(ctx), record)
	if err != nil {
		eligibilityChecksTotal.WithLabelValues("error").Inc()
		return nil, NewBusinessError(CodeCheckFailed, "Failed to record eligibility check", err)
	}

	res := &dto.CheckEligibilityResponse{
		Message:     "Customer is not eligible",
		LookupID:    stored.ID,
		PhoneNumber: phone,
		IsEligible:  stored.IsEligible,
		CheckedBy:   stored.CheckedBy,
		CheckedAt:   stored.Timestamp.UTC().Format(time.RFC3339),
	}
	outcome := "not_eligible"
	if stored.IsEligible {
		outcome = "eligible"
		c := ToCustomerDTO(*stored.Customer)
		res.Message = "Customer is eligible"
		res.Customer = &c
		res.Offers = append([]string(nil), EligibleOffers...)
	}
	eligibilityChecksTotal.WithLabelValues(outcome).Inc()
	return res, nil
}

func (f *EligibilityFlowImpl) delay(ctx context.Context) error {
	if f.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(f.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
