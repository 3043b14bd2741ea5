package order

import (
	"context"
	"errors"

	"zidoyvelg-be/internal/auth"
	"zidoyvelg-be/internal/logger"
	"zidoyvelg-be/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpdateStatus applies one lifecycle edge. Only the status (and its
// timestamp) can change through here.
func (s *service) UpdateStatus(ctx context.Context, caller auth.Identity, orderID uuid.UUID, target Status) (*Order, error) {
	log := logger.ForLayer(ctx, "service", "UpdateStatus").With(
		zap.String("order_id", orderID.String()),
		zap.String("target", string(target)),
	)

	o, err := s.updateStatus(ctx, caller, orderID, target)
	if err != nil {
		s.metrics.Counter(metrics.TransitionsRejected).Inc()
		if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrForbidden) ||
			errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrValidation) {
			log.Warn("status change rejected", zap.Error(err))
		} else {
			log.Error("status change failed", zap.Error(err))
		}
		return nil, err
	}

	s.metrics.Counter(metrics.StatusTransitions).Inc()
	s.metrics.Counter(metrics.StatusTransitions + "." + string(target)).Inc()
	log.Info("order status changed", zap.Uint("by", caller.UserID))
	return o, nil
}

func (s *service) updateStatus(ctx context.Context, caller auth.Identity, orderID uuid.UUID, target Status) (*Order, error) {
	if caller.UserID == 0 {
		return nil, auth.ErrUnauthenticated
	}
	if !target.Valid() {
		return nil, &ValidationError{Field: "status", Reason: "unknown status " + string(target)}
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := Authorize(caller, o, target); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, orderID, o.Status, target, now); err != nil {
		return nil, err
	}

	o.Status = target
	o.UpdatedAt = now
	return o, nil
}

// GetOrder returns an order to its owner or to staff.
func (s *service) GetOrder(ctx context.Context, caller auth.Identity, orderID uuid.UUID) (*Order, error) {
	if caller.UserID == 0 {
		return nil, auth.ErrUnauthenticated
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !caller.IsStaff() && !caller.Owns(o.UserID) {
		logger.ForLayer(ctx, "service", "GetOrder").Warn("foreign order requested",
			zap.String("order_id", orderID.String()))
		return nil, ErrForbidden
	}
	return o, nil
}

// MyOrders lists the caller's orders, newest first.
func (s *service) MyOrders(ctx context.Context, caller auth.Identity) ([]Order, error) {
	if caller.UserID == 0 {
		return nil, auth.ErrUnauthenticated
	}
	return s.repo.ListByUser(ctx, caller.UserID)
}

// AllOrders lists every order, newest first. Staff only.
func (s *service) AllOrders(ctx context.Context, caller auth.Identity) ([]Order, error) {
	if caller.UserID == 0 {
		return nil, auth.ErrUnauthenticated
	}
	if !caller.IsStaff() {
		return nil, ErrForbidden
	}
	return s.repo.ListAll(ctx)
}
