// Package standings maintains team owners' aggregate match points and the
// tournament leaderboard. Point totals arrive pre-computed from the scoring
// subsystem; this package only records and ranks them.
package standings

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jensholdgaard/fantasy-auction/internal/store"
)

// Manager handles points operations.
type Manager struct {
	owners store.OwnerRepository
	logger *slog.Logger
	tracer trace.Tracer
}

// NewManager returns a new standings Manager.
func NewManager(owners store.OwnerRepository, logger *slog.Logger, tp trace.TracerProvider) *Manager {
	return &Manager{
		owners: owners,
		logger: logger,
		tracer: tp.Tracer("github.com/jensholdgaard/fantasy-auction/internal/standings"),
	}
}

// AwardPoints adds match points to an owner's total.
func (m *Manager) AwardPoints(ctx context.Context, ownerID string, points int, reason string) error {
	ctx, span := m.tracer.Start(ctx, "Manager.AwardPoints",
		trace.WithAttributes(
			attribute.String("owner.id", ownerID),
			attribute.Int("points", points),
		),
	)
	defer span.End()

	if err := m.owners.AddPoints(ctx, ownerID, points); err != nil {
		return fmt.Errorf("awarding points: %w", err)
	}

	m.logger.InfoContext(ctx, "points awarded",
		slog.String("owner_id", ownerID),
		slog.Int("points", points),
		slog.String("reason", reason),
	)
	return nil
}

// DeductPoints removes match points from an owner's total.
func (m *Manager) DeductPoints(ctx context.Context, ownerID string, points int, reason string) error {
	ctx, span := m.tracer.Start(ctx, "Manager.DeductPoints",
		trace.WithAttributes(
			attribute.String("owner.id", ownerID),
			attribute.Int("points", points),
		),
	)
	defer span.End()

	if err := m.owners.AddPoints(ctx, ownerID, -points); err != nil {
		return fmt.Errorf("deducting points: %w", err)
	}

	m.logger.InfoContext(ctx, "points deducted",
		slog.String("owner_id", ownerID),
		slog.Int("points", points),
		slog.String("reason", reason),
	)
	return nil
}

// Leaderboard returns owners ordered by total points, highest first.
func (m *Manager) Leaderboard(ctx context.Context, tournamentID string) ([]store.TeamOwner, error) {
	ctx, span := m.tracer.Start(ctx, "Manager.Leaderboard")
	defer span.End()

	return m.owners.Leaderboard(ctx, tournamentID)
}

// GetOwner returns a single owner by ID.
func (m *Manager) GetOwner(ctx context.Context, id string) (*store.TeamOwner, error) {
	ctx, span := m.tracer.Start(ctx, "Manager.GetOwner")
	defer span.End()

	return m.owners.GetByID(ctx, id)
}
