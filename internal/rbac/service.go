package rbac

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accessQuery = `SELECT
	EXISTS (SELECT 1 FROM profiles WHERE id = $1 AND role = $3),
	EXISTS (SELECT 1 FROM business_members WHERE user_id = $1 AND business_id = $2)`

type querier interface {
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Service answers business-level authorization questions.
type Service struct {
	db querier
}

// NewService constructs a Service backed by the provided pool.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{db: pool}
}

// Access loads admin and membership flags of a user for a business.
func (s *Service) Access(ctx context.Context, userID, businessID uuid.UUID) (Access, error) {
	access := Access{UserID: userID, BusinessID: businessID}
	if err := s.db.QueryRow(ctx, accessQuery, userID, businessID, RoleAdmin).Scan(&access.Admin, &access.Member); err != nil {
		return Access{}, fmt.Errorf("rbac: access: %w", err)
	}
	return access, nil
}

// CanAccessBusiness reports whether the user is a platform admin or a member of the business.
func (s *Service) CanAccessBusiness(ctx context.Context, userID, businessID uuid.UUID) (bool, error) {
	access, err := s.Access(ctx, userID, businessID)
	if err != nil {
		return false, err
	}
	return access.Allowed(), nil
}
