// Package crm looks up customers and credit scores in the relational store.
package crm

import (
	"context"
	"database/sql"

	stderrors "finsync-advisor/internal/common/errors"
	"finsync-advisor/internal/common/logger"
	"finsync-advisor/internal/models"
)

const customerColumns = `customer_id, name, phone, email, employment_type,
       employer, years_at_job, monthly_income, existing_emis,
       pre_approved_limit, created_at`

// Store reads customer and bureau data from Postgres.
type Store struct {
	db  *sql.DB
	log logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{db: db, log: log}
}

// FindByPhone looks a customer up by phone number. A miss is the
// new-prospect path, signalled by a CUSTOMER_NOT_FOUND error.
func (s *Store) FindByPhone(ctx context.Context, phone string) (*models.CustomerProfile, error) {
	return s.findBy(ctx, "phone", phone)
}

// FindByEmail looks a customer up by email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (*models.CustomerProfile, error) {
	return s.findBy(ctx, "email", email)
}

// FindByID looks a customer up by customer id.
func (s *Store) FindByID(ctx context.Context, customerID string) (*models.CustomerProfile, error) {
	return s.findBy(ctx, "customer_id", customerID)
}

func (s *Store) findBy(ctx context.Context, column, key string) (*models.CustomerProfile, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE ` + column + ` = $1`

	var c models.CustomerProfile
	var phone, email, employer sql.NullString
	err := s.db.QueryRowContext(ctx, query, key).Scan(
		&c.CustomerID, &c.Name, &phone, &email, &c.EmploymentType,
		&employer, &c.YearsAtJob, &c.MonthlyIncome, &c.ExistingEMIs,
		&c.PreApprovedLimit, &c.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewCustomerNotFoundError(key)
	}
	if err != nil {
		s.log.WithError(err).Error("customer lookup failed", map[string]interface{}{
			"column": column,
		})
		return nil, stderrors.NewCustomerLookupFailedError(err)
	}

	c.Phone = phone.String
	c.Email = email.String
	c.Employer = employer.String
	return &c, nil
}

// CreditScore fetches the bureau record for a customer. A miss tells the
// caller to fall back to the local estimator or the documented default.
func (s *Store) CreditScore(ctx context.Context, customerID string) (*models.CreditScoreRecord, error) {
	var r models.CreditScoreRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT customer_id, score, confidence, rating, fetched_at
		FROM credit_scores
		WHERE customer_id = $1`, customerID).Scan(
		&r.CustomerID, &r.Score, &r.Confidence, &r.Rating, &r.FetchedAt,
	)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewCustomerNotFoundError(customerID)
	}
	if err != nil {
		s.log.WithError(err).Error("credit score lookup failed", map[string]interface{}{
			"customerId": customerID,
		})
		return nil, stderrors.NewBureauUnavailableError(err)
	}
	return &r, nil
}
