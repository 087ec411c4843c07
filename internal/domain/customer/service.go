package customer

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Sentinel errors for customer registration.
var (
	ErrEmailRequired  = errors.New("email required")
	ErrDuplicateEmail = errors.New("email already registered")
)

const (
	emailFilterFPR         = 0.001
	emailFilterMinCapacity = 10_000
)

// Service encapsulates customer registration business logic.
type Service struct {
	customers Repository

	// mu guards emails: bloom filters are not safe for concurrent use and
	// Register runs on arbitrary request goroutines.
	mu     sync.Mutex
	emails *bloom.BloomFilter
}

// NewService creates a customer Service backed by the given repository.
func NewService(customers Repository) *Service {
	return &Service{customers: customers}
}

// SeedEmailFilter loads every registered email into a bloom filter.
// Afterwards Register skips the duplicate lookup for emails the filter has
// definitely never seen; a filter hit still goes to the repository, so false
// positives only cost one extra query. Without seeding, every registration
// performs the lookup.
func (s *Service) SeedEmailFilter(ctx context.Context) error {
	emails, err := s.customers.ListEmails(ctx)
	if err != nil {
		return errors.Wrap(err, "list emails")
	}

	capacity := uint(len(emails)) * 2
	if capacity < emailFilterMinCapacity {
		capacity = emailFilterMinCapacity
	}

	filter := bloom.NewWithEstimates(capacity, emailFilterFPR)
	for _, email := range emails {
		filter.AddString(email)
	}

	s.mu.Lock()
	s.emails = filter
	s.mu.Unlock()
	return nil
}

// Register creates a new customer after verifying the email is not already
// registered. The uniqueness check is a single point-in-time lookup; the
// customers.email UNIQUE constraint backstops concurrent registrations.
func (s *Service) Register(ctx context.Context, name, email string) (*Customer, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}

	if s.emailMayExist(email) {
		_, err := s.customers.FindByEmail(ctx, email)
		switch {
		case err == nil:
			return nil, ErrDuplicateEmail
		case !errors.Is(err, ErrNotFound):
			return nil, errors.Wrap(err, "find customer by email")
		}
	}

	c := &Customer{
		ID:    uuid.New().String(),
		Name:  name,
		Email: email,
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "create customer")
	}

	s.rememberEmail(email)
	return c, nil
}

// emailMayExist reports whether email could already be registered. It returns
// true when no filter is seeded — the repository lookup is then authoritative.
func (s *Service) emailMayExist(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emails == nil {
		return true
	}
	return s.emails.TestString(email)
}

func (s *Service) rememberEmail(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emails != nil {
		s.emails.AddString(email)
	}
}
