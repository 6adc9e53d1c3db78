package pinlock

import (
	"fmt"
	"sync"
	"time"

	"github.com/billfold/billfold/internal/utils"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// VerifyResult is returned on a successful PIN verification.
type VerifyResult struct {
	// Token authorizes subsequent requests for this session.
	Token string
	// DefaultPINInUse is true when the stored digest is still the default
	// PIN's; callers should nudge the user to change it.
	DefaultPINInUse bool
}

// Service is the lockout state machine. Failure counts and the lockout
// deadline live only in memory and reset on process restart; the lockout is
// evaluated lazily, on the next submission, not by its own timer.
type Service struct {
	mu             sync.Mutex
	repo           Repository
	clock          utils.Clock
	defaultDigest  string
	failedAttempts int
	lockoutUntil   time.Time
	sessions       map[string]struct{}
}

func NewService(repo Repository, clock utils.Clock, defaultPIN string) *Service {
	return &Service{
		repo:          repo,
		clock:         clock,
		defaultDigest: Digest(defaultPIN),
		sessions:      make(map[string]struct{}),
	}
}

// Verify runs one transition of the state machine:
//   - during an active lockout the submission is rejected outright, without
//     counting as an attempt;
//   - malformed input (not 4 digits) is rejected without counting;
//   - a mismatch increments the failure counter, and every 5th cumulative
//     failure starts a lockout of 60 * (failures/5) seconds;
//   - a match resets the counter and issues a session token.
func (s *Service) Verify(pin string) (VerifyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if now.Before(s.lockoutUntil) {
		remaining := int(s.lockoutUntil.Sub(now).Seconds())
		return VerifyResult{}, LockoutError{RemainingSeconds: remaining}
	}

	if !ValidFormat(pin) {
		return VerifyResult{}, ErrPINFormat
	}

	stored, err := s.storedDigest()
	if err != nil {
		return VerifyResult{}, err
	}

	if Digest(pin) != stored {
		s.failedAttempts++
		if s.failedAttempts%5 == 0 {
			penalty := time.Duration(60*(s.failedAttempts/5)) * time.Second
			s.lockoutUntil = now.Add(penalty)
			log.Warnf("PIN locked out for %s after %d failed attempts", penalty, s.failedAttempts)
			return VerifyResult{}, fmt.Errorf("%w; locked for %d seconds", ErrWrongPIN, int(penalty.Seconds()))
		}
		return VerifyResult{}, ErrWrongPIN
	}

	s.failedAttempts = 0
	token := uuid.NewString()
	s.sessions[token] = struct{}{}
	return VerifyResult{
		Token:           token,
		DefaultPINInUse: stored == s.defaultDigest,
	}, nil
}

// ChangePIN replaces the stored digest after verifying the current PIN. It
// does not touch the failure counter; the change screen is only reachable
// once authenticated.
func (s *Service) ChangePIN(current, newPIN, confirm string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.storedDigest()
	if err != nil {
		return err
	}
	if Digest(current) != stored {
		return fmt.Errorf("%w: current PIN does not match", ErrWrongPIN)
	}
	if !ValidFormat(newPIN) {
		return ErrPINFormat
	}
	if newPIN != confirm {
		return ErrPINMismatch
	}
	if err := s.repo.SetDigest(Digest(newPIN)); err != nil {
		return err
	}
	log.Info("PIN changed")
	return nil
}

// IsAuthorized reports whether token belongs to a live session.
func (s *Service) IsAuthorized(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[token]
	return ok
}

// FailedAttempts returns the cumulative failure count since the last
// successful verification.
func (s *Service) FailedAttempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failedAttempts
}

func (s *Service) storedDigest() (string, error) {
	digest, ok, err := s.repo.Digest()
	if err != nil {
		return "", err
	}
	if !ok {
		// First run: no PIN stored yet, the default applies.
		return s.defaultDigest, nil
	}
	return digest, nil
}
