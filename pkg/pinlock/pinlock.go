package pinlock

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/billfold/billfold/internal/storage"
)

const pinKey = "pin"

var pinPattern = regexp.MustCompile(`^\d{4}$`)

var ErrPINFormat = errors.New("PIN must be exactly 4 digits")
var ErrWrongPIN = errors.New("incorrect PIN")
var ErrLockedOut = errors.New("too many failed attempts")
var ErrPINMismatch = errors.New("PINs do not match")

// LockoutError reports a submission rejected during an active lockout
// window. It matches ErrLockedOut under errors.Is.
type LockoutError struct {
	RemainingSeconds int
}

func (e LockoutError) Error() string {
	return fmt.Sprintf("too many failed attempts, try again in %d seconds", e.RemainingSeconds)
}

func (e LockoutError) Is(target error) bool {
	return target == ErrLockedOut
}

// Digest is the irreversible, unsalted SHA-256 hex digest under which PINs
// are stored and compared.
func Digest(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}

// ValidFormat reports whether the input is exactly 4 digits. Non-conforming
// input is rejected locally and never counts as a failed attempt.
func ValidFormat(pin string) bool {
	return pinPattern.MatchString(pin)
}

// Repository persists the PIN digest. Absence means the default PIN is in
// effect.
type Repository interface {
	Digest() (string, bool, error)
	SetDigest(digest string) error
}

type pinRecord struct {
	Value string `json:"value"`
}

type RepositoryImpl struct {
	store *storage.DocumentStore
}

func NewRepository(store *storage.DocumentStore) *RepositoryImpl {
	return &RepositoryImpl{store: store}
}

func (r *RepositoryImpl) Digest() (string, bool, error) {
	raw, ok := r.store.Get(pinKey)
	if !ok {
		return "", false, nil
	}
	var rec pinRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return "", false, fmt.Errorf("failed to read stored PIN: %w", err)
	}
	return rec.Value, true, nil
}

func (r *RepositoryImpl) SetDigest(digest string) error {
	if err := r.store.Put(pinKey, pinRecord{Value: digest}); err != nil {
		return fmt.Errorf("failed to store PIN: %w", err)
	}
	return nil
}
