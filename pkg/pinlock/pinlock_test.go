package pinlock

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/billfold/billfold/internal/storage"
	"github.com/billfold/billfold/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPINService(t *testing.T) (*Service, *utils.MockClock) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	clock := &utils.MockClock{FixedNow: time.Date(2024, time.July, 16, 9, 0, 0, 0, time.UTC)}
	return NewService(NewRepository(store), clock, "1234"), clock
}

func TestDigest(t *testing.T) {
	// sha256("1234")
	assert.Equal(t,
		"03ac674216f3e15c761ee1a5e255f067953623c8b388b4459e13f978d7c846f4",
		Digest("1234"))
	assert.NotEqual(t, Digest("1234"), Digest("4321"))
}

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat("0000"))
	assert.True(t, ValidFormat("1234"))
	assert.False(t, ValidFormat(""))
	assert.False(t, ValidFormat("123"))
	assert.False(t, ValidFormat("12345"))
	assert.False(t, ValidFormat("12a4"))
	assert.False(t, ValidFormat("12 4"))
}

func TestVerifyDefaultPIN(t *testing.T) {
	svc, _ := newPINService(t)

	result, err := svc.Verify("1234")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.DefaultPINInUse)
	assert.True(t, svc.IsAuthorized(result.Token))
	assert.False(t, svc.IsAuthorized("forged"))
}

func TestVerifyWrongPINCounts(t *testing.T) {
	svc, _ := newPINService(t)

	for i := 1; i <= 4; i++ {
		_, err := svc.Verify("0000")
		assert.ErrorIs(t, err, ErrWrongPIN)
		assert.NotErrorIs(t, err, ErrLockedOut)
		assert.Equal(t, i, svc.FailedAttempts())
	}
}

func TestVerifyBadFormatIsNotCounted(t *testing.T) {
	svc, _ := newPINService(t)

	for _, input := range []string{"", "abc", "12345"} {
		_, err := svc.Verify(input)
		assert.ErrorIs(t, err, ErrPINFormat)
	}
	assert.Zero(t, svc.FailedAttempts())
}

func TestFifthFailureStartsLockout(t *testing.T) {
	svc, clock := newPINService(t)

	for i := 0; i < 4; i++ {
		_, err := svc.Verify("0000")
		require.ErrorIs(t, err, ErrWrongPIN)
	}
	_, err := svc.Verify("0000")
	require.ErrorIs(t, err, ErrWrongPIN)
	assert.Equal(t, 5, svc.FailedAttempts())

	// Even the correct PIN is rejected during the window, and the rejection
	// does not grow the failure count.
	_, err = svc.Verify("1234")
	require.ErrorIs(t, err, ErrLockedOut)
	var lockout LockoutError
	require.ErrorAs(t, err, &lockout)
	assert.Equal(t, 60, lockout.RemainingSeconds)
	assert.Equal(t, 5, svc.FailedAttempts())

	clock.Advance(30 * time.Second)
	_, err = svc.Verify("1234")
	require.ErrorAs(t, err, &lockout)
	assert.Equal(t, 30, lockout.RemainingSeconds)

	// After expiry the correct PIN is accepted and the counter resets.
	clock.Advance(31 * time.Second)
	result, err := svc.Verify("1234")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Zero(t, svc.FailedAttempts())
}

func TestLockoutPenaltyGrows(t *testing.T) {
	svc, clock := newPINService(t)

	fail := func(n int) {
		t.Helper()
		for i := 0; i < n; i++ {
			_, err := svc.Verify("0000")
			require.ErrorIs(t, err, ErrWrongPIN)
		}
	}

	fail(5)
	clock.Advance(61 * time.Second)

	// The counter is cumulative: the 10th failure earns a 120 second window.
	fail(5)
	assert.Equal(t, 10, svc.FailedAttempts())

	var lockout LockoutError
	_, err := svc.Verify("1234")
	require.ErrorAs(t, err, &lockout)
	assert.Equal(t, 120, lockout.RemainingSeconds)
}

func TestChangePIN(t *testing.T) {
	svc, _ := newPINService(t)

	require.NoError(t, svc.ChangePIN("1234", "9876", "9876"))

	_, err := svc.Verify("1234")
	assert.ErrorIs(t, err, ErrWrongPIN)

	result, err := svc.Verify("9876")
	require.NoError(t, err)
	assert.False(t, result.DefaultPINInUse)
}

func TestChangePINRejections(t *testing.T) {
	svc, _ := newPINService(t)

	assert.ErrorIs(t, svc.ChangePIN("0000", "9876", "9876"), ErrWrongPIN)
	assert.ErrorIs(t, svc.ChangePIN("1234", "987", "987"), ErrPINFormat)
	assert.ErrorIs(t, svc.ChangePIN("1234", "9876", "6789"), ErrPINMismatch)

	// None of the rejected changes replaced the stored PIN.
	_, err := svc.Verify("1234")
	assert.NoError(t, err)
}

func TestChangedPINSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")
	clock := &utils.MockClock{FixedNow: time.Date(2024, time.July, 16, 9, 0, 0, 0, time.UTC)}

	store, err := storage.Open(path)
	require.NoError(t, err)
	svc := NewService(NewRepository(store), clock, "1234")
	require.NoError(t, svc.ChangePIN("1234", "9876", "9876"))

	reopened, err := storage.Open(path)
	require.NoError(t, err)
	restarted := NewService(NewRepository(reopened), clock, "1234")

	result, err := restarted.Verify("9876")
	require.NoError(t, err)
	assert.False(t, result.DefaultPINInUse)
}
