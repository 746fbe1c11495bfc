package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetFlowHappyPath(t *testing.T) {
	f := NewResetFlow()
	assert.Equal(t, StateEmail, f.State)

	require.NoError(t, f.Submit("reader@example.com"))
	assert.Equal(t, StateAwaitingOTP, f.State)
	assert.Equal(t, "reader@example.com", f.Email)

	require.NoError(t, f.CodeAccepted("ticket-abc"))
	assert.Equal(t, StateSettingPassword, f.State)
	assert.Equal(t, "ticket-abc", f.ResetTicket)

	require.NoError(t, f.PasswordSet())
	assert.Equal(t, StateDone, f.State)
	assert.Empty(t, f.ResetTicket, "ticket must not outlive the flow")
}

func TestResetFlowRejectsOutOfOrderSteps(t *testing.T) {
	f := NewResetFlow()

	assert.ErrorIs(t, f.CodeAccepted("ticket"), ErrBadTransition)
	assert.ErrorIs(t, f.PasswordSet(), ErrBadTransition)

	require.NoError(t, f.Submit("reader@example.com"))
	assert.ErrorIs(t, f.Submit("other@example.com"), ErrBadTransition)
	assert.ErrorIs(t, f.PasswordSet(), ErrBadTransition)

	require.NoError(t, f.CodeAccepted("ticket"))
	assert.ErrorIs(t, f.CodeAccepted("ticket-2"), ErrBadTransition)

	require.NoError(t, f.PasswordSet())
	assert.ErrorIs(t, f.PasswordSet(), ErrBadTransition)
}

func TestResetFlowGuards(t *testing.T) {
	f := NewResetFlow()
	assert.Error(t, f.Submit(""))
	assert.Equal(t, StateEmail, f.State)

	require.NoError(t, f.Submit("reader@example.com"))
	assert.Error(t, f.CodeAccepted(""))
	assert.Equal(t, StateAwaitingOTP, f.State)
}

func TestResetFlowRestart(t *testing.T) {
	f := NewResetFlow()
	require.NoError(t, f.Submit("reader@example.com"))
	require.NoError(t, f.CodeAccepted("ticket"))

	f.Restart()
	assert.Equal(t, StateEmail, f.State)
	assert.Empty(t, f.Email)
	assert.Empty(t, f.ResetTicket)

	// A restarted flow runs again cleanly.
	require.NoError(t, f.Submit("reader@example.com"))
}

func TestResetStateString(t *testing.T) {
	assert.Equal(t, "email", StateEmail.String())
	assert.Equal(t, "awaiting_otp", StateAwaitingOTP.String())
	assert.Equal(t, "setting_password", StateSettingPassword.String())
	assert.Equal(t, "done", StateDone.String())
}
