package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { Register(reg) })

	LoginAttempts.WithLabelValues(LoginSuccess).Inc()
	ChatMessages.WithLabelValues("TALK").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["boardchat_auth_login_attempts_total"])
	assert.True(t, names["boardchat_chat_messages_total"])

	assert.Panics(t, func() { Register(reg) }, "double registration must fail loudly")
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(LoginAttempts.WithLabelValues(LoginFailed))
	LoginAttempts.WithLabelValues(LoginFailed).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(LoginAttempts.WithLabelValues(LoginFailed)))
}
