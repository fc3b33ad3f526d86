package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/paneswitch/internal/permission"
)

type sent struct {
	summary  string
	replaces uint32
}

type recordingSender struct {
	sent []sent
	next uint32
	fail bool
}

func (s *recordingSender) Send(summary, _ string, replaces uint32) (uint32, error) {
	if s.fail {
		return 0, errors.New("no notification daemon")
	}
	s.next++
	s.sent = append(s.sent, sent{summary: summary, replaces: replaces})
	return s.next, nil
}

func syncNotifier(s Sender) *PermissionNotifier {
	n := NewPermissionNotifier(s, nil)
	n.async = false
	return n
}

func TestPermissionNotifier_ReplacesPreviousBubble(t *testing.T) {
	s := &recordingSender{}
	n := syncNotifier(s)

	n.Observe(permission.PermissionRevoked)
	n.Observe(permission.PermissionGranted)

	require.Len(t, s.sent, 2)
	assert.Contains(t, s.sent[0].summary, "disabled")
	assert.Equal(t, uint32(0), s.sent[0].replaces)
	assert.Contains(t, s.sent[1].summary, "restored")
	assert.Equal(t, uint32(1), s.sent[1].replaces)
}

func TestPermissionNotifier_SendFailureKeepsLastID(t *testing.T) {
	s := &recordingSender{}
	n := syncNotifier(s)
	n.Observe(permission.PermissionRevoked)

	s.fail = true
	n.Observe(permission.PermissionGranted)
	assert.Equal(t, uint32(1), n.last)
}

func TestPermissionNotifier_NilSenderOnlyLogs(t *testing.T) {
	n := syncNotifier(nil)
	assert.NotPanics(t, func() { n.Observe(permission.PermissionRevoked) })
}

func TestMessage_UnknownEvent(t *testing.T) {
	_, _, ok := message(permission.Event(99))
	assert.False(t, ok)
}
