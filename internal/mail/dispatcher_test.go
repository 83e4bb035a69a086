package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	. "surveyhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTransport struct {
	err       error
	messageID string
	sent      []Message
}

func (t *stubTransport) Send(ctx context.Context, msg Message) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	t.sent = append(t.sent, msg)
	return t.messageID, nil
}

type stubTemplateStore struct {
	byID map[string]*EmailTemplate
	best *EmailTemplate
}

func (s *stubTemplateStore) GetByID(ctx context.Context, id string) (*EmailTemplate, error) {
	if tmpl, ok := s.byID[id]; ok {
		return tmpl, nil
	}
	return nil, errors.New("not found")
}

func (s *stubTemplateStore) GetBest(ctx context.Context, name string, organizationID *string) (*EmailTemplate, error) {
	if s.best == nil {
		return nil, errors.New("not found")
	}
	return s.best, nil
}

func newTestDispatcher(primary, secondary Transport, store TemplateStore) *Dispatcher {
	if store == nil {
		store = &stubTemplateStore{}
	}
	return NewDispatcher(store, primary, secondary, "surveys@surveyhub.local")
}

func TestDispatch_PrimarySuccess(t *testing.T) {
	primary := &stubTransport{messageID: "msg-1"}
	secondary := &stubTransport{}
	d := newTestDispatcher(primary, secondary, nil)

	result := d.Dispatch(context.Background(), Request{
		Kind:     KindWelcome,
		Email:    "a@x.com",
		Username: "alice",
		Password: "secret",
	})

	assert.True(t, result.Success)
	assert.Equal(t, MethodPrimary, result.Method)
	assert.Equal(t, "msg-1", result.MessageID)
	require.Len(t, primary.sent, 1)
	assert.Empty(t, secondary.sent)
}

func TestDispatch_FallsBackToSecondary(t *testing.T) {
	primary := &stubTransport{err: errors.New("service error")}
	secondary := &stubTransport{}
	d := newTestDispatcher(primary, secondary, nil)

	result := d.Dispatch(context.Background(), Request{
		Kind:     KindReminder,
		Email:    "a@x.com",
		Username: "alice",
	})

	assert.True(t, result.Success)
	assert.Equal(t, MethodSecondary, result.Method)
	require.Len(t, secondary.sent, 1)
}

func TestDispatch_UnavailablePrimaryFallsBack(t *testing.T) {
	// Missing credentials count as a primary failure, not a caller error.
	primary := &stubTransport{err: ErrTransportUnavailable}
	secondary := &stubTransport{}
	d := newTestDispatcher(primary, secondary, nil)

	result := d.Dispatch(context.Background(), Request{Kind: KindWelcome, Email: "a@x.com", Username: "alice"})

	assert.True(t, result.Success)
	assert.Equal(t, MethodSecondary, result.Method)
}

func TestDispatch_BothTransportsFail(t *testing.T) {
	primary := &stubTransport{err: errors.New("primary down")}
	secondary := &stubTransport{err: errors.New("relay down")}
	d := newTestDispatcher(primary, secondary, nil)

	result := d.Dispatch(context.Background(), Request{Kind: KindWelcome, Email: "a@x.com", Username: "alice"})

	assert.False(t, result.Success)
	assert.Equal(t, "relay down", result.Error)
}

func TestDispatch_ExplicitTemplateWins(t *testing.T) {
	store := &stubTemplateStore{
		byID: map[string]*EmailTemplate{
			"tmpl-1": {Subject: "Custom subject for {{username}}", TextBody: "hi {{username}}", HTMLBody: "<p>hi {{username}}</p>"},
		},
		best: &EmailTemplate{Subject: "org subject", TextBody: "org", HTMLBody: "org"},
	}
	primary := &stubTransport{}
	d := newTestDispatcher(primary, &stubTransport{}, store)

	templateID := "tmpl-1"
	result := d.Dispatch(context.Background(), Request{
		Kind:       KindWelcome,
		Email:      "a@x.com",
		Username:   "alice",
		TemplateID: &templateID,
	})

	assert.True(t, result.Success)
	require.Len(t, primary.sent, 1)
	assert.Equal(t, "Custom subject for alice", primary.sent[0].Subject)
}

func TestDispatch_MissingExplicitTemplateFallsThrough(t *testing.T) {
	store := &stubTemplateStore{
		best: &EmailTemplate{Subject: "org subject", TextBody: "org body", HTMLBody: "<p>org body</p>"},
	}
	primary := &stubTransport{}
	d := newTestDispatcher(primary, &stubTransport{}, store)

	missing := "no-such-template"
	result := d.Dispatch(context.Background(), Request{
		Kind:       KindWelcome,
		Email:      "a@x.com",
		Username:   "alice",
		TemplateID: &missing,
	})

	assert.True(t, result.Success)
	require.Len(t, primary.sent, 1)
	assert.Equal(t, "org subject", primary.sent[0].Subject)
}

func TestDispatch_HardcodedFallbackRenders(t *testing.T) {
	primary := &stubTransport{}
	d := newTestDispatcher(primary, &stubTransport{}, nil)

	result := d.Dispatch(context.Background(), Request{
		Kind:     KindWelcome,
		Email:    "a@x.com",
		Username: "alice",
		Password: "pw123",
	})

	assert.True(t, result.Success)
	require.Len(t, primary.sent, 1)
	assert.Contains(t, primary.sent[0].Text, "Dear alice")
	assert.Contains(t, primary.sent[0].Text, "Password: pw123")
	assert.Contains(t, primary.sent[0].Text, "Survey code: Not assigned")
	assert.NotContains(t, primary.sent[0].Text, "{{")
}

func TestBuildVariables_Greeting(t *testing.T) {
	tests := []struct {
		name      string
		firstName string
		username  string
		expected  string
	}{
		{
			name:     "no first name falls back to username",
			username: "alice",
			expected: "Dear alice",
		},
		{
			name:      "first name preferred",
			firstName: "Alice",
			username:  "alice",
			expected:  "Dear Alice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := buildVariables(Request{Username: tt.username, FirstName: tt.firstName})
			assert.Equal(t, tt.expected, vars["greeting"])
		})
	}
}

func TestBuildVariables_OptionalClauses(t *testing.T) {
	deadline := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	vars := buildVariables(Request{
		Username:         "alice",
		OrganizationName: "Acme Health",
		AssignedBy:       "Dr. Smith",
		Deadline:         &deadline,
	})

	assert.Equal(t, " at Acme Health", vars["org_text"])
	assert.Equal(t, " by Dr. Smith", vars["assigned_by_text"])
	assert.Equal(t, " by March 15, 2026", vars["deadline_text"])

	// Absent facts produce empty strings, not placeholders.
	empty := buildVariables(Request{Username: "alice"})
	assert.Equal(t, "", empty["org_text"])
	assert.Equal(t, "", empty["assigned_by_text"])
	assert.Equal(t, "", empty["deadline_text"])
}
