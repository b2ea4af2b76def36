package domain_test

import (
	"strings"
	"testing"

	"github.com/SscSPs/holistic_money/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestCommentsTableNameFor(t *testing.T) {
	tests := []struct {
		name       string
		clientName string
		want       string
	}{
		{name: "simple", clientName: "Acme", want: "acme_comments"},
		{name: "spaces collapse", clientName: "Acme  Widgets   Ltd", want: "acme_widgets_ltd_comments"},
		{name: "punctuation dropped", clientName: "O'Brien & Sons, Inc.", want: "obrien__sons_inc_comments"},
		{name: "leading digit", clientName: "3M", want: "client_3m_comments"},
		{name: "only symbols", clientName: "!!!", want: "client__comments"},
		{name: "surrounding whitespace", clientName: "  Beta Co  ", want: "beta_co_comments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.CommentsTableNameFor(tt.clientName))
		})
	}
}

func TestCommentsTableNameFor_TruncatesToIdentifierLimit(t *testing.T) {
	got := domain.CommentsTableNameFor(strings.Repeat("a", 100))
	assert.Len(t, got, 63)
	assert.True(t, strings.HasSuffix(got, "_comments"))
}

func TestCommentsTableNameWithSuffix(t *testing.T) {
	assert.Equal(t, "acme_corp_1a2b3c_comments", domain.CommentsTableNameWithSuffix("acme_corp_comments", "1a2b3c"))

	long := domain.CommentsTableNameFor(strings.Repeat("b", 100))
	got := domain.CommentsTableNameWithSuffix(long, "1a2b3c")
	assert.Len(t, got, 63)
	assert.True(t, strings.HasSuffix(got, "_1a2b3c_comments"))
	assert.NotEqual(t, long, got)
}

func TestClientStatus_IsValid(t *testing.T) {
	assert.True(t, domain.ClientStatusActive.IsValid())
	assert.True(t, domain.ClientStatusInactive.IsValid())
	assert.False(t, domain.ClientStatus("archived").IsValid())
}

func TestUserRole_IsValid(t *testing.T) {
	assert.True(t, domain.RoleAdmin.IsValid())
	assert.True(t, domain.RoleViewer.IsValid())
	assert.False(t, domain.UserRole("root").IsValid())
	assert.True(t, domain.User{Role: domain.RoleAdmin}.IsAdmin())
	assert.False(t, domain.User{Role: domain.RoleUser}.IsAdmin())
}
