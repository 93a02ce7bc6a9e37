package services

import (
	"context"
	"testing"

	"github.com/justsurfingit/job-trends-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchCompany(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"Stripe", "Goldman Sachs", "Go", "Meta", "Metabase"} {
		require.NoError(t, f.db.Create(&models.Company{Name: name}).Error)
	}
	matcher := NewMatcherService(f.db)

	tests := []struct {
		name       string
		extracted  string
		postingURL string
		want       string
	}{
		{"exact ignoring case", "stripe", "", "Stripe"},
		{"name contains company", "Stripe, Inc.", "", "Stripe"},
		{"longest contained name wins", "Metabase Inc", "", "Metabase"},
		{"url host", "", "https://jobs.stripe.com/listing/1", "Stripe"},
		{"url host without scheme", "", "www.goldmansachs.com/careers", "Goldman Sachs"},
		{"short names ignored", "Go Fund", "", ""},
		{"no match", "Acme", "https://acme.io", ""},
		{"nothing to match on", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := matcher.MatchCompany(context.Background(), tt.extracted, tt.postingURL)
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestPostingHost(t *testing.T) {
	assert.Equal(t, "careers.acme.com", postingHost("https://www.careers.acme.com/jobs/1"))
	assert.Equal(t, "acme.com", postingHost("acme.com"))
	assert.Equal(t, "", postingHost(""))
}
