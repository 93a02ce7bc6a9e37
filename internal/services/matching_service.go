package services

import (
	"context"
	"net/url"
	"strings"

	apperrors "github.com/justsurfingit/job-trends-api/internal/errors"
	"github.com/justsurfingit/job-trends-api/internal/models"
	"gorm.io/gorm"
)

// minMatchLen skips very short company names, which would otherwise match
// almost anything ("X", "Go").
const minMatchLen = 3

type MatcherService struct {
	DB *gorm.DB
}

func NewMatcherService(db *gorm.DB) *MatcherService {
	return &MatcherService{DB: db}
}

// MatchCompany finds the tracked company an extracted posting belongs to.
// It returns nil when nothing matches.
//
// Rules, in order:
//  1. the extracted name equals a company name, ignoring case
//  2. the extracted name contains a company name ("Stripe, Inc." -> Stripe)
//  3. the posting URL host contains a company name (jobs.stripe.com -> Stripe)
//
// Rules 2 and 3 prefer the longest company name that matches.
func (s *MatcherService) MatchCompany(ctx context.Context, name, postingURL string) (*models.Company, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	host := postingHost(postingURL)
	if name == "" && host == "" {
		return nil, nil
	}

	var companies []models.Company
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&companies).Error; err != nil {
		return nil, apperrors.FromStore("failed to load companies", err)
	}

	if name != "" {
		for i := range companies {
			if strings.ToLower(companies[i].Name) == name {
				return &companies[i], nil
			}
		}
	}

	if best := longestMatch(companies, name, strings.ToLower); best != nil {
		return best, nil
	}
	return longestMatch(companies, host, compactName), nil
}

// longestMatch returns the company whose key(name) is the longest substring
// of text.
func longestMatch(companies []models.Company, text string, key func(string) string) *models.Company {
	if text == "" {
		return nil
	}
	var best *models.Company
	bestLen := 0
	for i := range companies {
		k := key(companies[i].Name)
		if len(k) < minMatchLen || len(k) <= bestLen {
			continue
		}
		if strings.Contains(text, k) {
			best = &companies[i]
			bestLen = len(k)
		}
	}
	return best
}

// postingHost turns https://www.careers.acme.com/jobs/1 into careers.acme.com.
func postingHost(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// compactName lowercases and drops everything but letters and digits, so
// "Goldman Sachs" can match goldmansachs.com.
func compactName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
