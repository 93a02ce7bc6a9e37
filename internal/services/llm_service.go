package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/justsurfingit/job-trends-api/internal/config"
	"github.com/justsurfingit/job-trends-api/internal/dtos"
	apperrors "github.com/justsurfingit/job-trends-api/internal/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

const maxExtractionInput = 20000

const jobExtractionPrompt = `
You are an expert Job Data Extraction Agent. Your task is to analyze the provided raw text from a job posting and extract structured data.

### INSTRUCTIONS:
1. **Analyze** the text to identify the core job details.
2. **Ignore** navigation menus, footers, "similar jobs" lists, and site advertisements.
3. **Extract** the following fields strictly.
4. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "job_title": "Job title (e.g., Senior Data Engineer)",
    "location": "Job location or 'Remote'",
    "company_name": "Name of the company",
    "min_salary": "Lower bound of the yearly salary as an integer, or null",
    "max_salary": "Upper bound of the yearly salary as an integer, or null",
    "salary_currency": "ISO currency code such as USD, or null",
    "experience_level": "One of EN, MI, SE, EX, or null",
    "employment_type": "One of FT, PT, CT, FL, or null",
    "work_setting": "One of Remote, Hybrid, In-person, or null",
    "job_category": "Broad category such as Data Engineering, or null",
    "skills": ["Array", "of", "technologies", "mentioned"]
}

### CONSTRAINT:
If a piece of information is missing, set the value to null. Do not hallucinate or guess.

### RAW CONTENT:
%s
`

type LLMService struct {
	// Client is nil when no API key is configured; extraction is then disabled.
	Client llms.Model
	Logger *zap.Logger
}

// NewLLMService initializes the Gemini client when GEMINI_API_KEY is set.
func NewLLMService(cfg *config.Config, logger *zap.Logger) (*LLMService, error) {
	s := &LLMService{Logger: logger}
	if cfg.GeminiAPIKey == "" {
		logger.Info("GEMINI_API_KEY not set, job extraction disabled")
		return s, nil
	}

	llm, err := googleai.New(context.Background(),
		googleai.WithAPIKey(cfg.GeminiAPIKey),
		googleai.WithDefaultModel(cfg.GeminiModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	s.Client = llm
	return s, nil
}

func (s *LLMService) Enabled() bool {
	return s != nil && s.Client != nil
}

// ExtractJobDetails turns raw posting text into a draft create request. The
// draft is not persisted.
func (s *LLMService) ExtractJobDetails(ctx context.Context, rawText string) (*dtos.JobCreateRequest, error) {
	if !s.Enabled() {
		return nil, apperrors.Unavailable("job extraction is not configured", nil)
	}

	ctx, span := tracer.Start(ctx, "LLMService.ExtractJobDetails")
	defer span.End()

	rawText = truncateUTF8(rawText, maxExtractionInput)

	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, fmt.Sprintf(jobExtractionPrompt, rawText))
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Unavailable("AI extraction failed", err)
	}

	var draft dtos.JobCreateRequest
	if err := json.Unmarshal([]byte(stripCodeFence(resp)), &draft); err != nil {
		s.Logger.Warn("extraction returned invalid JSON", zap.Error(err), zap.Int("response_len", len(resp)))
		return nil, apperrors.Internal("AI extraction returned invalid JSON", err)
	}
	draft.Skills = normalizeNames(draft.Skills)
	return &draft, nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// stripCodeFence removes a ```json ... ``` wrapper that models add despite
// being told not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
