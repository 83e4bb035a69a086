package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"surveyhub/internal/logger"
	. "surveyhub/internal/models"
)

var ErrNoResponses = errors.New("no responses available for analysis")

// Completer, Embedder and ResponseSource are the slices of their backing
// types the service needs; tests substitute stubs.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

type ResponseSource interface {
	GetByStatus(ctx context.Context, status string) ([]*SurveyResponse, error)
}

// Service runs the offline analysis passes over completed survey responses:
// sentiment labeling, topic clustering and the question-answering flow.
type Service struct {
	responseRepo ResponseSource
	completer    Completer
	embedder     Embedder
	cache        *AnalysisCache
	now          func() time.Time
	log          logger.Logger
}

func NewService(responseRepo ResponseSource, completer Completer, embedder Embedder, cache *AnalysisCache) *Service {
	return &Service{
		responseRepo: responseRepo,
		completer:    completer,
		embedder:     embedder,
		cache:        cache,
		now:          func() time.Time { return time.Now().UTC() },
		log:          logger.New("analytics"),
	}
}

// Sentiment labels every completed response positive, neutral or negative
// and refreshes the shared cache with the result.
func (s *Service) Sentiment(ctx context.Context) (map[string]string, error) {
	log := s.log.Function("Sentiment")

	responses, err := s.completedResponses(ctx)
	if err != nil {
		return nil, err
	}

	labels := make(map[string]string, len(responses))
	for _, response := range responses {
		text := freeText(response.Answers)
		if text == "" {
			continue
		}

		label, err := s.completer.Complete(ctx,
			"You label survey feedback. Reply with exactly one word: positive, neutral or negative.",
			text,
		)
		if err != nil {
			return nil, log.Err("failed to label response", err, "responseID", response.ID)
		}
		labels[response.ID] = normalizeLabel(label)
	}

	s.refreshCache(ctx, func(results *AnalysisResults) {
		results.Sentiments = labels
	})

	return labels, nil
}

// Topics embeds the free-text answers of completed responses and groups them
// into k clusters.
func (s *Service) Topics(ctx context.Context, k int) (map[string]int, error) {
	log := s.log.Function("Topics")

	responses, err := s.completedResponses(ctx)
	if err != nil {
		return nil, err
	}

	var ids []string
	var texts []string
	for _, response := range responses {
		if text := freeText(response.Answers); text != "" {
			ids = append(ids, response.ID)
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		return nil, ErrNoResponses
	}

	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, log.Err("failed to embed responses", err)
	}

	assignments := clusterVectors(vectors, k, s.now().UnixNano())

	topics := make(map[string]int, len(ids))
	for i, id := range ids {
		topics[id] = assignments[i]
	}

	s.refreshCache(ctx, func(results *AnalysisResults) {
		results.Topics = topics
	})

	return topics, nil
}

// Ask answers a free-form question about the collected responses. Responses
// are filtered by keyword overlap with the question, then handed to the
// completion model as context.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	log := s.log.Function("Ask")

	responses, err := s.completedResponses(ctx)
	if err != nil {
		return "", err
	}

	keywords := extractKeywords(question)
	matched := filterByKeywords(responses, keywords)
	if len(matched) == 0 {
		matched = responses
	}

	var b strings.Builder
	for i, response := range matched {
		if i >= 50 {
			break
		}
		fmt.Fprintf(&b, "Response %d: %s\n", i+1, freeText(response.Answers))
	}

	answer, err := s.completer.Complete(ctx,
		"You answer questions about survey results using only the responses provided.",
		fmt.Sprintf("Responses:\n%s\nQuestion: %s", b.String(), question),
	)
	if err != nil {
		return "", log.Err("failed to answer question", err)
	}
	return answer, nil
}

func (s *Service) completedResponses(ctx context.Context) ([]*SurveyResponse, error) {
	responses, err := s.responseRepo.GetByStatus(ctx, ResponseStatusCompleted)
	if err != nil {
		return nil, err
	}
	if len(responses) == 0 {
		return nil, ErrNoResponses
	}
	return responses, nil
}

func (s *Service) refreshCache(ctx context.Context, apply func(*AnalysisResults)) {
	log := s.log.Function("refreshCache")

	if s.cache == nil {
		return
	}

	results, found := s.cache.Get(ctx)
	if !found {
		results = &AnalysisResults{}
	}
	apply(results)
	results.ComputedAt = s.now()

	if err := s.cache.Refresh(ctx, results); err != nil {
		log.Warn("failed to refresh analysis cache", "error", err)
	}
}

// freeText joins the string-valued answers of a response, sorted by key so
// output is stable.
func freeText(answers JSONMap) string {
	keys := make([]string, 0, len(answers))
	for key := range answers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		if text, ok := answers[key].(string); ok && strings.TrimSpace(text) != "" {
			parts = append(parts, strings.TrimSpace(text))
		}
	}
	return strings.Join(parts, " ")
}

func normalizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.Contains(label, "positive"):
		return "positive"
	case strings.Contains(label, "negative"):
		return "negative"
	default:
		return "neutral"
	}
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "about": true,
	"did": true, "do": true, "for": true, "how": true, "in": true,
	"is": true, "of": true, "on": true, "or": true, "the": true,
	"to": true, "what": true, "which": true, "who": true, "with": true,
}

func extractKeywords(question string) []string {
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(question)) {
		word = strings.Trim(word, ".,!?\"'")
		if len(word) > 2 && !stopwords[word] {
			keywords = append(keywords, word)
		}
	}
	return keywords
}

func filterByKeywords(responses []*SurveyResponse, keywords []string) []*SurveyResponse {
	if len(keywords) == 0 {
		return nil
	}

	var matched []*SurveyResponse
	for _, response := range responses {
		text := strings.ToLower(freeText(response.Answers))
		for _, keyword := range keywords {
			if strings.Contains(text, keyword) {
				matched = append(matched, response)
				break
			}
		}
	}
	return matched
}
