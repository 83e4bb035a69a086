package analytics

import (
	"context"
	"strings"
	"testing"

	. "surveyhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResponses struct {
	responses []*SurveyResponse
}

func (s *stubResponses) GetByStatus(ctx context.Context, status string) ([]*SurveyResponse, error) {
	var out []*SurveyResponse
	for _, r := range s.responses {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

type stubCompleter struct {
	reply   string
	prompts []string
}

func (s *stubCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	s.prompts = append(s.prompts, user)
	return s.reply, nil
}

type stubEmbedder struct {
	vectors [][]float32
}

func (s *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return s.vectors[:len(texts)], nil
}

func completedResponse(id, text string) *SurveyResponse {
	r := &SurveyResponse{
		Status:  ResponseStatusCompleted,
		Answers: JSONMap{"feedback": text},
	}
	r.ID = id
	return r
}

func TestSentiment_LabelsCompletedResponses(t *testing.T) {
	repo := &stubResponses{responses: []*SurveyResponse{
		completedResponse("r1", "The facility was excellent"),
		completedResponse("r2", "Terrible experience overall"),
	}}
	completer := &stubCompleter{reply: "Positive."}

	service := NewService(repo, completer, nil, nil)

	labels, err := service.Sentiment(context.Background())
	require.NoError(t, err)

	assert.Len(t, labels, 2)
	assert.Equal(t, "positive", labels["r1"])
	assert.Len(t, completer.prompts, 2)
}

func TestSentiment_SkipsResponsesWithoutText(t *testing.T) {
	empty := &SurveyResponse{Status: ResponseStatusCompleted, Answers: JSONMap{"rating": 4.0}}
	empty.ID = "r1"
	repo := &stubResponses{responses: []*SurveyResponse{empty}}
	completer := &stubCompleter{reply: "neutral"}

	service := NewService(repo, completer, nil, nil)

	labels, err := service.Sentiment(context.Background())
	require.NoError(t, err)

	assert.Empty(t, labels)
	assert.Empty(t, completer.prompts)
}

func TestSentiment_NoCompletedResponses(t *testing.T) {
	pending := completedResponse("r1", "text")
	pending.Status = ResponseStatusPending
	repo := &stubResponses{responses: []*SurveyResponse{pending}}

	service := NewService(repo, &stubCompleter{}, nil, nil)

	_, err := service.Sentiment(context.Background())
	assert.ErrorIs(t, err, ErrNoResponses)
}

func TestTopics_GroupsSimilarResponses(t *testing.T) {
	repo := &stubResponses{responses: []*SurveyResponse{
		completedResponse("r1", "Parking was hard to find"),
		completedResponse("r2", "No parking spaces available"),
		completedResponse("r3", "Staff were friendly and helpful"),
	}}
	embedder := &stubEmbedder{vectors: [][]float32{
		{1, 0},
		{0.9, 0.1},
		{0, 1},
	}}

	service := NewService(repo, nil, embedder, nil)

	topics, err := service.Topics(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, topics, 3)
	assert.Equal(t, topics["r1"], topics["r2"])
	assert.NotEqual(t, topics["r1"], topics["r3"])
}

func TestAsk_FiltersContextByKeywords(t *testing.T) {
	repo := &stubResponses{responses: []*SurveyResponse{
		completedResponse("r1", "Parking was difficult"),
		completedResponse("r2", "Lunch options were great"),
	}}
	completer := &stubCompleter{reply: "Respondents struggled with parking."}

	service := NewService(repo, completer, nil, nil)

	answer, err := service.Ask(context.Background(), "What did people say about parking?")
	require.NoError(t, err)

	assert.Equal(t, "Respondents struggled with parking.", answer)
	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], "Parking was difficult")
	assert.NotContains(t, completer.prompts[0], "Lunch options were great")
}

func TestAsk_FallsBackToAllResponsesWithoutMatches(t *testing.T) {
	repo := &stubResponses{responses: []*SurveyResponse{
		completedResponse("r1", "Lunch options were great"),
	}}
	completer := &stubCompleter{reply: "ok"}

	service := NewService(repo, completer, nil, nil)

	_, err := service.Ask(context.Background(), "What about parking?")
	require.NoError(t, err)

	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], "Lunch options were great")
}

func TestExtractKeywords_DropsStopwordsAndShortWords(t *testing.T) {
	keywords := extractKeywords("What did people say about the parking lot?")

	assert.NotContains(t, keywords, "the")
	assert.NotContains(t, keywords, "what")
	assert.Contains(t, keywords, "parking")
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "positive", normalizeLabel(" Positive\n"))
	assert.Equal(t, "negative", normalizeLabel("NEGATIVE"))
	assert.Equal(t, "neutral", normalizeLabel("somewhat mixed"))
}

func TestFreeText_StableOrderAndStringsOnly(t *testing.T) {
	answers := JSONMap{
		"b_comment": "second",
		"a_comment": "first",
		"rating":    5.0,
	}

	text := freeText(answers)
	assert.Equal(t, "first second", text)
	assert.False(t, strings.Contains(text, "5"))
}
