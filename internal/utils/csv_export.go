package utils

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"
	"time"

	. "surveyhub/internal/models"
)

// ResponsesToCSV flattens survey responses into CSV rows, one per response,
// with a stable union of answer keys as columns after the fixed fields.
func ResponsesToCSV(responses []*SurveyResponse) ([]byte, error) {
	answerKeys := map[string]bool{}
	for _, response := range responses {
		for key := range response.Answers {
			answerKeys[key] = true
		}
	}

	sortedKeys := make([]string, 0, len(answerKeys))
	for key := range answerKeys {
		sortedKeys = append(sortedKeys, key)
	}
	sort.Strings(sortedKeys)

	header := []string{"response_id", "user_id", "template_id", "status", "survey_code", "start_date", "end_date"}
	header = append(header, sortedKeys...)

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, response := range responses {
		row := []string{
			response.ID,
			response.UserID,
			response.TemplateID,
			response.Status,
			response.SurveyCode,
			formatDate(response.StartDate),
			formatDate(response.EndDate),
		}
		for _, key := range sortedKeys {
			row = append(row, answerString(response.Answers[key]))
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(string(FormatISO8601Date))
}

func answerString(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	// Non-string answers (numbers, bools) come from JSON decoding.
	switch v := value.(type) {
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}
