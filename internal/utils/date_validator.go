package utils

import (
	"strconv"
	"strings"
	"time"
)

type DateFormat string

const (
	FormatISO8601     DateFormat = "2006-01-02T15:04:05Z07:00"
	FormatISO8601Date DateFormat = "2006-01-02"
	FormatUSDate      DateFormat = "01/02/2006"
	FormatUnixTime    DateFormat = "unix"
	FormatRFC3339     DateFormat = "2006-01-02T15:04:05Z"
	FormatShortMonth  DateFormat = "Jan 2, 2006"
)

type DateValidator struct {
	supportedFormats []DateFormat
	standardFormat   DateFormat
}

type ValidationResult struct {
	IsValid        bool
	DetectedFormat DateFormat
	ParsedTime     time.Time
	StandardFormat string
	OriginalValue  string
}

func NewDateValidator() *DateValidator {
	return &DateValidator{
		supportedFormats: []DateFormat{
			FormatISO8601,
			FormatISO8601Date,
			FormatUSDate,
			FormatRFC3339,
			FormatShortMonth,
		},
		standardFormat: FormatISO8601,
	}
}

// ValidateAndConvert parses the input against the supported formats, trying
// a Unix timestamp first, and reports the detected format alongside the
// parsed time.
func (dv *DateValidator) ValidateAndConvert(input string) ValidationResult {
	result := ValidationResult{
		IsValid:       false,
		OriginalValue: input,
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return result
	}

	if unixTime, err := strconv.ParseInt(input, 10, 64); err == nil {
		if unixTime > 0 && unixTime < 4102444800 { // 1970-2100
			parsedTime := time.Unix(unixTime, 0).UTC()
			result.IsValid = true
			result.DetectedFormat = FormatUnixTime
			result.ParsedTime = parsedTime
			result.StandardFormat = parsedTime.Format(string(dv.standardFormat))
			return result
		}
	}

	for _, format := range dv.supportedFormats {
		if parsedTime, err := time.Parse(string(format), input); err == nil {
			result.IsValid = true
			result.DetectedFormat = format
			result.ParsedTime = parsedTime
			result.StandardFormat = parsedTime.Format(string(dv.standardFormat))
			return result
		}
	}

	return result
}

func (dv *DateValidator) GetSupportedFormats() []DateFormat {
	return dv.supportedFormats
}
