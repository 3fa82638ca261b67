package tweetexport

import (
	"strings"
	"time"
)

// ButtonPosition is where the host UI places its per-tweet export button.
type ButtonPosition string

// Supported button positions.
const (
	ButtonTopRight    ButtonPosition = "top-right"
	ButtonTopLeft     ButtonPosition = "top-left"
	ButtonBottomRight ButtonPosition = "bottom-right"
	ButtonBottomLeft  ButtonPosition = "bottom-left"
)

// Settings bounds.
const (
	MinMaxTweets = 1
	MaxMaxTweets = 10000
	MinAPIDelay  = 100
	MaxAPIDelay  = 5000
)

// Settings are the user options read from the external settings store.
// The engine never writes them back.
type Settings struct {
	IncludeMedia        bool           `json:"includeMedia" yaml:"includeMedia"`
	IncludeReplies      bool           `json:"includeReplies" yaml:"includeReplies"`
	IncludeRetweets     bool           `json:"includeRetweets" yaml:"includeRetweets"`
	IncludeMetrics      bool           `json:"includeMetrics" yaml:"includeMetrics"`
	MaxTweets           int            `json:"maxTweets" yaml:"maxTweets"`
	APIDelay            int            `json:"apiDelay" yaml:"apiDelay"` // milliseconds
	FilenamePattern     string         `json:"filenamePattern" yaml:"filenamePattern"`
	ButtonPosition      ButtonPosition `json:"buttonPosition" yaml:"buttonPosition"`
	EnableBulkSelection bool           `json:"enableBulkSelection" yaml:"enableBulkSelection"`
	EnableDebugMode     bool           `json:"enableDebugMode" yaml:"enableDebugMode"`
}

// DefaultSettings returns the settings used when the store holds none.
func DefaultSettings() *Settings {
	return &Settings{
		IncludeMedia:        true,
		IncludeReplies:      true,
		IncludeRetweets:     false,
		IncludeMetrics:      true,
		MaxTweets:           1000,
		APIDelay:            1000,
		FilenamePattern:     "tweets_{username}_{date}",
		ButtonPosition:      ButtonTopRight,
		EnableBulkSelection: true,
		EnableDebugMode:     false,
	}
}

// Validate returns an error if any option is out of range.
func (s *Settings) Validate() error {
	if s.MaxTweets < MinMaxTweets || s.MaxTweets > MaxMaxTweets {
		return Errorf(EINVALID, "maxTweets must be between %d and %d", MinMaxTweets, MaxMaxTweets)
	}
	if s.APIDelay < MinAPIDelay || s.APIDelay > MaxAPIDelay {
		return Errorf(EINVALID, "apiDelay must be between %d and %d milliseconds", MinAPIDelay, MaxAPIDelay)
	}
	if !strings.Contains(s.FilenamePattern, "{date}") {
		return Errorf(EINVALID, "filenamePattern must include {date} placeholder")
	}
	switch s.ButtonPosition {
	case ButtonTopRight, ButtonTopLeft, ButtonBottomRight, ButtonBottomLeft:
	default:
		return Errorf(EINVALID, "unknown buttonPosition %q", s.ButtonPosition)
	}
	return nil
}

// Delay returns APIDelay as a duration.
func (s *Settings) Delay() time.Duration {
	return time.Duration(s.APIDelay) * time.Millisecond
}

// Criteria returns filter criteria carrying the settings' content options
// and the given date bounds.
func (s *Settings) Criteria(dateFrom, dateTo string) FilterCriteria {
	return FilterCriteria{
		DateFrom:        dateFrom,
		DateTo:          dateTo,
		IncludeReplies:  s.IncludeReplies,
		IncludeRetweets: s.IncludeRetweets,
		IncludeMedia:    s.IncludeMedia,
	}
}
