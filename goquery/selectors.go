package goquery

import "github.com/fwojciec/tweetexport"

// Timeline DOM selectors.
// The host page changes its markup often; every structural pattern the
// extractor and scanner rely on lives here.

// Candidate matchers, tried in order: attribute, role, tag.
const (
	CandidateByTestID = `[data-testid="tweet"]`
	CandidateByRole   = `[role="article"]`
	CandidateByTag    = `article`
)

// CandidateSelectors lists the candidate matchers in the order they are tried.
var CandidateSelectors = []string{CandidateByTestID, CandidateByRole, CandidateByTag}

// Identity and links.
const (
	StatusLink      = `a[href*="/status/"]`
	TweetIDAttr     = tweetexport.TweetIDAttribute
	TweetIDSelector = `[` + TweetIDAttr + `]`
)

// Text containers.
var textSelectors = []string{
	`[data-testid="tweetText"]`,
	`div[lang]`,
	`.tweet-text`,
	`p`,
}

// Author containers.
const userName = `[data-testid="User-Name"]`

var (
	nameSelectors = []string{
		userName + ` a`,
		userName + ` span`,
		`div[dir="ltr"] span`,
		`.fullname`,
		`strong`,
	}
	usernameSelectors = []string{
		userName + ` a[href^="/"]`,
		`div[dir="ltr"] a[href^="/"]`,
		`.username`,
		`span[dir="ltr"]`,
	}
	profileImageSelectors = []string{
		`img[src*="profile"]`,
		`img[alt*="profile"]`,
		`img`,
	}
)

// Time containers.
var timeSelectors = []string{
	`time`,
	StatusLink + ` time`,
	`[datetime]`,
}

// Engagement counters.
var (
	replySelectors   = []string{`[data-testid="reply"]`, `[aria-label*="reply"]`}
	retweetSelectors = []string{`[data-testid="retweet"]`, `[aria-label*="retweet"]`}
	likeSelectors    = []string{`[data-testid="like"]`, `[aria-label*="like"]`}
	viewSelectors    = []string{`[aria-label*="view"]`, `[data-testid="view"]`, `a[href*="/analytics"]`}
)

// Media.
const (
	MediaImage  = `img[src*="pbs.twimg.com"]`
	MediaVideo  = `video`
	VideoSource = `source[src]`
)
