package metadata

import (
	"net/url"
	"regexp"
	"strings"
)

// Kind is the lookup route a reference takes first.
type Kind int

// Reference kinds in detection priority order.
const (
	KindTitle Kind = iota
	KindDOI
	KindArxiv
)

func (k Kind) String() string {
	switch k {
	case KindArxiv:
		return "arxiv"
	case KindDOI:
		return "doi"
	default:
		return "title"
	}
}

var (
	doiPattern = regexp.MustCompile(`(?i)10\.\d{4,9}/[-._;()/:A-Z0-9]+`)

	// New-style ids (1712.09913) and old-style archive ids (hep-th/9901001,
	// math.GT/0309136), optionally followed by a version and ".pdf".
	arxivPattern = regexp.MustCompile(
		`(?i)arxiv\.org/(?:abs|pdf)/(\d{4}\.\d{4,5}|[a-z-]+(?:\.[a-z]{2})?/\d{7})(?:v\d+)?(?:\.pdf)?(?:[?#/]|$)`,
	)
)

// ExtractDOI URL-decodes ref and returns the first DOI-shaped substring.
func ExtractDOI(ref string) (string, bool) {
	decoded, err := url.PathUnescape(ref)
	if err != nil {
		decoded = ref
	}

	doi := doiPattern.FindString(decoded)

	return doi, doi != ""
}

// ExtractArxivID returns the version-less arXiv identifier from an
// arxiv.org abs or pdf link.
func ExtractArxivID(ref string) (string, bool) {
	m := arxivPattern.FindStringSubmatch(strings.TrimSpace(ref))
	if m == nil {
		return "", false
	}

	return m[1], true
}

// Classify decides the first lookup route for ref.
func Classify(ref string) Kind {
	if _, ok := ExtractArxivID(ref); ok {
		return KindArxiv
	}

	if _, ok := ExtractDOI(ref); ok {
		return KindDOI
	}

	return KindTitle
}
