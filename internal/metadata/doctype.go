package metadata

import (
	"net/url"
	"strings"

	"github.com/persistorai/papergraph/internal/models"
)

// researchHosts are hostname fragments that mark a link as a research
// artifact worth resolving.
var researchHosts = []string{
	"nature.com",
	"arxiv.org",
	"pubmed.ncbi.nlm.nih.gov",
	"sciencedirect.com",
	"semanticscholar.org",
	"springer.com",
	"jstor.org",
	"wiley.com",
	"tandfonline.com",
	"mdpi",
	".edu",
	"ieee",
	"doc",
}

// InferDocType guesses the kind of document behind link from its host and
// path. Links that do not parse as absolute URLs are "other".
func InferDocType(link string) models.DocTypeInfo {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return models.DocTypeInfo{Label: "Other", Type: models.DocTypeOther}
	}

	host := strings.ToLower(u.Hostname())
	path := strings.ToLower(u.Path)

	if strings.Contains(host, "youtube.com") || strings.Contains(host, "youtu.be") {
		return models.DocTypeInfo{Label: "YouTube Video", Type: models.DocTypeVideo}
	}

	research := isResearchHost(host)

	if strings.HasSuffix(path, ".pdf") {
		t := models.DocTypePDF
		if research {
			t = models.DocTypeWhitepaper
		}

		return models.DocTypeInfo{Label: "PDF Document", Type: t}
	}

	t := models.DocTypeWebpage
	if research {
		t = models.DocTypeWhitepaper
	}

	return models.DocTypeInfo{Label: "Webpage", Type: t}
}

// ShouldResolve reports whether link points at something the resolver
// should be asked about.
func ShouldResolve(link string) bool {
	return InferDocType(link).Type == models.DocTypeWhitepaper
}

func isResearchHost(host string) bool {
	for _, h := range researchHosts {
		if strings.Contains(host, h) {
			return true
		}
	}

	return false
}
