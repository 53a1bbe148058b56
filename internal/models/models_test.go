package models_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/persistorai/papergraph/internal/models"
)

func assertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func assertErrorContains(t *testing.T, err error, want string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}

	if !strings.Contains(err.Error(), want) {
		t.Errorf("expected error containing %q, got %q", want, err.Error())
	}
}

func TestEntry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		entry   models.Entry
		wantErr string
	}{
		{name: "valid", entry: models.Entry{Name: "Attention", Tag: "ML/NLP", Link: "https://arxiv.org/abs/1706.03762"}},
		{name: "valid without tag", entry: models.Entry{Name: "Notes"}},
		{name: "missing name", entry: models.Entry{Tag: "ML"}, wantErr: "name is required"},
		{name: "whitespace name", entry: models.Entry{Name: "   "}, wantErr: "name is required"},
		{name: "name too long", entry: models.Entry{Name: strings.Repeat("x", 1001)}, wantErr: "exceeds maximum length"},
		{name: "tag too long", entry: models.Entry{Name: "a", Tag: strings.Repeat("x", 1001)}, wantErr: "exceeds maximum length"},
		{name: "link too long", entry: models.Entry{Name: "a", Link: strings.Repeat("x", 4097)}, wantErr: "exceeds maximum length"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.entry.Validate()
			if tc.wantErr != "" {
				assertErrorContains(t, err, tc.wantErr)
				return
			}
			assertNoError(t, err)
		})
	}
}

func TestEntry_ValidateTrimsAndDefaultsOwner(t *testing.T) {
	e := models.Entry{Name: "  Paper ", Tag: " A/B ", Link: " https://x.org "}
	assertNoError(t, e.Validate())

	if e.Name != "Paper" || e.Tag != "A/B" || e.Link != "https://x.org" {
		t.Errorf("fields not trimmed: %+v", e)
	}

	if e.Owner != models.DefaultOwner {
		t.Errorf("Owner = %q, want %q", e.Owner, models.DefaultOwner)
	}
}

func TestEntry_ValidateMissingNameIsSentinel(t *testing.T) {
	e := models.Entry{}
	if err := e.Validate(); !errors.Is(err, models.ErrMissingName) {
		t.Errorf("expected ErrMissingName, got %v", err)
	}
}

func TestParseNodeType(t *testing.T) {
	tests := []struct {
		in     string
		want   models.NodeType
		wantOK bool
	}{
		{"TAG", models.NodeTypeTag, true},
		{"[TAG]", models.NodeTypeTag, true},
		{"tag", models.NodeTypeTag, true},
		{"DOCUMENT", models.NodeTypeDocument, true},
		{"[ENTRY]", models.NodeTypeDocument, true},
		{" entry ", models.NodeTypeDocument, true},
		{"person", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := models.ParseNodeType(tc.in)
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("ParseNodeType(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestTagRecordsFrom(t *testing.T) {
	nodes := []models.Node{
		{ID: "1", Type: models.NodeTypeTag, Title: "ML"},
		{ID: "2", Type: models.NodeTypeDocument, Title: "Paper"},
		{ID: "3", Type: models.NodeTypeTag, Title: "ML/Vision"},
	}

	got := models.TagRecordsFrom(nodes)
	want := []models.TagRecord{{ID: "1", Path: "ML"}, {ID: "3", Path: "ML/Vision"}}

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTagRecordsFrom_Empty(t *testing.T) {
	if got := models.TagRecordsFrom(nil); len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
}

func TestNewMetadataRecord(t *testing.T) {
	r := &models.LookupResult{
		Source:   models.SourceSemanticScholarByDOI,
		Title:    " Deep Learning ",
		Authors:  []string{"Yann LeCun", " ", "Yoshua Bengio"},
		Abstract: "  An abstract. ",
		Venue:    "Nature",
		Year:     2015,
		DOI:      "10.1038/nature14539",
	}

	got := models.NewMetadataRecord(r)

	if got.Title != "Deep Learning" {
		t.Errorf("Title = %q", got.Title)
	}

	if got.Authors != "Yann LeCun, Yoshua Bengio" {
		t.Errorf("Authors = %q", got.Authors)
	}

	if got.Abstract != "An abstract." {
		t.Errorf("Abstract = %q", got.Abstract)
	}

	if got.Publisher != "Nature" || got.Date != "2015" || got.DOI != "10.1038/nature14539" {
		t.Errorf("unexpected record: %+v", got)
	}

	if got.Source != models.SourceSemanticScholarByDOI {
		t.Errorf("Source = %q", got.Source)
	}
}

func TestNewMetadataRecord_FallsBackToPublishedDate(t *testing.T) {
	got := models.NewMetadataRecord(&models.LookupResult{PublishedDate: "2017-12-27T18:54:25Z"})
	if got.Date != "2017-12-27T18:54:25Z" {
		t.Errorf("Date = %q", got.Date)
	}
}

func TestLookupResult_HasUsableAbstract(t *testing.T) {
	tests := []struct {
		name string
		r    *models.LookupResult
		want bool
	}{
		{"nil", nil, false},
		{"empty", &models.LookupResult{}, false},
		{"whitespace", &models.LookupResult{Abstract: " \n\t "}, false},
		{"present", &models.LookupResult{Abstract: "x"}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.r.HasUsableAbstract(); got != tc.want {
				t.Errorf("HasUsableAbstract() = %v, want %v", got, tc.want)
			}
		})
	}
}
