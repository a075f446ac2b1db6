package rsi

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/calriss/corsair/internal/models"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture HTML: %v", err)
	}
	return doc
}

const profileFixture = `
<html><body>
<div class="profile">
  <div class="thumb"><img src="/media/avatar.jpg"></div>
  <div class="entry-handle"><span class="value">BlackFlagBart</span></div>
  <div class="entry-enlisted"><span class="value">Jan 3, 2951</span></div>
  <div class="entry-location"><span class="value">Stanton, Crusader</span></div>
</div>
</body></html>`

func TestParseProfile(t *testing.T) {
	profile := parseProfile(docFrom(t, profileFixture), "blackflagbart", "https://example.com")

	if profile.Handle != "BlackFlagBart" {
		t.Errorf("handle = %q, want display-cased handle from the page", profile.Handle)
	}
	if profile.Enlisted != "Jan 3, 2951" {
		t.Errorf("enlisted = %q", profile.Enlisted)
	}
	if profile.Location != "Stanton, Crusader" {
		t.Errorf("location = %q", profile.Location)
	}
	if profile.AvatarURL != "https://example.com/media/avatar.jpg" {
		t.Errorf("avatar = %q", profile.AvatarURL)
	}
}

func TestParseProfileFallsBackToRequestedHandle(t *testing.T) {
	profile := parseProfile(docFrom(t, `<html><body></body></html>`), "ghost", "https://example.com")
	if profile.Handle != "ghost" {
		t.Errorf("handle = %q, want requested handle", profile.Handle)
	}
}

const orgsFixture = `
<html><body>
<div class="main-org">
  <div class="org-block">
    <a href="/orgs/CORSAIR"><img src="/media/corsair.png"></a>
    <span class="org-name">Corsair Fleet</span>
    <span class="org-rank">Quartermaster</span>
    <span class="org-members">312 members</span>
  </div>
</div>
<div class="affiliated-orgs">
  <div class="org-block visibility-R">
    <span class="org-name">Should Never Surface</span>
  </div>
  <div class="org-block">
    <a href="https://robertsspaceindustries.com/orgs/TRADERS/members"></a>
    <span class="org-name">Free Traders</span>
    <span class="org-members">1,204 members</span>
  </div>
</div>
</body></html>`

func TestParseOrganizations(t *testing.T) {
	profile := &models.ProfileRecord{Handle: "bart"}
	parseOrganizations(docFrom(t, orgsFixture), profile, "https://example.com")

	if profile.MainOrg == nil {
		t.Fatal("main org missing")
	}
	main := profile.MainOrg
	if main.Name != "Corsair Fleet" || main.SID != "CORSAIR" || main.Rank != "Quartermaster" {
		t.Errorf("main org = %+v", main)
	}
	if main.MemberCount != 312 {
		t.Errorf("member count = %d, want 312", main.MemberCount)
	}
	if main.URL != "https://example.com/orgs/CORSAIR" {
		t.Errorf("org URL = %q", main.URL)
	}
	if main.IsRedacted {
		t.Error("main org should not be redacted")
	}

	if len(profile.AffiliatedOrgs) != 2 {
		t.Fatalf("got %d affiliated orgs, want 2", len(profile.AffiliatedOrgs))
	}

	// Redacted block: every identifying field is the sentinel, nothing from
	// the markup leaks through.
	redacted := profile.AffiliatedOrgs[0]
	if !redacted.IsRedacted {
		t.Fatal("first affiliate should be redacted")
	}
	if redacted.Name != models.Redacted || redacted.SID != models.Redacted {
		t.Errorf("redacted org leaked fields: %+v", redacted)
	}

	traders := profile.AffiliatedOrgs[1]
	if traders.SID != "TRADERS" || traders.MemberCount != 1204 {
		t.Errorf("traders = %+v", traders)
	}
}

func TestVisibleOrgsSkipsRedacted(t *testing.T) {
	redacted := models.RedactedOrgRef()
	profile := &models.ProfileRecord{
		Handle:         "bart",
		MainOrg:        &redacted,
		AffiliatedOrgs: []models.OrgRef{{Name: "Free Traders", SID: "TRADERS"}, models.RedactedOrgRef()},
	}

	visible := profile.VisibleOrgs()
	if len(visible) != 1 || visible[0].SID != "TRADERS" {
		t.Errorf("visible orgs = %+v, want only TRADERS", visible)
	}
}

func TestSIDFromLink(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"/orgs/CORSAIR", "CORSAIR"},
		{"/orgs/CORSAIR/members", "CORSAIR"},
		{"https://robertsspaceindustries.com/orgs/TRADERS", "TRADERS"},
		{"http://robertsspaceindustries.com/orgs/MINERS", "MINERS"},
		{"/citizens", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sidFromLink(tt.href); got != tt.want {
			t.Errorf("sidFromLink(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestHasNotFoundMarker(t *testing.T) {
	if !hasNotFoundMarker(docFrom(t, `<html><body><div class="not-found">No results</div></body></html>`)) {
		t.Error("class marker not detected")
	}
	if !hasNotFoundMarker(docFrom(t, `<html><body><div id="not-found"></div></body></html>`)) {
		t.Error("id marker not detected")
	}
	if hasNotFoundMarker(docFrom(t, profileFixture)) {
		t.Error("false positive on a normal profile page")
	}
}
