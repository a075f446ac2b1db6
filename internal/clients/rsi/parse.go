package rsi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/calriss/corsair/internal/models"
)

// hasNotFoundMarker reports whether the page carries the upstream
// not-found marker. The site returns 200 for missing citizens.
func hasNotFoundMarker(doc *goquery.Document) bool {
	return doc.Find(".not-found, #not-found").Length() > 0
}

// parseProfile extracts the citizen block from a profile page. Every field
// is optional except the handle, which falls back to the requested one.
func parseProfile(doc *goquery.Document, handle, baseURL string) *models.ProfileRecord {
	profile := &models.ProfileRecord{Handle: handle}

	if h := entryValue(doc.Selection, "handle"); h != "" {
		profile.Handle = h
	}
	profile.Enlisted = entryValue(doc.Selection, "enlisted")
	profile.Location = entryValue(doc.Selection, "location")

	if src, ok := doc.Find(".profile .thumb img").First().Attr("src"); ok {
		profile.AvatarURL = absoluteURL(baseURL, src)
	}

	return profile
}

// entryValue reads the .value of a labeled profile entry.
func entryValue(sel *goquery.Selection, entry string) string {
	return strings.TrimSpace(sel.Find(".profile .entry-" + entry + " .value").First().Text())
}

// parseOrganizations extracts the main org block and zero or more
// affiliated org blocks into the profile.
func parseOrganizations(doc *goquery.Document, profile *models.ProfileRecord, baseURL string) {
	if main := doc.Find(".main-org .org-block").First(); main.Length() > 0 {
		org := parseOrgBlock(main, baseURL)
		profile.MainOrg = &org
	}

	doc.Find(".affiliated-orgs .org-block").Each(func(_ int, block *goquery.Selection) {
		profile.AffiliatedOrgs = append(profile.AffiliatedOrgs, parseOrgBlock(block, baseURL))
	})
}

// parseOrgBlock reads one org block. A visibility-R marker means the org is
// redacted: every identifying field gets the sentinel regardless of what
// the underlying markup carries.
func parseOrgBlock(block *goquery.Selection, baseURL string) models.OrgRef {
	if block.HasClass("visibility-R") || block.Find(".visibility-R").Length() > 0 {
		return models.RedactedOrgRef()
	}

	org := models.OrgRef{
		Name: strings.TrimSpace(block.Find(".org-name").First().Text()),
		Rank: strings.TrimSpace(block.Find(".org-rank").First().Text()),
	}

	if href, ok := block.Find("a").First().Attr("href"); ok {
		org.SID = sidFromLink(href)
	}
	if org.SID != "" {
		org.URL = fmt.Sprintf("%s/orgs/%s", strings.TrimSuffix(baseURL, "/"), org.SID)
	}

	if countText := block.Find(".org-members").First().Text(); countText != "" {
		org.MemberCount = parseMemberCount(countText)
	}

	if src, ok := block.Find("img").First().Attr("src"); ok {
		org.LogoURL = absoluteURL(baseURL, src)
	}

	return org
}

// sidFromLink extracts the SID as the second path segment of an org link
// ("/orgs/CORSAIR" or "/orgs/CORSAIR/members").
func sidFromLink(href string) string {
	if _, rest, ok := strings.Cut(href, "://"); ok {
		href = rest
	}
	if idx := strings.Index(href, "/"); idx >= 0 && !strings.HasPrefix(href, "/") {
		href = href[idx:]
	}
	segments := strings.Split(strings.Trim(href, "/"), "/")
	if len(segments) < 2 {
		return ""
	}
	return segments[1]
}

// parseMemberCount reads the first integer out of a member-count label
// ("312 members").
func parseMemberCount(s string) int {
	for _, field := range strings.Fields(s) {
		if n, err := strconv.Atoi(strings.ReplaceAll(field, ",", "")); err == nil {
			return n
		}
	}
	return 0
}

// absoluteURL resolves scraped relative asset paths against the site base.
func absoluteURL(baseURL, src string) string {
	src = strings.TrimSpace(src)
	if src == "" || strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return src
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(src, "/")
}
