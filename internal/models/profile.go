package models

// Redacted is the sentinel stored in every identifying field of an org
// whose visibility settings hide it from the profile scrape. A redacted
// SID is not usable as a join key.
const Redacted = "REDACTED"

// OrgRef is one organization block from a citizen's organizations page.
type OrgRef struct {
	Name        string `json:"name"`
	SID         string `json:"sid"`
	Rank        string `json:"rank"`
	MemberCount int    `json:"member_count"`
	URL         string `json:"url"`
	LogoURL     string `json:"logo_url"`
	IsRedacted  bool   `json:"is_redacted"`
}

// RedactedOrgRef returns the sentinel OrgRef used for hidden org blocks.
func RedactedOrgRef() OrgRef {
	return OrgRef{
		Name:       Redacted,
		SID:        Redacted,
		Rank:       Redacted,
		IsRedacted: true,
	}
}

// ProfileRecord is a scraped citizen profile with its org membership chain.
type ProfileRecord struct {
	Handle         string   `json:"handle"`
	Enlisted       string   `json:"enlisted"`
	Location       string   `json:"location"`
	AvatarURL      string   `json:"avatar_url"`
	MainOrg        *OrgRef  `json:"main_org,omitempty"`
	AffiliatedOrgs []OrgRef `json:"affiliated_orgs"`
}

// VisibleOrgs returns the main org (if present and visible) followed by all
// visible affiliated orgs. Redacted entries are excluded.
func (p *ProfileRecord) VisibleOrgs() []OrgRef {
	var orgs []OrgRef
	if p.MainOrg != nil && !p.MainOrg.IsRedacted {
		orgs = append(orgs, *p.MainOrg)
	}
	for _, org := range p.AffiliatedOrgs {
		if !org.IsRedacted {
			orgs = append(orgs, org)
		}
	}
	return orgs
}
