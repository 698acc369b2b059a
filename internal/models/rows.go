package models

import "strconv"

// Download sections that remote rows may target.
const (
	DownloadsAdmissions = "admissions"
	DownloadsPolicies   = "policies"
)

// Rows as stored in the hosted table store. Ordering is requested from the
// store (sort_order ascending); callers never re-sort.

type Announcement struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Date      string `json:"date"`
	Tag       string `json:"tag"`
	IsActive  bool   `json:"is_active"`
	SortOrder int    `json:"sort_order"`
}

type Download struct {
	Section     string `json:"section"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	FileType    string `json:"file_type"`
	IsActive    bool   `json:"is_active"`
	SortOrder   int    `json:"sort_order"`
}

type Card struct {
	PageKey    string `json:"page_key"`
	SectionKey string `json:"section_key"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Href       string `json:"href"`
	LinkLabel  string `json:"link_label"`
	Icon       string `json:"icon"`
	Image      string `json:"image"`
	IsActive   bool   `json:"is_active"`
	SortOrder  int    `json:"sort_order"`
}

type HeroNotice struct {
	PageKey   string `json:"page_key"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	LinkLabel string `json:"link_label"`
	LinkHref  string `json:"link_href"`
	IsActive  bool   `json:"is_active"`
	SortOrder int    `json:"sort_order"`
}

type SiteSetting struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	IsActive  bool   `json:"is_active"`
	SortOrder int    `json:"sort_order"`
}

// SiteSettings is the flattened key→value view of the settings table.
type SiteSettings map[string]string

// Settings flattens rows; later rows win on duplicate keys.
func Settings(rows []SiteSetting) SiteSettings {
	out := make(SiteSettings, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out
}

// Lookup reports the value for key and whether the key is present at all.
func (s SiteSettings) Lookup(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// SectionIndexKey is the default key of the section at index.
func SectionIndexKey(index int) string {
	return "section_" + strconv.Itoa(index)
}

// CardGroupKey is the composite key cards are grouped under.
func CardGroupKey(pageKey, sectionKey string) string {
	return pageKey + "::" + sectionKey
}
