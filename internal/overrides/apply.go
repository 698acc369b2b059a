package overrides

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/alexraskin/schoolsite/internal/models"
	"github.com/alexraskin/schoolsite/internal/render"
)

var ErrApply = errors.New("apply overrides")

// School setting keys and the field each one overwrites.
var schoolSettings = map[string]func(*models.School, string){
	"school_name":           func(s *models.School, v string) { s.Name = v },
	"school_tagline":        func(s *models.School, v string) { s.Tagline = v },
	"school_phone":          func(s *models.School, v string) { s.Phone = v },
	"school_email":          func(s *models.School, v string) { s.Email = v },
	"school_address":        func(s *models.School, v string) { s.Address = v },
	"school_hours_weekdays": func(s *models.School, v string) { s.Hours.Weekdays = v },
	"school_hours_weekend":  func(s *models.School, v string) { s.Hours.Weekend = v },
}

var sectionOverrideKey = regexp.MustCompile(`^section_override:([^:]+):(\d+)$`)

// Apply returns a copy of doc with p merged in. On any failure it returns doc
// itself, unmodified, together with the error.
func Apply(doc *models.Document, p *Pull) (out *models.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = doc, fmt.Errorf("%w: %v", ErrApply, r)
		}
	}()
	if p == nil {
		return doc, nil
	}

	merged, err := clone(doc)
	if err != nil {
		return doc, fmt.Errorf("%w: %w", ErrApply, err)
	}

	applyAnnouncements(merged, p.Announcements)
	applyDownloads(merged, p.Downloads)
	applyCards(merged, p.Cards)
	applyHeroNotices(merged, p.HeroNotices)
	applySchool(&merged.School, p.Settings)
	applySectionOverrides(merged, p.Settings)

	if err := merged.Validate(); err != nil {
		return doc, fmt.Errorf("%w: %w", ErrApply, err)
	}
	return merged, nil
}

func clone(doc *models.Document) (*models.Document, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out models.Document
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func firstSection(page *models.Page, kind string) *models.Section {
	if page == nil {
		return nil
	}
	for i := range page.Sections {
		if page.Sections[i].Type == kind {
			return &page.Sections[i]
		}
	}
	return nil
}

func applyAnnouncements(doc *models.Document, rows []models.Announcement) {
	if len(rows) == 0 {
		return
	}
	section := firstSection(doc.Pages[models.HomeKey], models.KindAnnouncements)
	if section == nil {
		return
	}
	items := make([]models.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, models.Item{
			Title: render.Escape(r.Title),
			Body:  render.RichText(r.Body),
			Date:  render.Escape(r.Date),
			Tag:   render.Escape(r.Tag),
		})
	}
	section.Items = items
}

func applyDownloads(doc *models.Document, rows []models.Download) {
	for _, target := range []string{models.DownloadsAdmissions, models.DownloadsPolicies} {
		var items []models.Item
		for _, r := range rows {
			if r.Section != target {
				continue
			}
			items = append(items, models.Item{
				Title:       render.Escape(r.Title),
				Description: render.Escape(r.Description),
				Href:        render.SafeHref(r.URL),
				FileType:    render.Escape(r.FileType),
			})
		}
		if len(items) == 0 {
			continue
		}
		if section := firstSection(doc.Pages[target], models.KindDownloads); section != nil {
			section.Items = items
		}
	}
}

func applyCards(doc *models.Document, rows []models.Card) {
	if len(rows) == 0 {
		return
	}
	groups := make(map[string][]models.Item)
	for _, r := range rows {
		key := models.CardGroupKey(r.PageKey, r.SectionKey)
		groups[key] = append(groups[key], models.Item{
			Title: render.Escape(r.Title),
			Body:  render.RichText(r.Body),
			Href:  render.SafeHref(r.Href),
			Label: render.Escape(r.LinkLabel),
			Icon:  render.Escape(r.Icon),
			Image: render.SafeHref(r.Image),
		})
	}
	for pageKey, page := range doc.Pages {
		for i := range page.Sections {
			s := &page.Sections[i]
			if s.Type != models.KindCards {
				continue
			}
			if items, ok := groups[models.CardGroupKey(pageKey, s.EffectiveKey(i))]; ok {
				s.Items = items
			}
		}
	}
}

// applyHeroNotices sets or clears notices in row order, so the last row for
// a page wins. Pages without a hero are skipped.
func applyHeroNotices(doc *models.Document, rows []models.HeroNotice) {
	for _, r := range rows {
		page := doc.Pages[r.PageKey]
		if page == nil || page.Hero == nil {
			continue
		}
		if !r.IsActive {
			page.Hero.Notice = nil
			continue
		}
		page.Hero.Notice = &models.Notice{
			Title:     render.Escape(r.Title),
			Body:      render.RichText(r.Body),
			LinkLabel: render.Escape(r.LinkLabel),
			LinkHref:  render.SafeHref(r.LinkHref),
		}
	}
}

func applySchool(school *models.School, settings models.SiteSettings) {
	for key, set := range schoolSettings {
		if v, ok := settings.Lookup(key); ok {
			set(school, render.Escape(v))
		}
	}
}

// applySectionOverrides shallow-merges section_override:<page>:<index>
// settings into the addressed section. Overrides that are not JSON objects,
// point at a missing section, or leave the section invalid are skipped.
// Override values are admin-authored patches and are not escaped.
func applySectionOverrides(doc *models.Document, settings models.SiteSettings) {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		if sectionOverrideKey.MatchString(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		m := sectionOverrideKey.FindStringSubmatch(key)
		page := doc.Pages[m[1]]
		idx, err := strconv.Atoi(m[2])
		if page == nil || err != nil || idx >= len(page.Sections) {
			continue
		}
		var patch map[string]any
		if err := json.Unmarshal([]byte(settings[key]), &patch); err != nil || patch == nil {
			continue
		}
		merged, err := mergeSection(page.Sections[idx], patch)
		if err != nil {
			continue
		}
		page.Sections[idx] = merged
	}
}

func mergeSection(section models.Section, patch map[string]any) (models.Section, error) {
	b, err := json.Marshal(section)
	if err != nil {
		return section, err
	}
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return section, err
	}
	for k, v := range patch {
		fields[k] = v
	}
	if b, err = json.Marshal(fields); err != nil {
		return section, err
	}
	var out models.Section
	if err := json.Unmarshal(b, &out); err != nil {
		return section, err
	}
	if err := out.Validate(); err != nil {
		return section, err
	}
	return out, nil
}
