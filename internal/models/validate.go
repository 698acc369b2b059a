package models

import (
	"errors"
	"fmt"
)

// ValidationError describes the first field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the structural invariants renderers and mergers rely on.
func (d *Document) Validate() error {
	if d == nil {
		return invalid("document", "is nil")
	}
	if len(d.Pages) == 0 {
		return invalid("pages", "is empty")
	}
	if d.Pages[HomeKey] == nil {
		return invalid("pages.home", "is required")
	}
	for key, page := range d.Pages {
		if page == nil {
			return invalid("pages."+key, "is null")
		}
		if page.Key != key {
			return invalid("pages."+key+".key", "is %q, want %q", page.Key, key)
		}
		for i, s := range page.Sections {
			if err := s.Validate(); err != nil {
				var verr *ValidationError
				if errors.As(err, &verr) {
					verr.Field = fmt.Sprintf("pages.%s.sections[%d].%s", key, i, verr.Field)
				}
				return err
			}
		}
		for _, idx := range page.SectionOrder {
			if idx < 0 || idx >= len(page.Sections) {
				return invalid("pages."+key+".sectionOrder", "index %d out of range", idx)
			}
		}
	}
	return nil
}

func (s Section) Validate() error {
	if _, ok := sectionKinds[s.Type]; !ok {
		return invalid("type", "unknown section kind %q", s.Type)
	}
	if s.Columns < 0 {
		return invalid("columns", "must not be negative")
	}
	return nil
}

func (a Announcement) Validate() error {
	if a.Title == "" {
		return invalid("announcements.title", "is required")
	}
	return nil
}

func (d Download) Validate() error {
	switch {
	case d.Title == "":
		return invalid("downloads.title", "is required")
	case d.URL == "":
		return invalid("downloads.url", "is required")
	case d.Section == "":
		return invalid("downloads.section", "is required")
	}
	return nil
}

func (c Card) Validate() error {
	switch {
	case c.PageKey == "":
		return invalid("cards.page_key", "is required")
	case c.SectionKey == "":
		return invalid("cards.section_key", "is required")
	case c.Title == "":
		return invalid("cards.title", "is required")
	}
	return nil
}

func (n HeroNotice) Validate() error {
	if n.PageKey == "" {
		return invalid("hero_notices.page_key", "is required")
	}
	if n.IsActive && n.Title == "" {
		return invalid("hero_notices.title", "is required when active")
	}
	return nil
}

func (s SiteSetting) Validate() error {
	if s.Key == "" {
		return invalid("site_settings.key", "is required")
	}
	return nil
}
