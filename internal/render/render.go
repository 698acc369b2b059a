// Package render turns a content document and one of its pages into HTML.
//
// Text in the content document is admin-authored and rendered as trusted
// markup. Text that reaches the document from remote rows is escaped or
// sanitized before it is merged (see RichText and Escape), so by the time a
// page is rendered every field carries the same trust level.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html"
	"html/template"
	"io"
	"sort"

	"github.com/alexraskin/schoolsite/internal/models"
)

//go:embed templates/*.html
var templateFiles embed.FS

type Renderer struct {
	tmpl *template.Template
}

func New() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

var funcs = template.FuncMap{
	"trusted": func(s string) template.HTML { return template.HTML(s) },
	"href":    func(s string) template.URL { return template.URL(s) },
	"plain":   html.UnescapeString,
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
}

// NavLink is one entry in the header navigation.
type NavLink struct {
	Key    string
	Label  string
	Href   string
	Active bool
}

type headerData struct {
	School models.School
	Nav    []NavLink
}

type sectionView struct {
	models.Section
	Index int
}

type pageData struct {
	Page     *models.Page
	School   models.School
	Header   template.HTML
	Hero     template.HTML
	Sections template.HTML
	Footer   template.HTML
}

func (r *Renderer) fragment(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("error executing template %q: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) Header(doc *models.Document, page *models.Page) (template.HTML, error) {
	return r.fragment("header", headerData{School: doc.School, Nav: Navigation(doc, page.Key)})
}

// Hero renders the page hero and its notice aside; pages without a hero
// render nothing.
func (r *Renderer) Hero(page *models.Page) (template.HTML, error) {
	if page.Hero == nil {
		return "", nil
	}
	return r.fragment("hero", page.Hero)
}

func (r *Renderer) Sections(page *models.Page) (template.HTML, error) {
	order := OrderSections(len(page.Sections), page.SectionOrder)
	views := make([]sectionView, 0, len(order))
	for _, i := range order {
		views = append(views, sectionView{Section: page.Sections[i], Index: i})
	}
	return r.fragment("sections", views)
}

func (r *Renderer) Footer(doc *models.Document) (template.HTML, error) {
	return r.fragment("footer", doc.School)
}

// Page writes the complete HTML document for page.
func (r *Renderer) Page(w io.Writer, doc *models.Document, page *models.Page) error {
	data := pageData{Page: page, School: doc.School}
	var err error
	if data.Header, err = r.Header(doc, page); err != nil {
		return err
	}
	if data.Hero, err = r.Hero(page); err != nil {
		return err
	}
	if data.Sections, err = r.Sections(page); err != nil {
		return err
	}
	if data.Footer, err = r.Footer(doc); err != nil {
		return err
	}
	if err := r.tmpl.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("error executing template %q: %w", "page", err)
	}
	return nil
}

// Navigation lists pages flagged for the nav, by navOrder then key.
func Navigation(doc *models.Document, active string) []NavLink {
	var pages []*models.Page
	for _, p := range doc.Pages {
		if p.Nav {
			pages = append(pages, p)
		}
	}
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].NavOrder != pages[j].NavOrder {
			return pages[i].NavOrder < pages[j].NavOrder
		}
		return pages[i].Key < pages[j].Key
	})

	links := make([]NavLink, 0, len(pages))
	for _, p := range pages {
		label := p.NavLabel
		if label == "" {
			label = p.MetaTitle
		}
		href := "/" + p.Key
		if p.Key == models.HomeKey {
			href = "/"
		}
		links = append(links, NavLink{Key: p.Key, Label: label, Href: href, Active: p.Key == active})
	}
	return links
}

// OrderSections returns the display order for n sections. Indices listed in
// order come first, in list order; the rest follow in their original order.
// Out-of-range and repeated indices in order are ignored.
func OrderSections(n int, order []int) []int {
	rank := make(map[int]int, len(order))
	for pos, idx := range order {
		if idx < 0 || idx >= n {
			continue
		}
		if _, seen := rank[idx]; !seen {
			rank[idx] = pos
		}
	}

	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	sort.SliceStable(out, func(a, b int) bool {
		ra, oka := rank[out[a]]
		rb, okb := rank[out[b]]
		switch {
		case oka && okb:
			return ra < rb
		case oka:
			return true
		default:
			return false
		}
	})
	return out
}
