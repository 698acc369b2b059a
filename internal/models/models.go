package models

// Section kinds.
const (
	KindCards          = "cards"
	KindSplit          = "split"
	KindContactCards   = "contact-cards"
	KindAnnouncements  = "announcements"
	KindDownloads      = "downloads"
	KindCalendar       = "calendar"
	KindFixtureCreator = "fixture-creator"
	KindMatchLog       = "match-log"
)

// HomeKey is the page every document must carry.
const HomeKey = "home"

var sectionKinds = map[string]struct{}{
	KindCards:          {},
	KindSplit:          {},
	KindContactCards:   {},
	KindAnnouncements:  {},
	KindDownloads:      {},
	KindCalendar:       {},
	KindFixtureCreator: {},
	KindMatchLog:       {},
}

// Document is the whole site: school details plus every page.
type Document struct {
	School School           `json:"school"`
	Pages  map[string]*Page `json:"pages"`
}

type School struct {
	Name    string `json:"name"`
	Tagline string `json:"tagline"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Hours   Hours  `json:"hours"`
}

type Hours struct {
	Weekdays string `json:"weekdays"`
	Weekend  string `json:"weekend"`
}

type Page struct {
	Key             string    `json:"key"`
	MetaTitle       string    `json:"metaTitle"`
	MetaDescription string    `json:"metaDescription"`
	NavLabel        string    `json:"navLabel,omitempty"`
	Nav             bool      `json:"nav,omitempty"`
	NavOrder        int       `json:"navOrder,omitempty"`
	Hero            *Hero     `json:"hero,omitempty"`
	Sections        []Section `json:"sections"`
	SectionOrder    []int     `json:"sectionOrder,omitempty"`
}

type Hero struct {
	Eyebrow string   `json:"eyebrow,omitempty"`
	Title   string   `json:"title"`
	Lead    string   `json:"lead,omitempty"`
	Actions []Action `json:"actions,omitempty"`
	Notice  *Notice  `json:"notice,omitempty"`
}

type Action struct {
	Label   string `json:"label"`
	Href    string `json:"href"`
	Primary bool   `json:"primary,omitempty"`
}

// Notice is the aside shown next to a hero, typically a closure or event alert.
type Notice struct {
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
	LinkLabel string `json:"linkLabel,omitempty"`
	LinkHref  string `json:"linkHref,omitempty"`
}

// Section is a tagged variant over the section kinds. Type selects which of
// the kind-specific fields are meaningful.
type Section struct {
	Type        string       `json:"type"`
	Title       string       `json:"title,omitempty"`
	Intro       string       `json:"intro,omitempty"`
	Alt         bool         `json:"alt,omitempty"`
	SectionKey  string       `json:"sectionKey,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`

	// cards, contact-cards, announcements, downloads
	Items     []Item `json:"items,omitempty"`
	Columns   int    `json:"columns,omitempty"`
	Clickable bool   `json:"clickable,omitempty"`

	// split
	Body    string `json:"body,omitempty"`
	Image   string `json:"image,omitempty"`
	Reverse bool   `json:"reverse,omitempty"`

	// calendar
	Events []Event `json:"events,omitempty"`

	// fixture-creator, match-log
	Sport string   `json:"sport,omitempty"`
	Teams []string `json:"teams,omitempty"`
}

// Item is the element shape shared by every list-bearing section kind.
type Item struct {
	Title       string `json:"title,omitempty"`
	Body        string `json:"body,omitempty"`
	Href        string `json:"href,omitempty"`
	Label       string `json:"label,omitempty"`
	Date        string `json:"date,omitempty"`
	Tag         string `json:"tag,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
	FileType    string `json:"fileType,omitempty"`
}

type Attachment struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

type Event struct {
	Date     string `json:"date"`
	Title    string `json:"title"`
	Location string `json:"location,omitempty"`
}

// EffectiveKey is the key remote card rows use to address a section.
func (s Section) EffectiveKey(index int) string {
	if s.SectionKey != "" {
		return s.SectionKey
	}
	return SectionIndexKey(index)
}
