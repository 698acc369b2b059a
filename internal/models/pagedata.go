package models

// PageSummary is one row of the admin page list.
type PageSummary struct {
	Key       string
	Title     string
	NavLabel  string
	InNav     bool
	Sections  int
	HasNotice bool
}

type AdminPageData struct {
	Email      string
	Version    string
	SchoolName string
	Source     string
	Overrides  bool
	Pages      []PageSummary
	Error      string
}

type LoginPageData struct {
	Email string
	Error string
}
