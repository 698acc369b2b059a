package database

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/supabase-community/postgrest-go"

	"github.com/alexraskin/schoolsite/internal/models"
)

// Columns requested per table.
var restColumns = map[string]string{
	TableAnnouncements: "title,body,date,tag,is_active,sort_order",
	TableDownloads:     "section,title,description,url,file_type,is_active,sort_order",
	TableCards:         "page_key,section_key,title,body,href,link_label,icon,image,is_active,sort_order",
	TableHeroNotices:   "page_key,title,body,link_label,link_href,is_active,sort_order",
	TableSiteSettings:  "key,value,is_active,sort_order",
}

// rest reads tables through the PostgREST endpoint at {base}/rest/v1.
type rest struct {
	endpoint  string
	key       string
	transport http.RoundTripper
}

func NewREST(baseURL, key string, client *http.Client) Database {
	transport := http.DefaultTransport
	if client != nil && client.Transport != nil {
		transport = client.Transport
	}
	return &rest{
		endpoint:  strings.TrimRight(baseURL, "/") + "/rest/v1",
		key:       key,
		transport: transport,
	}
}

func (d *rest) Close() {}

func (d *rest) GetAnnouncements(ctx context.Context) ([]models.Announcement, error) {
	var rows []models.Announcement
	if err := d.read(ctx, TableAnnouncements, true, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *rest) GetDownloads(ctx context.Context) ([]models.Download, error) {
	var rows []models.Download
	if err := d.read(ctx, TableDownloads, true, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *rest) GetCards(ctx context.Context) ([]models.Card, error) {
	var rows []models.Card
	if err := d.read(ctx, TableCards, true, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetHeroNotices is unfiltered: inactive rows clear a page's notice.
func (d *rest) GetHeroNotices(ctx context.Context) ([]models.HeroNotice, error) {
	var rows []models.HeroNotice
	if err := d.read(ctx, TableHeroNotices, false, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *rest) GetSiteSettings(ctx context.Context) ([]models.SiteSetting, error) {
	var rows []models.SiteSetting
	if err := d.read(ctx, TableSiteSettings, true, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// boundTransport carries one read's context onto the requests the
// postgrest client builds and remembers the last response status.
type boundTransport struct {
	ctx    context.Context
	parent http.RoundTripper
	status int
}

func (t *boundTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	res, err := t.parent.RoundTrip(req.WithContext(t.ctx))
	if res != nil {
		t.status = res.StatusCode
	}
	return res, err
}

// client returns a postgrest client scoped to a single read.
func (d *rest) client(ctx context.Context) (*postgrest.Client, *boundTransport) {
	bound := &boundTransport{ctx: ctx, parent: d.transport}
	c := postgrest.NewClient(d.endpoint, "", map[string]string{"apikey": d.key})
	if c.ClientError != nil {
		return c, bound
	}
	c.SetAuthToken(d.key)
	c.Transport.Parent = bound
	return c, bound
}

func (d *rest) read(ctx context.Context, table string, activeOnly bool, dst any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("read %s: %w", table, err)
	}
	c, bound := d.client(ctx)
	if c.ClientError != nil {
		return fmt.Errorf("read %s: %w", table, c.ClientError)
	}

	q := c.From(table).Select(restColumns[table], "", false)
	if activeOnly {
		q = q.Eq("is_active", "true")
	}
	body, _, err := q.Order("sort_order", &postgrest.OrderOpts{Ascending: true}).Execute()
	if err != nil {
		if bound.status >= http.StatusBadRequest {
			return &StatusError{Table: table, StatusCode: bound.status, Message: err.Error()}
		}
		return fmt.Errorf("read %s: %w", table, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("read %s: %w: %w", table, ErrMalformedResponse, err)
	}
	return nil
}
