package lizechat

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type entryJSON struct {
	Collection   string               `json:"collection"`
	Slug         string               `json:"slug"`
	Link         string               `json:"link"`
	Title        string               `json:"title"`
	Published    string               `json:"published,omitempty"`
	DateSource   string               `json:"dateSource,omitempty"`
	Dates        map[string]time.Time `json:"dates,omitempty"`
	Description  string               `json:"description,omitempty"`
	Guest        string               `json:"guest,omitempty"`
	Host         string               `json:"host,omitempty"`
	SlideURL     string               `json:"slideUrl,omitempty"`
	Participants []string             `json:"participants,omitempty"`
	Tags         []string             `json:"tags,omitempty"`
}

func toJSON(e Entry) entryJSON {
	return entryJSON{
		Collection:   e.Collection,
		Slug:         e.Slug,
		Link:         e.Link(),
		Title:        e.Title,
		Published:    e.PublishedString(),
		DateSource:   e.DateSource(),
		Dates:        e.Dates,
		Description:  e.Description,
		Guest:        e.Guest,
		Host:         e.Host,
		SlideURL:     e.SlideURL,
		Participants: e.Participants,
		Tags:         e.Tags,
	}
}

func toJSONList(entries []Entry) []entryJSON {
	out := make([]entryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, toJSON(e))
	}
	return out
}

func (a *App) collection(c echo.Context) (Collection, error) {
	col, ok := a.Registry.Get(c.Param("name"))
	if !ok {
		return Collection{}, echo.NewHTTPError(http.StatusNotFound, "unknown collection")
	}
	return col, nil
}

func (a *App) handleCollections(c echo.Context) error {
	return c.JSON(http.StatusOK, a.Registry.Collections())
}

func (a *App) handleCollection(c echo.Context) error {
	col, err := a.collection(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, col)
}

func (a *App) handleEntries(c echo.Context) error {
	col, err := a.collection(c)
	if err != nil {
		return err
	}
	entries, err := a.Cache.ListEntries(col.Name, c.QueryParam("tag"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJSONList(entries))
}

func (a *App) handleEntry(c echo.Context) error {
	col, err := a.collection(c)
	if err != nil {
		return err
	}
	entry, err := a.Cache.GetEntry(col.Name, c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "entry not found")
		}
		return err
	}
	all, err := a.Cache.ListEntries("", "")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"entry":   toJSON(entry),
		"related": toJSONList(RelatedEntries(entry, all)),
	})
}

func (a *App) handleTags(c echo.Context) error {
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	if tags == nil {
		tags = []string{}
	}
	return c.JSON(http.StatusOK, tags)
}

func (a *App) handleTheme(c echo.Context) error {
	b, err := ExportTheme(a.Theme)
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, b)
}

func (a *App) handleSitemap(c echo.Context) error {
	entries, err := a.Cache.ListEntries("", "")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, entries)
}

func (a *App) handleFeed(c echo.Context) error {
	entries, err := a.Cache.ListEntries("", "")
	if err != nil {
		return err
	}
	return a.renderRSS(c, entries)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = c.JSON(code, map[string]string{"message": http.StatusText(code)})
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
