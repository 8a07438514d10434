package lizechat

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Category    string `xml:"category,omitempty"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

const summaryLength = 150

func buildFeed(cfg SiteConfig, entries []Entry) rssXML {
	items := make([]rssItem, 0, len(entries))
	for _, e := range entries {
		pubDate := ""
		if t, ok := e.Published(); ok {
			pubDate = t.Format(time.RFC1123Z)
		}
		desc := e.Description
		if desc == "" {
			desc = Summarize(e.Body, summaryLength)
		}
		u := BuildURL(cfg.URL, e.Collection, e.Slug)
		items = append(items, rssItem{
			Title:       e.Title,
			Link:        u,
			Description: desc,
			Category:    e.Collection,
			PubDate:     pubDate,
			GUID:        u,
		})
	}
	return rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Name,
			Link:        cfg.URL,
			Description: cfg.Description,
			Items:       items,
		},
	}
}

func (a *App) renderRSS(c echo.Context, entries []Entry) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(buildFeed(a.Config, entries))
}
