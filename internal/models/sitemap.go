// internal/models/sitemap.go
package models

import "encoding/xml"

// URLSet represents the structure of an XML sitemap.
type URLSet struct {
	XMLName        xml.Name `xml:"urlset"`
	XMLNS          string   `xml:"xmlns,attr,omitempty"`
	SchemaLocation string   `xml:"http://www.w3.org/2001/XMLSchema-instance schemaLocation,attr,omitempty"`
	URLs           []URL    `xml:"url"`
}

// URL represents a single URL entry in the sitemap.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// SitemapIndex represents a sitemap that lists other sitemap files.
type SitemapIndex struct {
	XMLName  xml.Name      `xml:"sitemapindex"`
	Sitemaps []SitemapFile `xml:"sitemap"`
}

type SitemapFile struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Change frequency hints accepted by the Sitemaps protocol.
const (
	ChangeFreqAlways  = "always"
	ChangeFreqHourly  = "hourly"
	ChangeFreqDaily   = "daily"
	ChangeFreqWeekly  = "weekly"
	ChangeFreqMonthly = "monthly"
	ChangeFreqYearly  = "yearly"
	ChangeFreqNever   = "never"
)
