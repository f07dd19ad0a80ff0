// Package openholidays is a minimal client for the public
// https://openholidaysapi.org PublicHolidays endpoint.
package openholidays

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const DefaultBaseURL = "https://openholidaysapi.org"

// Holiday is one public-holiday entry as returned by the API, reduced to the
// fields the roster cares about.
type Holiday struct {
	Date             time.Time
	Name             string
	CountryCode      string
	SubdivisionCodes []string
}

// Client calls the OpenHolidays API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client. An empty baseURL selects the public endpoint.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type apiName struct {
	Language string `json:"language"`
	Text     string `json:"text"`
}

type apiSubdivision struct {
	Code string `json:"code"`
}

type apiHoliday struct {
	StartDate    string           `json:"startDate"`
	Date         string           `json:"date"`
	Name         []apiName        `json:"name"`
	Subdivisions []apiSubdivision `json:"subdivisions"`
}

// PublicHolidays fetches all public holidays for a country (optionally a
// subdivision) within [validFrom, validTo].
func (c *Client) PublicHolidays(ctx context.Context, countryCode, subdivisionCode, language string, validFrom, validTo time.Time) ([]Holiday, error) {
	params := url.Values{}
	params.Set("countryIsoCode", countryCode)
	params.Set("languageIsoCode", language)
	params.Set("validFrom", validFrom.Format("2006-01-02"))
	params.Set("validTo", validTo.Format("2006-01-02"))
	if subdivisionCode != "" {
		params.Set("subdivisionCode", subdivisionCode)
	}

	endpoint := fmt.Sprintf("%s/PublicHolidays?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build holidays request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "roster-api/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch public holidays: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch public holidays: unexpected status %d", resp.StatusCode)
	}

	var items []apiHoliday
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode public holidays: %w", err)
	}

	out := make([]Holiday, 0, len(items))
	for _, item := range items {
		raw := item.Date
		if raw == "" {
			raw = item.StartDate
		}
		if raw == "" {
			continue
		}
		day, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			continue
		}

		subs := make([]string, 0, len(item.Subdivisions))
		for _, s := range item.Subdivisions {
			if s.Code != "" {
				subs = append(subs, s.Code)
			}
		}

		out = append(out, Holiday{
			Date:             day,
			Name:             pickName(item.Name, language),
			CountryCode:      countryCode,
			SubdivisionCodes: subs,
		})
	}

	return out, nil
}

// pickName prefers the requested language, then English, then the first
// available translation.
func pickName(names []apiName, language string) string {
	for _, n := range names {
		if n.Language == language && n.Text != "" {
			return n.Text
		}
	}
	for _, n := range names {
		if n.Language == "EN" && n.Text != "" {
			return n.Text
		}
	}
	for _, n := range names {
		if n.Text != "" {
			return n.Text
		}
	}
	return "Festivo"
}
