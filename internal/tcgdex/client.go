// Package tcgdex is a minimal client for the TCGdex REST API.
package tcgdex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/pockettcg/tracker/internal/platform/errors"
)

// DefaultBaseURL serves the English card catalog.
const DefaultBaseURL = "https://api.tcgdex.net/v2/en"

// Client calls the TCGdex REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for baseURL. An empty baseURL selects the
// public English API.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CardCount summarises how many cards a set holds.
type CardCount struct {
	Total    int `json:"total"`
	Official int `json:"official"`
}

// SetBrief is a set as listed inside a serie.
type SetBrief struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CardCount CardCount `json:"cardCount"`
}

// Serie is a card serie with its sets.
type Serie struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Sets []SetBrief `json:"sets"`
}

// Booster is a booster pack within a set.
type Booster struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CardBrief is a card as listed inside a set.
type CardBrief struct {
	ID      string `json:"id"`
	LocalID string `json:"localId"`
	Name    string `json:"name"`
}

// Set is a full set with its boosters and card list.
type Set struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	ReleaseDate string      `json:"releaseDate"`
	CardCount   CardCount   `json:"cardCount"`
	Boosters    []Booster   `json:"boosters"`
	Cards       []CardBrief `json:"cards"`
}

// SetRef is the set reference embedded in a card.
type SetRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Card is a full card with rarity and booster links.
type Card struct {
	ID       string    `json:"id"`
	LocalID  string    `json:"localId"`
	Name     string    `json:"name"`
	Rarity   string    `json:"rarity"`
	Set      SetRef    `json:"set"`
	Boosters []Booster `json:"boosters"`
}

// Serie fetches one serie with its set list.
func (c *Client) Serie(ctx context.Context, serieID string) (Serie, error) {
	var serie Serie
	if err := c.getJSON(ctx, "/series/"+url.PathEscape(serieID), &serie); err != nil {
		return Serie{}, err
	}
	return serie, nil
}

// Set fetches one set with boosters and cards.
func (c *Client) Set(ctx context.Context, setID string) (Set, error) {
	var set Set
	if err := c.getJSON(ctx, "/sets/"+url.PathEscape(setID), &set); err != nil {
		return Set{}, err
	}
	return set, nil
}

// Card fetches one card with its rarity and booster links.
func (c *Client) Card(ctx context.Context, cardID string) (Card, error) {
	var card Card
	if err := c.getJSON(ctx, "/cards/"+url.PathEscape(cardID), &card); err != nil {
		return Card{}, err
	}
	return card, nil
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeSyncUpstream, "request "+path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return apperrors.WithMetadata(apperrors.CodeSyncUpstream,
			fmt.Sprintf("unexpected status %d for %s", resp.StatusCode, path),
			map[string]string{"status": fmt.Sprintf("%d", resp.StatusCode), "path": path})
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return apperrors.Wrap(apperrors.CodeSyncUpstream, "decode "+path, err)
	}
	return nil
}
