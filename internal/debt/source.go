package debt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Source lists outstanding debts of one category
type Source interface {
	List(ctx context.Context, category Category, filter Filter) ([]Debt, error)
}

const maxListingPages = 50

// ErrListingTooLong is returned instead of a truncated listing
var ErrListingTooLong = errors.New("debt listing exceeds the page limit")

// APISource reads debts from the shipment/order REST service
type APISource struct {
	baseURL      string
	token        string
	homeCurrency string
	client       *http.Client
}

// NewAPISource creates a listing client for the order service
func NewAPISource(baseURL, token, homeCurrency string, client *http.Client) *APISource {
	if client == nil {
		client = http.DefaultClient
	}
	return &APISource{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		homeCurrency: homeCurrency,
		client:       client,
	}
}

func categoryPath(category Category) (string, error) {
	switch category {
	case CategoryShipment:
		return "/shipments/", nil
	case CategoryBuy4Me:
		return "/buy4me/orders/", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
}

// List fetches every page of the category listing
func (s *APISource) List(ctx context.Context, category Category, filter Filter) ([]Debt, error) {
	path, err := categoryPath(category)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(s.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to build listing url: %w", err)
	}
	if filter.Status != "" {
		q := u.Query()
		q.Set("payment_status", string(filter.Status))
		u.RawQuery = q.Encode()
	}

	var debts []Debt
	next := u.String()
	for page := 0; next != "" && page < maxListingPages; page++ {
		items, nextLink, err := s.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			debts = append(debts, item.toDebt(category, s.homeCurrency))
		}
		next = nextLink
	}
	if next != "" {
		return nil, fmt.Errorf("%w: more than %d pages of %s", ErrListingTooLong, maxListingPages, category)
	}

	return debts, nil
}

func (s *APISource) fetchPage(ctx context.Context, pageURL string) ([]apiDebt, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build listing request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list debts: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read listing: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("failed to list debts: status %d", resp.StatusCode)
	}

	items, next, err := decodeListing(body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode listing: %w", err)
	}
	return items, next, nil
}
