package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/Koodattu/fyralath-data-tracker/internal/metrics"
	"github.com/Koodattu/fyralath-data-tracker/internal/models"
)

const (
	blizzardAPIURL         = "https://%s.api.blizzard.com"
	blizzardOAuthURL       = "https://oauth.battle.net/token"
	blizzardDefaultTimeout = 60 * time.Second
	blizzardLocale         = "en_US"

	// Refresh the access token this long before Blizzard says it expires
	tokenExpiryMargin = 5 * time.Minute
)

// BlizzardConfig configures the Blizzard API client
type BlizzardConfig struct {
	ClientID          string
	ClientSecret      string
	APIURL            string // may contain %s for the region
	OAuthURL          string
	RequestsPerMinute int
	Timeout           time.Duration
}

// BlizzardService fetches commodity auctions and WoW token prices
type BlizzardService struct {
	client   *resty.Client
	config   BlizzardConfig
	limiter  *rate.Limiter
	tokenMu  sync.Mutex
	token    string
	tokenExp time.Time
}

// accessTokenResponse is the OAuth client credentials response
type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// commoditiesResponse is the /data/wow/auctions/commodities payload
type commoditiesResponse struct {
	Auctions []commodityAuction `json:"auctions"`
}

type commodityAuction struct {
	ID   int64 `json:"id"`
	Item struct {
		ID int `json:"id"`
	} `json:"item"`
	UnitPrice *int64 `json:"unit_price"`
	Buyout    *int64 `json:"buyout"`
}

// tokenIndexResponse is the /data/wow/token/index payload
type tokenIndexResponse struct {
	LastUpdatedTimestamp int64 `json:"last_updated_timestamp"`
	Price                int64 `json:"price"`
}

// NewBlizzardService creates a new Blizzard API client
func NewBlizzardService(cfg BlizzardConfig) *BlizzardService {
	if cfg.APIURL == "" {
		cfg.APIURL = blizzardAPIURL
	}
	if cfg.OAuthURL == "" {
		cfg.OAuthURL = blizzardOAuthURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = blizzardDefaultTimeout
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 300
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("Accept", "application/json")

	return &BlizzardService{
		client:  client,
		config:  cfg,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.RequestsPerMinute),
	}
}

// FetchCommodities returns the region's current commodity auction listings
func (s *BlizzardService) FetchCommodities(ctx context.Context, region models.Region) ([]models.AuctionListing, error) {
	var payload commoditiesResponse
	if err := s.get(ctx, region, "/data/wow/auctions/commodities", "commodities", &payload); err != nil {
		return nil, err
	}

	listings := make([]models.AuctionListing, 0, len(payload.Auctions))
	for _, a := range payload.Auctions {
		if a.Item.ID == 0 {
			continue
		}
		listings = append(listings, models.AuctionListing{
			ItemID:    a.Item.ID,
			UnitPrice: a.UnitPrice,
			Buyout:    a.Buyout,
		})
	}
	return listings, nil
}

// FetchTokenPrice returns the region's current WoW token price in copper
func (s *BlizzardService) FetchTokenPrice(ctx context.Context, region models.Region) (int64, error) {
	var payload tokenIndexResponse
	if err := s.get(ctx, region, "/data/wow/token/index", "token", &payload); err != nil {
		return 0, err
	}
	if payload.Price <= 0 {
		return 0, fmt.Errorf("blizzard API returned no token price for %s", region)
	}
	return payload.Price, nil
}

func (s *BlizzardService) get(ctx context.Context, region models.Region, path, endpoint string, result any) error {
	token, err := s.accessToken(ctx)
	if err != nil {
		return err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"namespace": "dynamic-" + string(region),
			"locale":    blizzardLocale,
		}).
		SetResult(result).
		Get(s.regionURL(region) + path)
	metrics.SourceRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.SourceRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("failed to fetch %s for %s: %w", endpoint, region, err)
	}
	metrics.SourceRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode())).Inc()

	if resp.StatusCode() == 401 {
		s.invalidateToken()
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("blizzard API error for %s %s: status %d", region, endpoint, resp.StatusCode())
	}
	return nil
}

func (s *BlizzardService) regionURL(region models.Region) string {
	if strings.Contains(s.config.APIURL, "%s") {
		return fmt.Sprintf(s.config.APIURL, region)
	}
	return strings.TrimSuffix(s.config.APIURL, "/")
}

// accessToken returns a cached client credentials token, fetching a new one when needed
func (s *BlizzardService) accessToken(ctx context.Context) (string, error) {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()

	if s.token != "" && time.Now().Before(s.tokenExp) {
		return s.token, nil
	}

	if s.config.ClientID == "" || s.config.ClientSecret == "" {
		return "", errors.New("blizzard client credentials are not configured")
	}

	var tok accessTokenResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBasicAuth(s.config.ClientID, s.config.ClientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&tok).
		Post(s.config.OAuthURL)
	if err != nil {
		metrics.SourceRequestsTotal.WithLabelValues("oauth", "error").Inc()
		return "", fmt.Errorf("failed to acquire access token: %w", err)
	}
	metrics.SourceRequestsTotal.WithLabelValues("oauth", strconv.Itoa(resp.StatusCode())).Inc()

	if !resp.IsSuccess() {
		return "", fmt.Errorf("failed to acquire access token: status %d", resp.StatusCode())
	}
	if tok.AccessToken == "" {
		return "", errors.New("failed to acquire access token: empty token")
	}

	s.token = tok.AccessToken
	s.tokenExp = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenExpiryMargin)
	return s.token, nil
}

func (s *BlizzardService) invalidateToken() {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()
	s.token = ""
}
