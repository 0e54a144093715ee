package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"staffclock/src/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	UnknownCity    = "Unknown"
	cachePrefix    = "geo:"
)

// nominatimResponse เฉพาะ field ที่ใช้
type nominatimResponse struct {
	Address struct {
		City          string `json:"city"`
		Town          string `json:"town"`
		Village       string `json:"village"`
		County        string `json:"county"`
		Suburb        string `json:"suburb"`
		Neighbourhood string `json:"neighbourhood"`
		Hamlet        string `json:"hamlet"`
	} `json:"address"`
}

// Options ค่าตั้งของ Resolver; Cache = nil ปิด cache
type Options struct {
	BaseURL       string
	UserAgent     string
	RatePerSecond float64
	Cache         *redis.Client
	CacheTTL      time.Duration
	HTTPClient    *http.Client
}

// Resolver reverse geocode ผ่าน Nominatim
type Resolver struct {
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	cache     *redis.Client
	cacheTTL  time.Duration
	http      *http.Client
}

func NewResolver(opts Options) *Resolver {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "staffclock/1.0"
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 1
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	return &Resolver{
		baseURL:   opts.BaseURL,
		userAgent: opts.UserAgent,
		limiter:   rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1),
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		http:      opts.HTTPClient,
	}
}

// Resolve คืน city/area ของพิกัด
func (r *Resolver) Resolve(ctx context.Context, lat, lng float64) (models.Place, error) {
	key := CacheKey(lat, lng)
	if place, ok := r.cached(ctx, key); ok {
		return place, nil
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return models.Place{}, fmt.Errorf("geocode rate limit: %w", err)
	}

	place, err := r.fetch(ctx, lat, lng)
	if err != nil {
		return models.Place{}, err
	}
	r.store(ctx, key, place)
	return place, nil
}

func (r *Resolver) fetch(ctx context.Context, lat, lng float64) (models.Place, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("zoom", "14")
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return models.Place{}, fmt.Errorf("failed to build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return models.Place{}, fmt.Errorf("failed to reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Place{}, fmt.Errorf("failed to reverse geocode: status %d", resp.StatusCode)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Place{}, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	return placeFrom(body), nil
}

func placeFrom(body nominatimResponse) models.Place {
	a := body.Address
	return models.Place{
		City: firstNonEmpty(a.City, a.Town, a.Village, a.County, UnknownCity),
		Area: firstNonEmpty(a.Suburb, a.Neighbourhood, a.Hamlet),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// CacheKey พิกัดปัด 4 ตำแหน่ง (~11 เมตร)
func CacheKey(lat, lng float64) string {
	return fmt.Sprintf("%s%.4f,%.4f", cachePrefix, lat, lng)
}

func (r *Resolver) cached(ctx context.Context, key string) (models.Place, bool) {
	if r.cache == nil {
		return models.Place{}, false
	}
	raw, err := r.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Println("⚠️ Geocode cache read failed:", err)
		}
		return models.Place{}, false
	}
	var place models.Place
	if err := json.Unmarshal(raw, &place); err != nil {
		return models.Place{}, false
	}
	return place, true
}

func (r *Resolver) store(ctx context.Context, key string, place models.Place) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(place)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, raw, r.cacheTTL).Err(); err != nil {
		log.Println("⚠️ Geocode cache write failed:", err)
	}
}
