package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	unsplashAPIURL     = "https://api.unsplash.com"
	fallbackImageURL   = "https://source.unsplash.com/featured/?"
	imageQueryKeyword  = "food"
	imageCachePrefix   = "image:query:"
	defaultImageTTL    = 24 * time.Hour
	maxMirroredImageSz = 10 << 20
)

// ImageQuery is the free-text search used for a recipe title.
func ImageQuery(title string) string {
	return strings.TrimSpace(title) + " " + imageQueryKeyword
}

// FallbackImageURL builds a deterministic image URL from a title so that
// every recipe has an image even when the provider returns nothing.
func FallbackImageURL(title string) string {
	slug := strings.Join(strings.Fields(title), "-")
	return fallbackImageURL + url.QueryEscape(slug) + "," + imageQueryKeyword
}

type unsplashSearchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

// ObjectPutter is the subset of the S3 client used to mirror images.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageMirror copies provider images into our own bucket.
type ImageMirror struct {
	putter ObjectPutter
	bucket string
	urlFor func(key string) string
}

// NewImageMirror uploads into bucket through putter; urlFor turns an object
// key into the URL handed back to clients.
func NewImageMirror(putter ObjectPutter, bucket string, urlFor func(key string) string) *ImageMirror {
	return &ImageMirror{putter: putter, bucket: bucket, urlFor: urlFor}
}

// UnsplashResolver finds a representative photo for a recipe title.
// Failures never propagate: ResolveImage reports ok=false and logs the cause.
type UnsplashResolver struct {
	accessKey string
	baseURL   string
	client    *http.Client
	cache     *redis.Client
	cacheTTL  time.Duration
	mirror    *ImageMirror
	log       logrus.FieldLogger
}

// ImageOption configures an UnsplashResolver.
type ImageOption func(*UnsplashResolver)

// WithImageCache caches resolved URLs in Redis per query.
func WithImageCache(client *redis.Client, ttl time.Duration) ImageOption {
	return func(r *UnsplashResolver) {
		r.cache = client
		if ttl > 0 {
			r.cacheTTL = ttl
		}
	}
}

// WithImageMirror stores a copy of every resolved image in S3.
func WithImageMirror(m *ImageMirror) ImageOption {
	return func(r *UnsplashResolver) { r.mirror = m }
}

// WithUnsplashBaseURL points the resolver at a different API host.
func WithUnsplashBaseURL(u string) ImageOption {
	return func(r *UnsplashResolver) { r.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) ImageOption {
	return func(r *UnsplashResolver) { r.client = c }
}

// NewUnsplashResolver creates a resolver using the given access key.
func NewUnsplashResolver(accessKey string, log logrus.FieldLogger, opts ...ImageOption) *UnsplashResolver {
	r := &UnsplashResolver{
		accessKey: accessKey,
		baseURL:   unsplashAPIURL,
		client:    &http.Client{Timeout: 15 * time.Second},
		cacheTTL:  defaultImageTTL,
		log:       log.WithField("component", "image_resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveImage returns the first landscape result for query.
func (r *UnsplashResolver) ResolveImage(ctx context.Context, query string) (string, bool) {
	log := r.log.WithField("query", query)
	if r.accessKey == "" {
		log.Warn("unsplash access key missing, skipping image lookup")
		return "", false
	}

	cacheKey := imageCachePrefix + strings.ToLower(query)
	if r.cache != nil {
		cached, err := r.cache.Get(ctx, cacheKey).Result()
		switch {
		case err == nil && cached != "":
			return cached, true
		case err != nil && !errors.Is(err, redis.Nil):
			log.WithError(err).Warn("image cache read failed")
		}
	}

	imageURL, err := r.search(ctx, query)
	if err != nil {
		log.WithError(err).Warn("image lookup failed")
		return "", false
	}
	if imageURL == "" {
		log.Info("no image found")
		return "", false
	}

	if r.mirror != nil {
		mirrored, err := r.mirrorImage(ctx, imageURL)
		if err != nil {
			log.WithError(err).Warn("failed to mirror image to S3, returning original URL")
		} else {
			imageURL = mirrored
		}
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, cacheKey, imageURL, r.cacheTTL).Err(); err != nil {
			log.WithError(err).Warn("image cache write failed")
		}
	}
	return imageURL, true
}

func (r *UnsplashResolver) search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("orientation", "landscape")
	params.Set("per_page", "1")
	params.Set("client_id", r.accessKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/search/photos?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept-Version", "v1")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("unsplash returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result unsplashSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Results) == 0 {
		return "", nil
	}
	return result.Results[0].URLs.Regular, nil
}

// mirrorImage downloads imageURL and uploads it to the mirror bucket.
func (r *UnsplashResolver) mirrorImage(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image, status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMirroredImageSz))
	if err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	key := fmt.Sprintf("recipe-images/%s.jpg", uuid.NewString())

	_, err = r.mirror.putter.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.mirror.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return r.mirror.urlFor(key), nil
}
