package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
	"go.opentelemetry.io/otel"
	"golang.org/x/net/html"

	"github.com/wishgifthub/wishgifthub/internal/domain"
)

var tracer = otel.Tracer("gateway")

const (
	defaultTimeout = 3 * time.Second
	maxBodyBytes   = 1 << 20 // product pages past 1MiB are cut off
	cacheTTL       = 10 * time.Minute
	userAgent      = "wishgifthub-metadata/1.0"
)

// MetadataGateway fetches a product page and extracts Open Graph
// metadata, best-effort. Results go through two cache tiers: an
// in-process TTL cache and, when configured, a shared memcached.
type MetadataGateway struct {
	client   *http.Client
	cache    *cache.Cache
	memcache *memcache.Client
}

// NewMetadataGateway constructs the gateway. mc may be nil to run
// without the shared tier.
func NewMetadataGateway(mc *memcache.Client) *MetadataGateway {
	httpClient := &http.Client{
		Timeout: defaultTimeout,
	}
	g := &MetadataGateway{
		client:   httpClient,
		cache:    cache.New(cacheTTL, 15*time.Minute),
		memcache: mc,
	}
	httpClient.Transport = g
	return g
}

func (g *MetadataGateway) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

// memcached keys are capped at 250 bytes, so the URL is hashed.
func cacheKey(rawURL string) string {
	return fmt.Sprintf("meta:%016x", xxh3.HashString(rawURL))
}

func (g *MetadataGateway) Extract(ctx context.Context, rawURL string) (domain.ProductMetadata, error) {
	ctx, span := tracer.Start(ctx, "Metadata.Gateway.Extract")
	defer span.End()

	if cached, found := g.cache.Get(rawURL); found {
		return cached.(domain.ProductMetadata), nil
	}

	key := cacheKey(rawURL)
	if g.memcache != nil {
		if item, err := g.memcache.Get(key); err == nil {
			var meta domain.ProductMetadata
			if err := json.Unmarshal(item.Value, &meta); err == nil {
				g.cache.Set(rawURL, meta, cache.DefaultExpiration)
				return meta, nil
			}
		}
	}

	meta, err := g.fetch(ctx, rawURL)
	if err != nil {
		span.RecordError(err)
		return domain.ProductMetadata{}, err
	}

	g.cache.Set(rawURL, meta, cache.DefaultExpiration)
	if g.memcache != nil {
		if payload, err := json.Marshal(meta); err == nil {
			_ = g.memcache.Set(&memcache.Item{
				Key:        key,
				Value:      payload,
				Expiration: int32(cacheTTL / time.Second),
			})
		}
	}
	return meta, nil
}

func (g *MetadataGateway) fetch(ctx context.Context, rawURL string) (domain.ProductMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.ProductMetadata{}, errors.Wrap(err, "metadata: building request failed")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.ProductMetadata{}, errors.Wrap(err, "metadata: fetch failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ProductMetadata{}, errors.Errorf("metadata: fetch returned %d", resp.StatusCode)
	}

	meta := parseMetadata(io.LimitReader(resp.Body, maxBodyBytes))
	meta.URL = rawURL
	return meta, nil
}

// parseMetadata walks the document for Open Graph properties, falling
// back to <title> and <meta name="description">.
func parseMetadata(r io.Reader) domain.ProductMetadata {
	var meta domain.ProductMetadata
	var title string

	doc, err := html.Parse(r)
	if err != nil {
		return meta
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				property, name, content := "", "", ""
				for _, attr := range n.Attr {
					switch attr.Key {
					case "property":
						property = attr.Val
					case "name":
						name = attr.Val
					case "content":
						content = attr.Val
					}
				}
				if content == "" {
					break
				}
				switch property {
				case "og:title":
					meta.Title = content
				case "og:description":
					meta.Description = content
				case "og:image":
					meta.ImageURL = content
				case "product:price:amount", "og:price:amount":
					meta.Price = content
				}
				if name == "description" && meta.Description == "" {
					meta.Description = content
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if meta.Title == "" {
		meta.Title = title
	}
	return meta
}
