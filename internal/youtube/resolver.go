package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

var (
	// ErrChannelNotFound means no channel matches the handle.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrThrottled means the lookup backend refused the request for quota reasons.
	ErrThrottled = errors.New("channel lookup throttled")

	channelIDRegex = regexp.MustCompile(`/channel/(UC[0-9A-Za-z_-]{22})`)
)

// ChannelData is the result of resolving a handle.
type ChannelData struct {
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name"`
}

// Resolver turns a channel handle into its stable id and display name.
type Resolver interface {
	Resolve(ctx context.Context, handle string) (ChannelData, error)
}

// APIResolver resolves handles with the YouTube Data API.
type APIResolver struct {
	service *ytapi.Service
}

// NewAPIResolver creates a resolver authenticated with an API key. Extra
// options are passed to the API client.
func NewAPIResolver(ctx context.Context, apiKey string, opts ...option.ClientOption) (*APIResolver, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return &APIResolver{service: service}, nil
}

func (r *APIResolver) Resolve(ctx context.Context, handle string) (ChannelData, error) {
	if handle == "" {
		return ChannelData{}, errors.New("missing handle")
	}

	resp, err := r.service.Channels.List([]string{"snippet", "id"}).
		ForHandle(handle).
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusForbidden || apiErr.Code == http.StatusTooManyRequests) {
			return ChannelData{}, fmt.Errorf("%w: %v", ErrThrottled, err)
		}
		return ChannelData{}, fmt.Errorf("failed to fetch channel data: %w", err)
	}

	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return ChannelData{}, ErrChannelNotFound
	}

	return ChannelData{
		ChannelID:   resp.Items[0].Id,
		ChannelName: resp.Items[0].Snippet.Title,
	}, nil
}

// PageResolver resolves handles by reading the metadata of the public channel
// page. It needs no API key.
type PageResolver struct {
	client  *http.Client
	baseURL string
}

// NewPageResolver creates a PageResolver. An empty baseURL selects youtube.com.
func NewPageResolver(client *http.Client, baseURL string) *PageResolver {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = "https://www.youtube.com"
	}
	return &PageResolver{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (r *PageResolver) Resolve(ctx context.Context, handle string) (ChannelData, error) {
	if handle == "" {
		return ChannelData{}, errors.New("missing handle")
	}
	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/"+handle, nil)
	if err != nil {
		return ChannelData{}, err
	}
	// Skips the consent interstitial served to cookieless clients in some regions.
	req.AddCookie(&http.Cookie{Name: "CONSENT", Value: "YES+1"})

	resp, err := r.client.Do(req)
	if err != nil {
		return ChannelData{}, fmt.Errorf("failed to fetch channel page: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ChannelData{}, ErrChannelNotFound
	case http.StatusTooManyRequests:
		return ChannelData{}, ErrThrottled
	default:
		return ChannelData{}, fmt.Errorf("failed to fetch channel page: HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ChannelData{}, fmt.Errorf("failed to parse channel page: %w", err)
	}

	channelID, _ := doc.Find(`meta[itemprop="identifier"]`).Attr("content")
	if channelID == "" {
		href, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
		if m := channelIDRegex.FindStringSubmatch(href); m != nil {
			channelID = m[1]
		}
	}
	if channelID == "" {
		return ChannelData{}, ErrChannelNotFound
	}

	name, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	if name == "" {
		name = strings.TrimSuffix(strings.TrimSpace(doc.Find("title").First().Text()), " - YouTube")
	}

	return ChannelData{ChannelID: channelID, ChannelName: name}, nil
}

// ChainResolver asks each resolver in turn until one answers. A definite
// ErrChannelNotFound stops the chain.
type ChainResolver []Resolver

func (c ChainResolver) Resolve(ctx context.Context, handle string) (ChannelData, error) {
	err := error(ErrChannelNotFound)
	for _, r := range c {
		var data ChannelData
		data, err = r.Resolve(ctx, handle)
		if err == nil || errors.Is(err, ErrChannelNotFound) {
			return data, err
		}
	}
	return ChannelData{}, err
}
