package patroller

import (
	"context"
	"fmt"

	"github.com/wikibots/redirect-patroller/internal/config"
	"github.com/wikibots/redirect-patroller/internal/trustlist"
)

// TrustMarkers returns the configured markers, or the defaults when unset.
func TrustMarkers(cfg config.TrustListConfig) trustlist.Markers {
	if cfg.StartMarker == "" || cfg.EndMarker == "" {
		return trustlist.DefaultMarkers()
	}
	return trustlist.Markers{Start: cfg.StartMarker, End: cfg.EndMarker}
}

// LoadTrustList reads and parses the trust list page. No page means nobody is
// trusted; a page that cannot be read or parsed is an error.
func LoadTrustList(ctx context.Context, reader PageReader, page string, markers trustlist.Markers) (trustlist.Set, error) {
	if page == "" {
		return trustlist.NewSet(), nil
	}

	content, err := reader.PageContent(ctx, page)
	if err != nil {
		return trustlist.Set{}, fmt.Errorf("read trust list %s: %w", page, err)
	}
	set, err := trustlist.Parse(content, markers)
	if err != nil {
		return trustlist.Set{}, fmt.Errorf("parse trust list %s: %w", page, err)
	}
	return set, nil
}
