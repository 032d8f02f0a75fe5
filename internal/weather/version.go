package weather

import (
	"context"
	"net/http"
)

// VersionChecker reads a versions document such as {"cards":"1.1.0"}.
type VersionChecker struct {
	url        string
	httpClient *http.Client
}

func NewVersionChecker(url string) *VersionChecker {
	return &VersionChecker{url: url, httpClient: &http.Client{Timeout: defaultHTTPTimeout}}
}

// Latest returns the published watchface version.
func (v *VersionChecker) Latest(ctx context.Context) (string, error) {
	var doc struct {
		Cards string `json:"cards"`
	}
	if err := getJSON(ctx, v.httpClient, v.url, &doc); err != nil {
		return "", err
	}
	return doc.Cards, nil
}

// UpdateAvailable reports whether the published version differs from current.
func (v *VersionChecker) UpdateAvailable(ctx context.Context, current string) (bool, error) {
	latest, err := v.Latest(ctx)
	if err != nil {
		return false, err
	}
	return latest != current, nil
}
