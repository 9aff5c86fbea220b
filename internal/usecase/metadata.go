package usecase

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/wishgifthub/wishgifthub/internal/domain"
)

type MetadataUsecase struct {
	gateway MetadataGateway
}

func NewMetadataUsecase(gateway MetadataGateway) *MetadataUsecase {
	return &MetadataUsecase{gateway: gateway}
}

// Extract resolves a product URL into best-effort metadata. Scrape
// failures degrade to an empty result rather than an error; only a
// malformed URL is rejected.
func (uc *MetadataUsecase) Extract(ctx context.Context, rawURL string) (domain.ProductMetadata, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return domain.ProductMetadata{}, domain.ValidationError{Field: "url", Reason: "must be an absolute http(s) url"}
	}

	meta, err := uc.gateway.Extract(ctx, rawURL)
	if err != nil {
		slog.WarnContext(ctx, "metadata extraction failed",
			slog.String("url", rawURL),
			slog.String("error", err.Error()),
		)
		return domain.ProductMetadata{URL: rawURL}, nil
	}
	return meta, nil
}
