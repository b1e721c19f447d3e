package cover

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/covergen/covergen-api/internal/domain/credit"
	"github.com/covergen/covergen-api/internal/pkg/imaging"
	"github.com/covergen/covergen-api/internal/pkg/storage"
)

// maxImageBytes bounds the decoded upload, matching the largest cover the
// editor can produce with headroom.
const maxImageBytes = 10 << 20

// CreditLedger is the slice of the credit service the exporter needs.
type CreditLedger interface {
	Deduct(ctx context.Context, userID uuid.UUID, amount int, actionType string, meta credit.Meta) error
	Refund(ctx context.Context, userID uuid.UUID, amount int, actionType string, meta credit.Meta) error
}

type Service interface {
	Export(ctx context.Context, userID uuid.UUID, req ExportRequest) (*ExportResult, error)
}

type service struct {
	credits   CreditLedger
	processor *imaging.Processor
	store     storage.Storage
}

func NewService(credits CreditLedger, processor *imaging.Processor, store storage.Storage) Service {
	return &service{credits: credits, processor: processor, store: store}
}

// Export debits one credit, normalizes the uploaded cover and uploads it.
// Failures after the debit refund the credit so the user only pays for
// covers that actually made it to storage.
func (s *service) Export(ctx context.Context, userID uuid.UUID, req ExportRequest) (*ExportResult, error) {
	data, err := decodeImageData(req.ImageData)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("covers/%s/%s.png", userID, uuid.New())
	meta := credit.Meta{Reference: key, Description: req.Title}

	if err := s.credits.Deduct(ctx, userID, credit.CostCoverExport, credit.ActionCoverExport, meta); err != nil {
		return nil, err
	}

	processed, err := s.processor.Process(data)
	if err != nil {
		s.refund(ctx, userID, meta)
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	if err := s.store.Put(ctx, key, bytes.NewReader(processed.Data), processed.ContentType); err != nil {
		s.refund(ctx, userID, meta)
		log.Error().Err(err).Str("key", key).Msg("cover upload failed")
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}

	return &ExportResult{
		URL:         s.store.URL(key),
		Width:       processed.Width,
		Height:      processed.Height,
		CreditsUsed: credit.CostCoverExport,
	}, nil
}

func (s *service) refund(ctx context.Context, userID uuid.UUID, meta credit.Meta) {
	// Best effort; Refund logs when the ledger could not be restored.
	s.credits.Refund(ctx, userID, credit.CostCoverExport, credit.ActionCoverExport, meta)
}

// decodeImageData accepts either a bare base64 string or a data URL such as
// "data:image/png;base64,...".
func decodeImageData(imageData string) ([]byte, error) {
	payload := imageData
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return nil, ErrInvalidImage
		}
		payload = payload[idx+1:]
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > maxImageBytes {
		return nil, ErrImageTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return nil, ErrInvalidImage
	}
	return data, nil
}
