package cover_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/google/uuid"

	"github.com/covergen/covergen-api/internal/domain/cover"
	"github.com/covergen/covergen-api/internal/domain/credit"
	"github.com/covergen/covergen-api/internal/pkg/imaging"
)

type fakeLedger struct {
	balance int
	deducts int
	refunds int
}

func (f *fakeLedger) Deduct(ctx context.Context, userID uuid.UUID, amount int, actionType string, meta credit.Meta) error {
	if f.balance < amount {
		return credit.ErrInsufficientCredits
	}
	f.balance -= amount
	f.deducts++
	return nil
}

func (f *fakeLedger) Refund(ctx context.Context, userID uuid.UUID, amount int, actionType string, meta credit.Meta) error {
	f.balance += amount
	f.refunds++
	return nil
}

type fakeStorage struct {
	fail bool
	keys []string
}

func (f *fakeStorage) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if f.fail {
		return errors.New("bucket unavailable")
	}
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error { return nil }
func (f *fakeStorage) URL(key string) string                        { return "https://cdn.test/" + key }

func testImageData(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newTestService(ledger *fakeLedger, store *fakeStorage) cover.Service {
	return cover.NewService(ledger, imaging.NewProcessor(imaging.DefaultConfig()), store)
}

func TestExportDeductsOneCredit(t *testing.T) {
	ledger := &fakeLedger{balance: 10}
	store := &fakeStorage{}
	svc := newTestService(ledger, store)

	result, err := svc.Export(context.Background(), uuid.New(), cover.ExportRequest{
		ImageData: testImageData(t, 645, 860),
		Title:     "My Thesis",
	})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if ledger.balance != 9 || ledger.deducts != 1 || ledger.refunds != 0 {
		t.Fatalf("unexpected ledger state: %+v", ledger)
	}
	if result.CreditsUsed != credit.CostCoverExport {
		t.Fatalf("expected credits_used %d, got %d", credit.CostCoverExport, result.CreditsUsed)
	}
	if len(store.keys) != 1 || result.URL != "https://cdn.test/"+store.keys[0] {
		t.Fatalf("unexpected storage state: keys=%v url=%s", store.keys, result.URL)
	}
}

func TestExportAcceptsDataURL(t *testing.T) {
	ledger := &fakeLedger{balance: 10}
	svc := newTestService(ledger, &fakeStorage{})

	_, err := svc.Export(context.Background(), uuid.New(), cover.ExportRequest{
		ImageData: "data:image/png;base64," + testImageData(t, 645, 860),
	})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
}

func TestExportInsufficientCredits(t *testing.T) {
	ledger := &fakeLedger{balance: 0}
	store := &fakeStorage{}
	svc := newTestService(ledger, store)

	_, err := svc.Export(context.Background(), uuid.New(), cover.ExportRequest{
		ImageData: testImageData(t, 645, 860),
	})
	if !errors.Is(err, credit.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if len(store.keys) != 0 {
		t.Fatalf("nothing should be stored, got %v", store.keys)
	}
}

func TestExportRefundsOnStorageFailure(t *testing.T) {
	ledger := &fakeLedger{balance: 5}
	svc := newTestService(ledger, &fakeStorage{fail: true})

	_, err := svc.Export(context.Background(), uuid.New(), cover.ExportRequest{
		ImageData: testImageData(t, 645, 860),
	})
	if !errors.Is(err, cover.ErrStorageFailed) {
		t.Fatalf("expected ErrStorageFailed, got %v", err)
	}
	if ledger.balance != 5 || ledger.refunds != 1 {
		t.Fatalf("debit not compensated: %+v", ledger)
	}
}

func TestExportRefundsOnBadImage(t *testing.T) {
	ledger := &fakeLedger{balance: 5}
	svc := newTestService(ledger, &fakeStorage{})

	garbage := base64.StdEncoding.EncodeToString([]byte("not a png"))
	_, err := svc.Export(context.Background(), uuid.New(), cover.ExportRequest{ImageData: garbage})
	if !errors.Is(err, cover.ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
	if ledger.balance != 5 || ledger.refunds != 1 {
		t.Fatalf("debit not compensated: %+v", ledger)
	}
}

func TestExportRejectsInvalidBase64(t *testing.T) {
	ledger := &fakeLedger{balance: 5}
	svc := newTestService(ledger, &fakeStorage{})

	_, err := svc.Export(context.Background(), uuid.New(), cover.ExportRequest{ImageData: "%%%not-base64%%%"})
	if !errors.Is(err, cover.ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
	// Rejected before the debit.
	if ledger.deducts != 0 {
		t.Fatalf("should not deduct for undecodable payload: %+v", ledger)
	}
}
