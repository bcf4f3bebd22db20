package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clipper/internal/api/v1/dto"
	"clipper/internal/middleware"
	"clipper/internal/model"
	"clipper/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var nopLogger = zerolog.New(io.Discard)

// testAuth trusts the X-Test-User header in place of a bearer token.
func testAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if u := r.Header.Get("X-Test-User"); u != "" {
			ctx = context.WithValue(ctx, middleware.UserContextKey, u)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type fakeUploads struct{ err error }

func (f *fakeUploads) InitiateUpload(ctx context.Context, userID, filename, contentType string) (*model.UploadedFile, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return &model.UploadedFile{ID: "file-1", UserID: userID, S3Key: "uploads/file-1/original.mp4"}, "https://s3.test/put", nil
}

type fakeProcessing struct{ err error }

func (f *fakeProcessing) Submit(ctx context.Context, userID, uploadedFileID string) (*service.SubmitResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.SubmitResult{Enqueued: true, MessageID: "m-1"}, nil
}

type fakeClips struct {
	playErr   error
	deleteErr error
	deletion  *service.ClipDeletion
}

func (f *fakeClips) GetPlaybackURL(ctx context.Context, clipID, userID string) (string, error) {
	if f.playErr != nil {
		return "", f.playErr
	}
	return "https://s3.test/" + clipID, nil
}

func (f *fakeClips) DeleteClip(ctx context.Context, clipID, userID string) (*service.ClipDeletion, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return f.deletion, nil
}

type fakeBilling struct {
	webhookErr error
	outcome    *service.WebhookOutcome
	lastPack   string
}

func (f *fakeBilling) CreateCheckoutSession(ctx context.Context, userID, packName string) (string, error) {
	f.lastPack = packName
	return "https://checkout.test/" + packName, nil
}

func (f *fakeBilling) HandleWebhook(ctx context.Context, payload []byte, signature string) (*service.WebhookOutcome, error) {
	if f.webhookErr != nil {
		return nil, f.webhookErr
	}
	return f.outcome, nil
}

type fakeDashboard struct{}

func (fakeDashboard) GetDashboard(ctx context.Context, userID string) (*model.Dashboard, error) {
	return &model.Dashboard{
		Credits:       60,
		UploadedFiles: []model.UploadedFileSummary{{UploadedFile: model.UploadedFile{ID: "file-1", Status: "queued", Uploaded: true}, ClipCount: 2}},
		Clips:         []model.Clip{{ID: "clip-a"}},
	}, nil
}

type fakeDLQ struct{ err error }

func (f *fakeDLQ) ProcessAndSave(ctx context.Context, req *dto.PubSubPushRequest) error { return f.err }

func do(t *testing.T, h http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUploadRoutes(t *testing.T) {
	proc := &fakeProcessing{}
	mux := http.NewServeMux()
	NewUploadHandler(&fakeUploads{}, proc, validator.New(validator.WithRequiredStructEnabled()), nopLogger).RegisterRoutes(mux, testAuth)

	rec := do(t, mux, http.MethodPost, "/uploads", "user-1", `{"filename":"a.mp4","content_type":"video/mp4"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body)
	}
	var created dto.UploadResponseDTO
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil || created.UploadURL == "" {
		t.Fatalf("create: bad body %+v err %v", created, err)
	}

	if rec := do(t, mux, http.MethodPost, "/uploads", "user-1", `{"filename":"a.pdf","content_type":"application/pdf"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid content type: status %d", rec.Code)
	}
	if rec := do(t, mux, http.MethodPost, "/uploads", "", `{"filename":"a.mp4","content_type":"video/mp4"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no caller: status %d", rec.Code)
	}

	rec = do(t, mux, http.MethodPost, "/uploads/file-1/process", "user-1", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("process: status %d", rec.Code)
	}
	if rec := do(t, mux, http.MethodGet, "/uploads/file-1/process", "user-1", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("process GET: status %d", rec.Code)
	}

	proc.err = fmt.Errorf("%w: uploaded file x", service.ErrNotFound)
	if rec := do(t, mux, http.MethodPost, "/uploads/x/process", "user-1", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("process missing: status %d", rec.Code)
	}
	proc.err = fmt.Errorf("%w: enqueue: dial tcp 10.0.0.1:443", service.ErrUpstreamFailure)
	rec = do(t, mux, http.MethodPost, "/uploads/file-1/process", "user-1", "")
	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "10.0.0.1") {
		t.Fatalf("upstream failure: status %d body %q", rec.Code, rec.Body)
	}
}

func TestClipRoutes(t *testing.T) {
	clips := &fakeClips{deletion: &service.ClipDeletion{RecordDeleted: true, ObjectDeleted: true}}
	mux := http.NewServeMux()
	NewClipHandler(clips, time.Hour, nopLogger).RegisterRoutes(mux, testAuth)

	rec := do(t, mux, http.MethodGet, "/clips/clip-a/play-url", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("play-url: status %d", rec.Code)
	}
	var play dto.PlaybackURLResponseDTO
	if err := json.NewDecoder(rec.Body).Decode(&play); err != nil || play.ExpiresInSeconds != 3600 {
		t.Fatalf("play-url: body %+v err %v", play, err)
	}

	clips.playErr = fmt.Errorf("%w: AccessDenied bucket=private", service.ErrPresignFailed)
	rec = do(t, mux, http.MethodGet, "/clips/clip-a/play-url", "user-1", "")
	if rec.Code != http.StatusInternalServerError || strings.TrimSpace(rec.Body.String()) != "Failed to generate play URL" {
		t.Fatalf("presign failure: status %d body %q", rec.Code, rec.Body)
	}
	clips.playErr = service.ErrNotFound
	if rec := do(t, mux, http.MethodGet, "/clips/clip-z/play-url", "user-1", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing clip: status %d", rec.Code)
	}

	rec = do(t, mux, http.MethodDelete, "/clips/clip-a", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d", rec.Code)
	}
	clips.deletion = &service.ClipDeletion{RecordDeleted: true, ObjectErr: errors.New("boom")}
	rec = do(t, mux, http.MethodDelete, "/clips/clip-a", "user-1", "")
	var del dto.ClipDeleteResponseDTO
	if err := json.NewDecoder(rec.Body).Decode(&del); err != nil || !del.Success || del.ObjectDeleted || del.Warning == "" {
		t.Fatalf("partial delete: body %+v err %v", del, err)
	}
	clips.deleteErr = fmt.Errorf("%w: pq: connection refused", service.ErrDeleteFailed)
	rec = do(t, mux, http.MethodDelete, "/clips/clip-a", "user-1", "")
	if rec.Code != http.StatusInternalServerError || strings.TrimSpace(rec.Body.String()) != "Failed to delete clip" {
		t.Fatalf("delete failure: status %d body %q", rec.Code, rec.Body)
	}

	if rec := do(t, mux, http.MethodPut, "/clips/clip-a", "user-1", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("PUT: status %d", rec.Code)
	}
	if rec := do(t, mux, http.MethodGet, "/clips/clip-a/play-url", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no caller: status %d", rec.Code)
	}
}

func TestStripeWebhookStatusMapping(t *testing.T) {
	billing := &fakeBilling{}
	mux := http.NewServeMux()
	NewBillingHandler(billing, validator.New(), nopLogger).RegisterRoutes(mux, testAuth)

	cases := []struct {
		err    error
		status int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("%w: bad sig", service.ErrSignatureInvalid), http.StatusBadRequest},
		{fmt.Errorf("%w: \"price_x\"", service.ErrUnknownSku), http.StatusBadRequest},
		{fmt.Errorf("%w: no customer", service.ErrMalformedPayload), http.StatusBadRequest},
		{fmt.Errorf("%w: cus_1", service.ErrUserNotFound), http.StatusNotFound},
		{errors.New("failed to apply credit grant: deadlock"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		billing.webhookErr = tc.err
		billing.outcome = &service.WebhookOutcome{EventID: "evt_1"}
		rec := do(t, mux, http.MethodPost, "/webhooks/stripe", "", `{"id":"evt_1"}`)
		if rec.Code != tc.status {
			t.Errorf("err %v: status %d, want %d", tc.err, rec.Code, tc.status)
		}
	}
}

func TestCheckout(t *testing.T) {
	billing := &fakeBilling{}
	mux := http.NewServeMux()
	NewBillingHandler(billing, validator.New(), nopLogger).RegisterRoutes(mux, testAuth)

	rec := do(t, mux, http.MethodPost, "/billing/checkout", "user-1", `{"pack":"medium"}`)
	if rec.Code != http.StatusOK || billing.lastPack != "medium" {
		t.Fatalf("checkout: status %d pack %q", rec.Code, billing.lastPack)
	}
	if rec := do(t, mux, http.MethodPost, "/billing/checkout", "user-1", `{"pack":"giant"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad pack: status %d", rec.Code)
	}
	if rec := do(t, mux, http.MethodPost, "/billing/checkout", "", `{"pack":"small"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no caller: status %d", rec.Code)
	}
}

func TestDashboard(t *testing.T) {
	mux := http.NewServeMux()
	NewDashboardHandler(fakeDashboard{}, nopLogger).RegisterRoutes(mux, testAuth)

	rec := do(t, mux, http.MethodGet, "/dashboard", "user-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var d dto.DashboardResponseDTO
	if err := json.NewDecoder(rec.Body).Decode(&d); err != nil {
		t.Fatal(err)
	}
	if d.Credits != 60 || len(d.UploadedFiles) != 1 || d.UploadedFiles[0].ClipCount != 2 || len(d.Clips) != 1 {
		t.Fatalf("unexpected body %+v", d)
	}
}

func TestRecordDLQ(t *testing.T) {
	dlq := &fakeDLQ{err: errors.New("db down")}
	mux := http.NewServeMux()
	NewDLQHandler(dlq, nopLogger).RegisterRoutes(mux, func(h http.Handler) http.Handler { return h })

	body := `{"subscription":"s","message":{"data":"e30=","messageId":"m-1"}}`
	if rec := do(t, mux, http.MethodPost, "/dlq", "", body); rec.Code != http.StatusNoContent {
		t.Fatalf("save failure should still ack: status %d", rec.Code)
	}
	if rec := do(t, mux, http.MethodPost, "/dlq", "", `{"message":{}}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing message id: status %d", rec.Code)
	}
}
