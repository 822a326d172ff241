package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	types "github.com/dashfault/dashfault-backend/internal/domain"
	"github.com/dashfault/dashfault-backend/internal/pdf"
	"github.com/dashfault/dashfault-backend/internal/platform/dbctx"
)

func dbctxBackground() dbctx.Context {
	return dbctx.Context{Ctx: context.Background()}
}

// fakeBucket keeps objects in memory and signs fake URLs.
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}}
}

func (fb *fakeBucket) UploadFile(ctx context.Context, key string, file io.Reader) error {
	raw, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.objects[key] = raw
	return nil
}

func (fb *fakeBucket) DeleteFile(ctx context.Context, key string) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if _, ok := fb.objects[key]; !ok {
		return fmt.Errorf("object %q not found", key)
	}
	delete(fb.objects, key)
	fb.deleted = append(fb.deleted, key)
	return nil
}

func (fb *fakeBucket) DownloadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	raw, ok := fb.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %q not found", key)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (fb *fakeBucket) SignedPutURL(key, contentType string, ttl time.Duration) (string, error) {
	return "https://storage.test/put/" + key, nil
}

func (fb *fakeBucket) SignedGetURL(key string, ttl time.Duration) (string, error) {
	return "https://storage.test/get/" + key, nil
}

func (fb *fakeBucket) has(key string) bool {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	_, ok := fb.objects[key]
	return ok
}

func (fb *fakeBucket) put(key string, raw []byte) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.objects[key] = raw
}

// fakePushClient records every send.
type fakePushClient struct {
	mu    sync.Mutex
	sends []pushRecord
	err   error
}

type pushRecord struct {
	Token    string
	Title    string
	Body     string
	ReportID string
}

func (fp *fakePushClient) Send(ctx context.Context, token, title, body, reportID string) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if fp.err != nil {
		return fp.err
	}
	fp.sends = append(fp.sends, pushRecord{Token: token, Title: title, Body: body, ReportID: reportID})
	return nil
}

func (fp *fakePushClient) sent() []pushRecord {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	out := make([]pushRecord, len(fp.sends))
	copy(out, fp.sends)
	return out
}

// fakeAnalysisClient records handoffs.
type fakeAnalysisClient struct {
	mu       sync.Mutex
	requests []uuid.UUID
	err      error
}

func (fa *fakeAnalysisClient) RequestAnalysis(ctx context.Context, mediaAssetID uuid.UUID, videoURL string) error {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	if fa.err != nil {
		return fa.err
	}
	fa.requests = append(fa.requests, mediaAssetID)
	return nil
}

// fakeRenderer emits a constant document.
type fakeRenderer struct {
	renders int
	err     error
}

func (fr *fakeRenderer) Render(data pdf.ReportData) ([]byte, error) {
	fr.renders++
	if fr.err != nil {
		return nil, fr.err
	}
	return []byte("%PDF-1.4 fake " + data.ReportID), nil
}

// fakePushTokenRepo backs dispatcher tests without a database.
type fakePushTokenRepo struct {
	tokens map[uuid.UUID]string
}

func (fr *fakePushTokenRepo) Upsert(dbc dbctx.Context, userID uuid.UUID, token string) error {
	if fr.tokens == nil {
		fr.tokens = map[uuid.UUID]string{}
	}
	fr.tokens[userID] = token
	return nil
}

func (fr *fakePushTokenRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.PushToken, error) {
	token, ok := fr.tokens[userID]
	if !ok {
		return nil, nil
	}
	return &types.PushToken{ID: uuid.New(), UserID: userID, Token: token}, nil
}
