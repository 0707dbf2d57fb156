package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docadmin/internal/client/client"
	"github.com/dmitrijs2005/docadmin/internal/client/models"
	"github.com/dmitrijs2005/docadmin/internal/netx"
)

func TestFileService_Upload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 data"), 0o600))

	fc := &fakeClient{UploadResp: `{"file_ids":[3]}`}
	svc := NewFileService(fc, dir)

	var got []netx.Progress
	res, err := svc.Upload(context.Background(), PdfArticles, path, func(p netx.Progress) { got = append(got, p) })
	require.NoError(t, err)

	assert.Equal(t, []int64{3}, res.FileIDs)
	assert.Equal(t, "/api/pdf_articles", fc.calls[0].Path)
	assert.Equal(t, "file", fc.LastUpload.Field)
	assert.Equal(t, "report.pdf", fc.LastUpload.Name)
	assert.EqualValues(t, 13, fc.LastUpload.Size)
	assert.Equal(t, "%PDF-1.4 data", fc.UploadContent)
	require.Len(t, got, 1)
}

func TestFileService_UploadErrors(t *testing.T) {
	svc := NewFileService(&fakeClient{}, t.TempDir())

	_, err := svc.Upload(context.Background(), Articles, "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not accept uploads")

	_, err = svc.Upload(context.Background(), Files, filepath.Join(t.TempDir(), "missing.bin"), nil)
	require.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o600))
	svc = NewFileService(&fakeClient{UploadErr: client.ErrServer}, t.TempDir())
	_, err = svc.Upload(context.Background(), Files, path, nil)
	require.ErrorIs(t, err, client.ErrServer)
	assert.Contains(t, err.Error(), "upload a.txt")
}

func TestFileService_Download(t *testing.T) {
	dir := t.TempDir()
	fc := &fakeClient{DownloadResp: &client.Download{Body: body("%PDF"), Filename: "report.pdf"}}
	svc := NewFileService(fc, dir)

	path, err := svc.Download(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.pdf"), path)
	assert.Equal(t, "/api/files/7", fc.calls[0].Path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(b))
}

func TestFileService_DownloadSanitizesAndFallsBack(t *testing.T) {
	dir := t.TempDir()

	fc := &fakeClient{DownloadResp: &client.Download{Body: body("x"), Filename: "../../etc/passwd"}}
	path, err := NewFileService(fc, dir).Download(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "passwd"), path)

	fc = &fakeClient{DownloadResp: &client.Download{Body: body("y"), Filename: ""}}
	path, err = NewFileService(fc, dir).Download(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "download.bin"), path)
}

func TestFileService_DownloadError(t *testing.T) {
	fc := &fakeClient{DownloadErr: client.ErrNotFound}
	_, err := NewFileService(fc, t.TempDir()).Download(context.Background(), 9)
	require.ErrorIs(t, err, client.ErrNotFound)
}

func TestFileService_Content(t *testing.T) {
	fc := &fakeClient{DownloadResp: &client.Download{Body: body(strings.Repeat("p", 10))}}
	b, err := NewFileService(fc, "").Content(context.Background(), "/api/pdf_articles/3")
	require.NoError(t, err)
	assert.Len(t, b, 10)
	assert.Equal(t, "/api/pdf_articles/3", fc.calls[0].Path)
}

func TestStatService_Home(t *testing.T) {
	fc := &fakeClient{GetResp: `{"pdf_article_count":3,"pdf_article_access_log_count":40,
		"daily_access_stats":[{"day":"2024-03-01","count":12}]}`}
	st, err := NewStatService(fc).Home(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, st.PdfArticleCount)
	assert.EqualValues(t, 40, st.PdfArticleAccessLogCount)
	require.Len(t, st.DailyAccessStats, 1)
	assert.Equal(t, "/api/home/pdf_article_stat", fc.calls[0].Path)

	fc = &fakeClient{GetResp: `{"pdf_article_count":1}`}
	st, err = NewStatService(fc).Home(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, st.DailyAccessStats)
	assert.Empty(t, st.DailyAccessStats)

	_, err = NewStatService(&fakeClient{GetErr: client.ErrUnavailable}).Home(context.Background())
	require.ErrorIs(t, err, client.ErrUnavailable)
}

type fakeHistory struct {
	got []models.Transfer
	err error
}

func (h *fakeHistory) Create(_ context.Context, t *models.Transfer) error {
	h.got = append(h.got, *t)
	return h.err
}

func TestFileService_RecordsHistory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o600))

	h := &fakeHistory{}
	fc := &fakeClient{UploadResp: `{"file_ids":[9]}`, DownloadResp: &client.Download{Body: body("abc"), Filename: "notes.txt"}}
	svc := NewFileService(fc, dir, WithHistory(h))

	_, err := svc.Upload(context.Background(), PdfArticles, path, nil)
	require.NoError(t, err)
	saved, err := svc.Download(context.Background(), 4)
	require.NoError(t, err)

	require.Len(t, h.got, 2)
	up, down := h.got[0], h.got[1]

	assert.Equal(t, models.TransferUpload, up.Direction)
	assert.Equal(t, "pdf_articles", up.Resource)
	assert.Equal(t, int64(9), up.RemoteID)
	assert.Equal(t, "report.pdf", up.Name)
	assert.Equal(t, path, up.LocalPath)
	assert.Equal(t, int64(4), up.Size)
	assert.Equal(t, models.TransferCompleted, up.Status)

	assert.Equal(t, models.TransferDownload, down.Direction)
	assert.Equal(t, "files", down.Resource)
	assert.Equal(t, int64(4), down.RemoteID)
	assert.Equal(t, "notes.txt", down.Name)
	assert.Equal(t, saved, down.LocalPath)
	assert.Equal(t, int64(3), down.Size)
}

func TestFileService_RecordsFailures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o600))

	h := &fakeHistory{err: errors.New("db locked")}
	svc := NewFileService(&fakeClient{UploadErr: client.ErrServer, DownloadErr: client.ErrNotFound}, dir, WithHistory(h))

	_, err := svc.Upload(context.Background(), Files, path, nil)
	require.ErrorIs(t, err, client.ErrServer)
	_, err = svc.Download(context.Background(), 5)
	require.ErrorIs(t, err, client.ErrNotFound)

	require.Len(t, h.got, 2)
	assert.Equal(t, models.TransferFailed, h.got[0].Status)
	assert.NotEmpty(t, h.got[0].Error)
	assert.Equal(t, models.TransferFailed, h.got[1].Status)
	assert.Equal(t, int64(5), h.got[1].RemoteID)
}

func TestFileService_NoRecordForRejectedUpload(t *testing.T) {
	h := &fakeHistory{}
	_, err := NewFileService(&fakeClient{}, t.TempDir(), WithHistory(h)).Upload(context.Background(), Logs, "x", nil)
	require.Error(t, err)
	assert.Empty(t, h.got)
}
