package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/docadmin/internal/client/client"
	"github.com/dmitrijs2005/docadmin/internal/client/models"
	"github.com/dmitrijs2005/docadmin/internal/common"
	"github.com/dmitrijs2005/docadmin/internal/filex"
	"github.com/dmitrijs2005/docadmin/internal/logging"
	"github.com/dmitrijs2005/docadmin/internal/netx"
)

const uploadField = "file"

// maxContentSize caps documents loaded fully into memory for viewing.
const maxContentSize = 256 << 20

// TransferRecorder stores the outcome of an upload or download.
type TransferRecorder interface {
	Create(ctx context.Context, t *models.Transfer) error
}

// FileService moves binary payloads between the backend and local disk.
type FileService struct {
	client      client.Client
	downloadDir string
	history     TransferRecorder
	log         logging.Logger
}

type FileOption func(*FileService)

// WithHistory records every upload and download attempt in h.
func WithHistory(h TransferRecorder) FileOption {
	return func(s *FileService) { s.history = h }
}

func WithFileLogger(l logging.Logger) FileOption {
	return func(s *FileService) {
		if l != nil {
			s.log = l
		}
	}
}

func NewFileService(c client.Client, downloadDir string, opts ...FileOption) *FileService {
	s := &FileService{client: c, downloadDir: downloadDir, log: logging.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// record never fails the transfer itself.
func (s *FileService) record(ctx context.Context, t *models.Transfer, err error) {
	if s.history == nil {
		return
	}
	t.Status = models.TransferCompleted
	if err != nil {
		t.Status = models.TransferFailed
		t.Error = err.Error()
	}
	if herr := s.history.Create(ctx, t); herr != nil {
		s.log.Warn(ctx, "failed to record transfer", "name", t.Name, "error", herr)
	}
}

// Upload streams the local file at path to res as multipart form data under
// the field "file".
func (s *FileService) Upload(ctx context.Context, res Resource, path string, progress netx.ProgressFunc) (models.UploadResult, error) {
	if !res.Uploadable {
		return models.UploadResult{}, fmt.Errorf("%s does not accept uploads", res.Name)
	}

	f, err := os.Open(path)
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	size := int64(-1)
	if fi, err := f.Stat(); err == nil && fi.Mode().IsRegular() {
		size = fi.Size()
	}

	name := filepath.Base(path)
	var out models.UploadResult
	err = s.client.Upload(ctx, res.Path, client.UploadFile{
		Field:  uploadField,
		Name:   name,
		Reader: f,
		Size:   size,
	}, progress, &out)

	t := &models.Transfer{Direction: models.TransferUpload, Resource: res.Name, Name: name, LocalPath: path, Size: size}
	if len(out.FileIDs) > 0 {
		t.RemoteID = out.FileIDs[0]
	}
	s.record(ctx, t, err)

	if err != nil {
		return models.UploadResult{}, fmt.Errorf("upload %s: %w", name, err)
	}
	return out, nil
}

// Download fetches file id and saves it in the download directory under the
// name given by the server. Existing files are never overwritten.
func (s *FileService) Download(ctx context.Context, id int64) (string, error) {
	t := &models.Transfer{Direction: models.TransferDownload, Resource: Files.Name, RemoteID: id, Size: -1}

	path, err := s.download(ctx, id, t)
	s.record(ctx, t, err)
	if err != nil {
		return "", fmt.Errorf("download file %d: %w", id, err)
	}
	return path, nil
}

func (s *FileService) download(ctx context.Context, id int64, t *models.Transfer) (string, error) {
	d, err := s.client.Download(ctx, Files.ItemPath(id))
	if err != nil {
		return "", err
	}
	defer d.Body.Close()

	t.Name = filex.SanitizeName(d.Filename, common.DefaultDownloadName)
	path, n, err := filex.Save(s.downloadDir, t.Name, d.Body)
	if err != nil {
		return "", err
	}
	t.LocalPath, t.Size = path, n
	return path, nil
}

// Content loads the binary payload at path into memory.
func (s *FileService) Content(ctx context.Context, path string) ([]byte, error) {
	d, err := s.client.Download(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer d.Body.Close()

	b, err := io.ReadAll(io.LimitReader(d.Body, maxContentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(b) > maxContentSize {
		return nil, fmt.Errorf("%s: document larger than %d bytes", path, maxContentSize)
	}
	return b, nil
}
