package views

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/docadmin/internal/client/models"
	"github.com/dmitrijs2005/docadmin/internal/client/services"
	"github.com/dmitrijs2005/docadmin/internal/logging"
	"github.com/dmitrijs2005/docadmin/internal/netx"
)

// FileUploader sends a local file to an uploadable collection.
type FileUploader interface {
	Upload(ctx context.Context, res services.Resource, path string, progress netx.ProgressFunc) (models.UploadResult, error)
}

// FileDownloader saves a remote file locally and returns its path.
type FileDownloader interface {
	Download(ctx context.Context, id int64) (string, error)
}

// Uploader is the upload widget of a screen.
type Uploader struct {
	files    FileUploader
	res      services.Resource
	progress netx.ProgressFunc
	done     func(ctx context.Context) error
	notify   Notifier
	log      logging.Logger
}

// NewUploader returns an uploader for res. progress receives transfer
// snapshots; done runs after a successful upload (the list refresh).
func NewUploader(files FileUploader, res services.Resource, progress netx.ProgressFunc, done func(ctx context.Context) error, n Notifier, log logging.Logger) *Uploader {
	if log == nil {
		log = logging.Nop()
	}
	return &Uploader{files: files, res: res, progress: progress, done: done, notify: orNop(n), log: log}
}

// Upload sends the file at path. Notifications name the file.
func (u *Uploader) Upload(ctx context.Context, path string) (models.UploadResult, error) {
	name := filepath.Base(path)

	res, err := u.files.Upload(ctx, u.res, path, u.progress)
	if err != nil {
		u.log.Error(ctx, "upload failed", "file", name, "error", err)
		failure(u.notify, fmt.Sprintf("%s upload failed.", name))
		return models.UploadResult{}, err
	}

	u.log.Info(ctx, "upload done", "file", name, "ids", res.FileIDs)
	success(u.notify, fmt.Sprintf("%s uploaded successfully", name))
	if u.done != nil {
		_ = u.done(ctx)
	}
	return res, nil
}

// Downloader is the download action of the files screen.
type Downloader struct {
	files  FileDownloader
	notify Notifier
	log    logging.Logger
}

func NewDownloader(files FileDownloader, n Notifier, log logging.Logger) *Downloader {
	if log == nil {
		log = logging.Nop()
	}
	return &Downloader{files: files, notify: orNop(n), log: log}
}

func (d *Downloader) Download(ctx context.Context, id int64) (string, error) {
	path, err := d.files.Download(ctx, id)
	if err != nil {
		d.log.Error(ctx, "download failed", "id", id, "error", err)
		failure(d.notify, fmt.Sprintf("download failed: %v", err))
		return "", err
	}
	success(d.notify, "saved "+path)
	return path, nil
}
