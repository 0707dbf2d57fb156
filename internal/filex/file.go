// Package filex saves downloaded payloads into a local directory.
package filex

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const maxUniqueAttempts = 1000

// EnsureDir creates dir (and parents) if needed and returns its absolute
// path. A relative dir is resolved against the current working directory.
func EnsureDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// SanitizeName reduces name to a safe base file name. Directory components
// and control characters are stripped; an empty result becomes fallback.
func SanitizeName(name, fallback string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)

	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == ':' {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)

	switch name {
	case "", ".", "..", "/":
		return fallback
	}
	return name
}

// Save writes r into dir under name. An existing file is never overwritten:
// "report.pdf" becomes "report (1).pdf", "report (2).pdf" and so on. It
// returns the path written and the number of bytes copied.
func Save(dir, name string, r io.Reader) (string, int64, error) {
	dir, err := EnsureDir(dir)
	if err != nil {
		return "", 0, err
	}

	f, path, err := createUnique(dir, name)
	if err != nil {
		return "", 0, err
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", n, fmt.Errorf("write %s: %w", path, err)
	}

	return path, n, nil
}

func createUnique(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < maxUniqueAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = stem + " (" + strconv.Itoa(i) + ")" + ext
		}
		path := filepath.Join(dir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o660)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("create %s: %w", path, err)
		}
	}

	return nil, "", fmt.Errorf("no free name for %s in %s", name, dir)
}
