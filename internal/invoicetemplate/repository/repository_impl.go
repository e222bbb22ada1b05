package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/smallbiznis/propbill/internal/config"
	templatedomain "github.com/smallbiznis/propbill/internal/invoicetemplate/domain"
)

const templateExt = ".docx"

type repo struct {
	invoicing *config.InvoicingConfigHolder
}

func Provide(invoicing *config.InvoicingConfigHolder) templatedomain.Repository {
	return &repo{invoicing: invoicing}
}

func (r *repo) dir() string {
	return r.invoicing.Get().TemplateDir
}

func (r *repo) List(ctx context.Context) ([]templatedomain.Template, error) {
	entries, err := os.ReadDir(r.dir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []templatedomain.Template{}, nil
		}
		return nil, err
	}

	items := make([]templatedomain.Template, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "~") || !strings.EqualFold(filepath.Ext(name), templateExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		items = append(items, templatedomain.Template{
			Name:       name,
			Size:       info.Size(),
			ModifiedAt: info.ModTime().UTC(),
		})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// Read returns nil, nil when the template does not exist.
func (r *repo) Read(ctx context.Context, name string) (*templatedomain.Loaded, error) {
	path := filepath.Join(r.dir(), name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &templatedomain.Loaded{
		Template: templatedomain.Template{
			Name:       name,
			Size:       info.Size(),
			ModifiedAt: info.ModTime().UTC(),
		},
		Data: data,
	}, nil
}

func (r *repo) Write(ctx context.Context, name string, data []byte) error {
	dir := r.dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmpl-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, name))
}
