package resourcesfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-report-export/export"
)

// DefaultPrefix is the directory under each provider root that holds report templates.
const DefaultPrefix = "reports"

// Resolver loads report templates from provider directories on disk.
type Resolver struct {
	Roots  map[string]string
	Prefix string
}

// NewResolver creates a filesystem resolver for the given provider roots.
func NewResolver(roots map[string]string) *Resolver {
	return &Resolver{Roots: roots, Prefix: DefaultPrefix}
}

// Resolve reads <root>/<prefix>/<path> for the provider.
func (r *Resolver) Resolve(ctx context.Context, provider, templatePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, export.NewError(export.KindInternal, "resolver is nil", nil)
	}

	root, ok := r.Roots[provider]
	if !ok || root == "" {
		return nil, export.NewError(export.KindResourceNotFound, fmt.Sprintf("unknown resource provider %q", provider), nil)
	}

	pathOnDisk, err := r.resolvePath(root, templatePath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(pathOnDisk)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, export.NewError(export.KindResourceNotFound, fmt.Sprintf("template %s/%s not found", provider, templatePath), err)
		}
		return nil, export.NewError(export.KindResourceNotFound, fmt.Sprintf("read template %s/%s", provider, templatePath), err)
	}
	return data, nil
}

func (r *Resolver) resolvePath(root, templatePath string) (string, error) {
	clean := path.Clean("/" + path.Join(r.prefix(), templatePath))
	rel := strings.TrimPrefix(clean, "/")
	if strings.TrimSpace(templatePath) == "" || rel == "" || rel == "." {
		return "", export.NewError(export.KindValidation, "template path is required", nil)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	base := filepath.Join(absRoot, filepath.FromSlash(r.prefix()))
	target := filepath.Join(absRoot, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, base+string(os.PathSeparator)) {
		return "", export.NewError(export.KindValidation, "template path escapes provider root", nil)
	}
	return target, nil
}

func (r *Resolver) prefix() string {
	if r.Prefix == "" {
		return DefaultPrefix
	}
	return strings.Trim(r.Prefix, "/")
}
