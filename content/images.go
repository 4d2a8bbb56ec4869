package content

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"strings"

	_ "golang.org/x/image/webp"
)

// AssetPrefix is the URL path under which content files are served.
const AssetPrefix = "/assets/"

// ImageResolver turns relative image references in front-matter into image
// assets with their real pixel dimensions.
type ImageResolver struct {
	fsys fs.FS
}

// NewImageResolver resolves images inside fsys.
func NewImageResolver(fsys fs.FS) *ImageResolver {
	return &ImageResolver{fsys: fsys}
}

// IsLocalRef reports whether ref points at a file next to the document.
func IsLocalRef(ref string) bool {
	return strings.HasPrefix(ref, "./") || strings.HasPrefix(ref, "../")
}

// Resolve decodes the header of the image ref, relative to the document at
// docPath, and returns its dimensions.
func (r *ImageResolver) Resolve(docPath, ref string) (ImageAsset, error) {
	if !IsLocalRef(ref) {
		return ImageAsset{}, fmt.Errorf("resolve image %q: not a local reference", ref)
	}
	p := path.Clean(path.Join(path.Dir(docPath), ref))
	if !fs.ValidPath(p) {
		return ImageAsset{}, fmt.Errorf("resolve image %q: path escapes content root", ref)
	}
	f, err := r.fsys.Open(p)
	if err != nil {
		return ImageAsset{}, fmt.Errorf("resolve image %q: %w", ref, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return ImageAsset{}, fmt.Errorf("decode image %q: %w", ref, err)
	}
	return ImageAsset{
		Src:    AssetPrefix + p,
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
	}, nil
}

// resolveOGImage replaces a resolvable local ogImage string in raw with an
// image asset mapping. Unresolvable strings stay strings.
func (r *ImageResolver) resolveOGImage(raw map[string]any, docPath string) bool {
	if r == nil {
		return false
	}
	ref, ok := raw["ogImage"].(string)
	if !ok || !IsLocalRef(ref) {
		return false
	}
	asset, err := r.Resolve(docPath, ref)
	if err != nil {
		return false
	}
	raw["ogImage"] = asset.frontMatter()
	return true
}
