package content

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var blogPostFieldOrder = []string{
	"author", "pubDatetime", "modDatetime", "title", "featured", "draft",
	"tags", "category", "ogImage", "description", "canonicalURL", "editPost",
}

// Validator turns raw front-matter into typed records.
// It holds no mutable state and is safe for concurrent use.
type Validator struct {
	defaults Defaults
}

// NewValidator returns a Validator that fills absent fields from defaults.
func NewValidator(defaults Defaults) *Validator {
	return &Validator{defaults: defaults}
}

// Defaults returns the site defaults the validator was built with.
func (v *Validator) Defaults() Defaults {
	return v.defaults
}

// blogPostInput holds decoded front-matter before rules run; nil means absent.
type blogPostInput struct {
	Author       *string           `json:"author"`
	PubDatetime  *time.Time        `json:"pubDatetime"`
	ModDatetime  *time.Time        `json:"modDatetime"`
	Title        *string           `json:"title"`
	Featured     *bool             `json:"featured"`
	Draft        *bool             `json:"draft"`
	Tags         []string          `json:"tags"`
	Category     *string           `json:"category"`
	OGImage      *OGImage          `json:"ogImage"`
	Description  *string           `json:"description"`
	CanonicalURL *string           `json:"canonicalURL"`
	EditPost     *EditPostOverride `json:"editPost"`

	hasTags bool
}

// BlogPost validates raw front-matter of the document identified by id.
// On failure the returned error is a *ValidationError listing every issue.
func (v *Validator) BlogPost(raw map[string]any, id string) (BlogPost, error) {
	issues := newIssueCollector(blogPostFieldOrder)
	in := decodeBlogPost(fields{raw: raw, issues: issues})

	err := validation.ValidateStruct(&in,
		validation.Field(&in.PubDatetime, validation.NotNil),
		validation.Field(&in.Title, validation.NotNil),
		validation.Field(&in.Description, validation.NotNil),
		validation.Field(&in.Category, validation.By(oneOfCategories)),
		validation.Field(&in.OGImage, validation.By(ogImageDimensions)),
	)
	if err := issues.merge(err); err != nil {
		return BlogPost{}, err
	}
	if err := issues.result(id); err != nil {
		return BlogPost{}, err
	}

	post := BlogPost{
		ID:           id,
		Slug:         SlugFromID(id),
		Author:       v.defaults.Author,
		PubDatetime:  *in.PubDatetime,
		ModDatetime:  in.ModDatetime,
		Title:        *in.Title,
		Description:  *in.Description,
		Tags:         []string{defaultTag},
		Category:     DefaultCategory,
		OGImage:      in.OGImage,
		CanonicalURL: deref(in.CanonicalURL),
		EditPost:     in.EditPost,
	}
	if in.Author != nil {
		post.Author = *in.Author
	}
	if in.Featured != nil {
		post.Featured = *in.Featured
	}
	if in.Draft != nil {
		post.Draft = *in.Draft
	}
	if in.hasTags {
		post.Tags = in.Tags
	}
	if in.Category != nil {
		post.Category = Category(*in.Category)
	}
	return post, nil
}

func decodeBlogPost(f fields) blogPostInput {
	in := blogPostInput{
		Author:       f.str("author"),
		PubDatetime:  f.datetime("pubDatetime"),
		ModDatetime:  f.datetime("modDatetime"),
		Title:        f.str("title"),
		Featured:     f.boolean("featured"),
		Draft:        f.boolean("draft"),
		Category:     f.str("category"),
		OGImage:      decodeOGImage(f),
		Description:  f.str("description"),
		CanonicalURL: f.str("canonicalURL"),
		EditPost:     decodeEditPost(f),
	}
	in.Tags, in.hasTags = f.stringList("tags")
	return in
}

// decodeOGImage tests the discriminant first: a string is a URL, a mapping
// is an image asset. The two cases never fall through to each other.
func decodeOGImage(f fields) *OGImage {
	v, ok := f.lookup("ogImage")
	if !ok {
		return nil
	}
	if s, ok := v.(string); ok {
		return &OGImage{Kind: OGImageURL, URL: s}
	}
	if asset, ok := v.(ImageAsset); ok {
		return &OGImage{Kind: OGImageAsset, Asset: asset}
	}
	obj, ok := f.object("ogImage")
	if !ok {
		return nil
	}
	src := obj.str("src")
	width := obj.integer("width")
	height := obj.integer("height")
	format := obj.str("format")
	if src == nil {
		f.issues.add("ogImage.src", MissingRequiredField, "is required")
	}
	if width == nil && !obj.present("width") {
		f.issues.add("ogImage.width", MissingRequiredField, "is required")
	}
	if height == nil && !obj.present("height") {
		f.issues.add("ogImage.height", MissingRequiredField, "is required")
	}
	if src == nil || width == nil || height == nil {
		return nil
	}
	return &OGImage{Kind: OGImageAsset, Asset: ImageAsset{
		Src:    *src,
		Width:  *width,
		Height: *height,
		Format: deref(format),
	}}
}

func decodeEditPost(f fields) *EditPostOverride {
	obj, ok := f.object("editPost")
	if !ok {
		return nil
	}
	return &EditPostOverride{
		Disabled:       obj.boolean("disabled"),
		URL:            obj.str("url"),
		Text:           obj.str("text"),
		AppendFilePath: obj.boolean("appendFilePath"),
	}
}

func oneOfCategories(value any) error {
	s, _ := value.(*string)
	if s == nil {
		return nil
	}
	for _, c := range Categories {
		if string(c) == *s {
			return nil
		}
	}
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return validation.NewError(codeEnum, "must be one of: "+strings.Join(names, ", "))
}

// ogImageDimensions only applies to image assets; URL strings pass as is.
func ogImageDimensions(value any) error {
	img, _ := value.(*OGImage)
	if img == nil || img.Kind != OGImageAsset {
		return nil
	}
	if img.Asset.Width < MinOGImageWidth || img.Asset.Height < MinOGImageHeight {
		return validation.NewError(codeConstraint, ogImageTooSmallMsg)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
