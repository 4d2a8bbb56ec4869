package content

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDefaults = Defaults{
	Author:   "Jane Doe",
	EditPost: EditPost{URL: "https://github.com/jane/blog/edit/main/content", Text: "Edit page", AppendFilePath: true},
}

func minimalPost() map[string]any {
	return map[string]any{
		"pubDatetime": time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		"title":       "Hello",
		"description": "First post",
	}
}

func TestBlogPostMinimalFillsDefaults(t *testing.T) {
	v := NewValidator(testDefaults)

	post, err := v.BlogPost(minimalPost(), "2024/Hello World.md")
	require.NoError(t, err)

	assert.Equal(t, []string{"others"}, post.Tags)
	assert.Equal(t, CategoryTutorial, post.Category)
	assert.Equal(t, "Jane Doe", post.Author)
	assert.Equal(t, "2024/Hello World.md", post.ID)
	assert.Equal(t, "2024-hello-world", post.Slug)
	assert.Nil(t, post.ModDatetime)
	assert.Nil(t, post.OGImage)
	assert.Nil(t, post.EditPost)
	assert.False(t, post.Draft)
	assert.False(t, post.Featured)
}

func TestBlogPostExplicitValues(t *testing.T) {
	raw := minimalPost()
	raw["author"] = "Guest Writer"
	raw["modDatetime"] = "2024-03-05"
	raw["featured"] = true
	raw["draft"] = false
	raw["tags"] = []any{"go", "testing"}
	raw["category"] = "Deep Dive"
	raw["canonicalURL"] = "https://example.com/hello"
	raw["editPost"] = map[any]any{"url": "https://example.com/edit", "appendFilePath": false}
	raw["unknown"] = "ignored"

	post, err := NewValidator(testDefaults).BlogPost(raw, "hello.md")
	require.NoError(t, err)

	assert.Equal(t, "Guest Writer", post.Author)
	require.NotNil(t, post.ModDatetime)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *post.ModDatetime)
	assert.True(t, post.Featured)
	assert.Equal(t, []string{"go", "testing"}, post.Tags)
	assert.Equal(t, CategoryDeepDive, post.Category)
	assert.Equal(t, "https://example.com/hello", post.CanonicalURL)
	require.NotNil(t, post.EditPost)
	require.NotNil(t, post.EditPost.URL)
	assert.Equal(t, "https://example.com/edit", *post.EditPost.URL)
	require.NotNil(t, post.EditPost.AppendFilePath)
	assert.False(t, *post.EditPost.AppendFilePath)
	assert.Nil(t, post.EditPost.Text)
	assert.Nil(t, post.EditPost.Disabled)
}

func TestBlogPostMissingTitle(t *testing.T) {
	raw := minimalPost()
	delete(raw, "title")

	_, err := NewValidator(testDefaults).BlogPost(raw, "no-title.md")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDocument))

	issues := Issues(err)
	require.Len(t, issues, 1)
	assert.Equal(t, "title", issues[0].Field)
	assert.Equal(t, MissingRequiredField, issues[0].Kind)
}

func TestBlogPostNullCountsAsMissing(t *testing.T) {
	raw := minimalPost()
	raw["description"] = nil

	_, err := NewValidator(testDefaults).BlogPost(raw, "null.md")
	issues := Issues(err)
	require.Len(t, issues, 1)
	assert.Equal(t, Issue{Field: "description", Kind: MissingRequiredField, Message: "is required"}, issues[0])
}

func TestBlogPostEmptyDocumentListsEveryRequiredField(t *testing.T) {
	_, err := NewValidator(testDefaults).BlogPost(map[string]any{}, "empty.md")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "empty.md", verr.ID)
	require.Len(t, verr.Issues, 3)
	assert.Equal(t, "pubDatetime", verr.Issues[0].Field)
	assert.Equal(t, "title", verr.Issues[1].Field)
	assert.Equal(t, "description", verr.Issues[2].Field)
	for _, issue := range verr.Issues {
		assert.Equal(t, MissingRequiredField, issue.Kind)
	}
}

func TestBlogPostInvalidCategory(t *testing.T) {
	for _, category := range []string{"research", "Deep dive", "", "Opinion"} {
		t.Run(category, func(t *testing.T) {
			raw := minimalPost()
			raw["category"] = category

			_, err := NewValidator(testDefaults).BlogPost(raw, "cat.md")
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Issues, 1)
			assert.Equal(t, "category", verr.Issues[0].Field)
			assert.Equal(t, InvalidEnumValue, verr.Issues[0].Kind)
			assert.Contains(t, verr.Issues[0].Message, "Research, Deep Dive, Tutorial")
		})
	}
}

func TestBlogPostOGImage(t *testing.T) {
	asset := func(w, h int) map[string]any {
		return map[string]any{"src": "/assets/blog/og.png", "width": w, "height": h, "format": "png"}
	}
	tests := []struct {
		name    string
		value   any
		wantErr bool
		kind    OGImageKind
	}{
		{"asset too narrow", asset(1199, 630), true, 0},
		{"asset too short", asset(1200, 629), true, 0},
		{"asset at minimum", asset(1200, 630), false, OGImageAsset},
		{"asset larger", asset(2400, 1260), false, OGImageAsset},
		{"bare string", "foo.png", false, OGImageURL},
		{"remote url", "https://cdn.example.com/og.jpg", false, OGImageURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := minimalPost()
			raw["ogImage"] = tt.value

			post, err := NewValidator(testDefaults).BlogPost(raw, "og.md")
			if tt.wantErr {
				issues := Issues(err)
				require.Len(t, issues, 1)
				assert.Equal(t, Issue{
					Field:   "ogImage",
					Kind:    ConstraintViolation,
					Message: "OpenGraph image must be at least 1200 X 630 pixels!",
				}, issues[0])
				return
			}
			require.NoError(t, err)
			require.NotNil(t, post.OGImage)
			assert.Equal(t, tt.kind, post.OGImage.Kind)
		})
	}
}

func TestBlogPostOGImageFromYAMLMapping(t *testing.T) {
	raw := minimalPost()
	raw["ogImage"] = map[any]any{"src": "/assets/og.webp", "width": 1600, "height": 900}

	post, err := NewValidator(testDefaults).BlogPost(raw, "og.md")
	require.NoError(t, err)
	assert.Equal(t, "/assets/og.webp", post.OGImage.Src())
	assert.Equal(t, 1600, post.OGImage.Asset.Width)
}

func TestBlogPostOGImageAssetMissingWidth(t *testing.T) {
	raw := minimalPost()
	raw["ogImage"] = map[string]any{"src": "/og.png", "height": 700}

	_, err := NewValidator(testDefaults).BlogPost(raw, "og.md")
	issues := Issues(err)
	require.Len(t, issues, 1)
	assert.Equal(t, "ogImage.width", issues[0].Field)
	assert.Equal(t, MissingRequiredField, issues[0].Kind)
}

func TestBlogPostTags(t *testing.T) {
	t.Run("empty list is kept", func(t *testing.T) {
		raw := minimalPost()
		raw["tags"] = []any{}

		post, err := NewValidator(testDefaults).BlogPost(raw, "tags.md")
		require.NoError(t, err)
		assert.NotNil(t, post.Tags)
		assert.Empty(t, post.Tags)
	})

	t.Run("scalar is a type mismatch", func(t *testing.T) {
		raw := minimalPost()
		raw["tags"] = "go"

		_, err := NewValidator(testDefaults).BlogPost(raw, "tags.md")
		issues := Issues(err)
		require.Len(t, issues, 1)
		assert.Equal(t, "tags", issues[0].Field)
		assert.Equal(t, TypeMismatch, issues[0].Kind)
	})

	t.Run("non-string element is a type mismatch", func(t *testing.T) {
		raw := minimalPost()
		raw["tags"] = []any{"go", 42}

		_, err := NewValidator(testDefaults).BlogPost(raw, "tags.md")
		issues := Issues(err)
		require.Len(t, issues, 1)
		assert.Equal(t, "tags.1", issues[0].Field)
		assert.Equal(t, TypeMismatch, issues[0].Kind)
	})
}

func TestBlogPostTypeMismatchIsNotAlsoMissing(t *testing.T) {
	raw := minimalPost()
	raw["title"] = 2024
	raw["featured"] = "yes"

	_, err := NewValidator(testDefaults).BlogPost(raw, "types.md")
	issues := Issues(err)
	require.Len(t, issues, 2)
	assert.Equal(t, Issue{Field: "title", Kind: TypeMismatch, Message: "expected string, received number"}, issues[0])
	assert.Equal(t, "featured", issues[1].Field)
	assert.Equal(t, TypeMismatch, issues[1].Kind)
}

func TestBlogPostDates(t *testing.T) {
	tests := []struct {
		in   any
		want time.Time
		ok   bool
	}{
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-01T10:30:00Z", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), true},
		{"2024-03-01 10:30:00", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), true},
		{"yesterday", time.Time{}, false},
		{20240301, time.Time{}, false},
	}
	for _, tt := range tests {
		raw := minimalPost()
		raw["pubDatetime"] = tt.in

		post, err := NewValidator(testDefaults).BlogPost(raw, "date.md")
		if !tt.ok {
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.True(t, verr.Has("pubDatetime", TypeMismatch), "input %v", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.True(t, tt.want.Equal(post.PubDatetime), "input %v: got %v", tt.in, post.PubDatetime)
	}
}

func TestBlogPostEditPostFieldTypes(t *testing.T) {
	raw := minimalPost()
	raw["editPost"] = map[string]any{"url": 7, "disabled": true}

	_, err := NewValidator(testDefaults).BlogPost(raw, "edit.md")
	issues := Issues(err)
	require.Len(t, issues, 1)
	assert.Equal(t, "editPost.url", issues[0].Field)
	assert.Equal(t, TypeMismatch, issues[0].Kind)
}

func TestBlogPostAccumulatesAllIssuesInFieldOrder(t *testing.T) {
	raw := minimalPost()
	delete(raw, "title")
	raw["category"] = "Opinion"
	raw["ogImage"] = map[string]any{"src": "/small.png", "width": 300, "height": 200}
	raw["draft"] = "no"

	_, err := NewValidator(testDefaults).BlogPost(raw, "bad.md")
	issues := Issues(err)
	require.Len(t, issues, 4)
	assert.Equal(t, []string{"title", "draft", "category", "ogImage"}, []string{
		issues[0].Field, issues[1].Field, issues[2].Field, issues[3].Field,
	})
	assert.Equal(t, []ErrorKind{MissingRequiredField, TypeMismatch, InvalidEnumValue, ConstraintViolation}, []ErrorKind{
		issues[0].Kind, issues[1].Kind, issues[2].Kind, issues[3].Kind,
	})
	assert.Contains(t, err.Error(), "bad.md: title: is required (MissingRequiredField)")
}

func TestBlogPostRevalidationIsIdempotent(t *testing.T) {
	v := NewValidator(testDefaults)
	mod := time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC)

	full := minimalPost()
	full["modDatetime"] = mod
	full["featured"] = true
	full["tags"] = []string{"go"}
	full["category"] = "Research"
	full["ogImage"] = map[string]any{"src": "/assets/og.png", "width": 1200, "height": 630, "format": "png"}
	full["canonicalURL"] = "https://example.com/x"
	full["editPost"] = map[string]any{"disabled": true, "text": "Fix"}

	emptyTags := minimalPost()
	emptyTags["tags"] = []any{}

	urlImage := minimalPost()
	urlImage["ogImage"] = "foo.png"

	for name, raw := range map[string]map[string]any{
		"minimal":    minimalPost(),
		"full":       full,
		"empty tags": emptyTags,
		"url image":  urlImage,
	} {
		t.Run(name, func(t *testing.T) {
			first, err := v.BlogPost(raw, "post.md")
			require.NoError(t, err)

			second, err := v.BlogPost(first.FrontMatter(), "post.md")
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}
