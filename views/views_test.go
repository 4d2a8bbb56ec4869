package views

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/content"
)

var pubDate = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return buf.String()
}

func samplePost() pubsite.StoredPost {
	return pubsite.StoredPost{BlogPost: content.BlogPost{
		Slug:        "hello world",
		Title:       "Hello <World>",
		Description: "First post",
		Author:      "Jane Doe",
		PubDatetime: pubDate,
		Tags:        []string{"Go"},
	}}
}

func TestDefaultPagesRender(t *testing.T) {
	v := Default()
	site := pubsite.SiteConfig{Name: "Notes", Timezone: "UTC"}
	post := samplePost()
	author := content.Author{Slug: "jane", Name: "Jane Doe", Occupation: "Engineer", Company: "Acme",
		Socials: content.BuildSocials("", "", "https://github.com/jane")}

	tests := []struct {
		name string
		c    templ.Component
		want []string
	}{
		{"home", v.Home(pubsite.HomePage{
			Site:       site,
			Meta:       pubsite.PageMeta{Title: "Notes", JSONLD: `{"@type":"WebSite"}`},
			Posts:      []pubsite.StoredPost{post},
			Tags:       []pubsite.Tag{{Slug: "go", Name: "Go"}},
			Pagination: pubsite.Pagination{Page: 1, TotalPages: 2},
		}), []string{"Hello &lt;World&gt;", `href="/blog/hello%20world/"`, `href="/tags/go/"`, `href="/?page=2"`, `{"@type":"WebSite"}`}},
		{"post", v.Post(pubsite.PostPage{
			Site:     site,
			Meta:     pubsite.PageMeta{Title: post.Title},
			Post:     post,
			Body:     []byte("<p>rendered <strong>body</strong></p>"),
			Author:   &author,
			EditHref: "https://github.com/me/site/edit/main/content/blog/x.md",
			EditText: "Suggest Changes",
		}), []string{"<strong>body</strong>", `href="/authors/jane/"`, "Suggest Changes", "1 May 2024"}},
		{"tag", v.Tag(pubsite.TagPage{Site: site, Tag: pubsite.Tag{Slug: "go", Name: "Go"}, Posts: []pubsite.StoredPost{post}}),
			[]string{"Tag: Go", "First post"}},
		{"author", v.Author(pubsite.AuthorPage{Site: site, Author: author}),
			[]string{"Engineer at Acme", `href="https://github.com/jane"`}},
		{"login", v.AdminLogin(true, "tok123"), []string{"Wrong password.", `value="tok123"`}},
		{"dashboard", v.AdminDashboard(pubsite.DashboardPage{
			Site:  site,
			Meta:  pubsite.PageMeta{Title: "Dashboard | Notes"},
			Posts: []pubsite.StoredPost{post},
			Now:   pubDate.Add(time.Hour),
			Report: pubsite.Report{
				LoadedAt: pubDate,
				Collections: []pubsite.CollectionReport{{
					Name:  "blog",
					Valid: 1,
					Rejected: []pubsite.RejectedDocument{{
						Path:   "blog/bad.md",
						Issues: []content.Issue{{Field: "title", Kind: content.MissingRequiredField, Message: "is required"}},
					}},
				}},
			},
		}), []string{"<title>Dashboard | Notes</title>", "blog: 1 valid, 1 rejected", "blog/bad.md", "MissingRequiredField", "published"}},
		{"notfound", v.NotFound(), []string{"Page not found"}},
		{"servererror", v.ServerError(), []string{"Something went wrong"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := render(t, tt.c)
			if !strings.HasPrefix(html, "<!doctype html>") {
				t.Errorf("missing layout: %.40q", html)
			}
			for _, want := range tt.want {
				if !strings.Contains(html, want) {
					t.Errorf("output lacks %q", want)
				}
			}
		})
	}
}

func TestLayoutEscapesUntrustedValues(t *testing.T) {
	html := render(t, Post(pubsite.PostPage{
		Meta:     pubsite.PageMeta{Title: `"quoted"`, JSONLD: `{"headline":"</script><b>"}`},
		Post:     samplePost(),
		EditHref: "javascript:alert(1)",
		EditText: "Edit",
	}))
	if strings.Contains(html, "</script><b>") {
		t.Error("JSON-LD must not close its script element")
	}
	if !strings.Contains(html, "<title>&#34;quoted&#34;</title>") {
		t.Error("title not escaped")
	}
	if strings.Contains(html, "javascript:") {
		t.Error("unsafe edit href rendered")
	}
}

func TestDateOf(t *testing.T) {
	p := samplePost().BlogPost
	d := DateOf(p, time.UTC)
	if d.Updated || d.Text != "1 May 2024" || d.ISO != "2024-05-01T10:00:00Z" {
		t.Errorf("DateOf = %+v", d)
	}

	mod := pubDate.AddDate(0, 0, 3)
	p.ModDatetime = &mod
	d = DateOf(p, time.UTC)
	if !d.Updated || d.Text != "4 May 2024" {
		t.Errorf("DateOf modified = %+v", d)
	}

	late := time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)
	p = content.BlogPost{PubDatetime: late}
	bangkok, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		t.Fatal(err)
	}
	if got := DateOf(p, bangkok).Text; got != "2 May 2024" {
		t.Errorf("zone-shifted date = %q", got)
	}
}

func TestTagURL(t *testing.T) {
	if got := TagURL("Machine Learning"); got != "/tags/machine-learning/" {
		t.Errorf("TagURL = %q", got)
	}
}
