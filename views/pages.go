package views

import (
	"fmt"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/pubsite"
)

// Home renders the front page.
func Home(p pubsite.HomePage) templ.Component {
	loc := p.Site.Location()
	return document(p.Meta, func(w *writer) {
		w.raw(`<section class="hero"><h1>`)
		w.text(p.Site.Name)
		w.raw("</h1>")
		if p.Site.Description != "" {
			w.raw("<p>")
			w.text(p.Site.Description)
			w.raw("</p>")
		}
		w.raw("</section>\n")
		if len(p.Featured) > 0 {
			w.raw(`<section id="featured"><h2>Featured</h2>`)
			cards(w, p.Featured, loc)
			w.raw("</section>\n")
		}
		w.raw(`<section id="recent-posts"><h2>Recent Posts</h2>`)
		cards(w, p.Posts, loc)
		w.raw(`<nav class="pagination">`)
		if p.Pagination.HasPrev() {
			w.raw("<a")
			w.href("/?page=" + strconv.Itoa(p.Pagination.Page-1))
			w.raw(">Prev</a> ")
		}
		w.raw("<span>", strconv.Itoa(p.Pagination.Page), " / ", strconv.Itoa(p.Pagination.TotalPages), "</span>")
		if p.Pagination.HasNext() {
			w.raw(" <a")
			w.href("/?page=" + strconv.Itoa(p.Pagination.Page+1))
			w.raw(">Next</a>")
		}
		w.raw("</nav></section>\n")
		if len(p.Tags) > 0 {
			w.raw(`<section id="tags">`)
			for _, t := range p.Tags {
				w.raw("<a")
				w.attr("class", TagClass(false))
				w.href(TagURL(t.Slug))
				w.raw(">#")
				w.text(t.Name)
				w.raw("</a> ")
			}
			w.raw("</section>\n")
		}
	})
}

// Post renders a single post.
func Post(p pubsite.PostPage) templ.Component {
	loc := p.Site.Location()
	return document(p.Meta, func(w *writer) {
		w.raw(`<article class="post"><h1>`)
		w.text(p.Post.Title)
		w.raw("</h1>\n")
		dateLine(w, DateOf(p.Post.BlogPost, loc))
		switch {
		case p.Author != nil:
			w.raw(`<p class="byline">by <a`)
			w.href("/authors/" + PathEscape(p.Author.Slug) + "/")
			w.raw(">")
			w.text(p.Author.Name)
			w.raw("</a></p>\n")
		case p.Post.Author != "":
			w.raw(`<p class="byline">by `)
			w.text(p.Post.Author)
			w.raw("</p>\n")
		}
		w.raw(`<div class="prose">`, string(p.Body), "</div>\n")
		w.raw(`<ul class="tags">`)
		for _, tag := range p.Post.Tags {
			w.raw("<li><a")
			w.attr("class", TagClass(false))
			w.href(TagURL(tag))
			w.raw(">#")
			w.text(tag)
			w.raw("</a></li>")
		}
		w.raw("</ul>\n")
		if p.EditHref != "" {
			w.raw(`<p class="edit-post"><a`)
			w.href(p.EditHref)
			w.raw(` rel="noopener noreferrer" target="_blank">`)
			w.text(p.EditText)
			w.raw("</a></p>\n")
		}
		w.raw("</article>\n")
		if len(p.Related) > 0 {
			w.raw(`<section id="related"><h2>Related</h2>`)
			cards(w, p.Related, loc)
			w.raw("</section>\n")
		}
	})
}

// Tag renders the posts of one tag.
func Tag(p pubsite.TagPage) templ.Component {
	return document(p.Meta, func(w *writer) {
		w.raw("<h1>")
		w.text("Tag: " + p.Tag.Name)
		w.raw("</h1>\n")
		cards(w, p.Posts, p.Site.Location())
	})
}

// Author renders an author profile and their posts.
func Author(p pubsite.AuthorPage) templ.Component {
	a := p.Author
	return document(p.Meta, func(w *writer) {
		w.raw(`<section class="author">`)
		if a.Avatar != "" {
			w.raw(`<img class="avatar"`)
			w.attr("src", string(templ.URL(a.Avatar)))
			w.raw(` alt="" width="96" height="96">`)
		}
		w.raw("<h1>")
		w.text(a.Name)
		w.raw("</h1><p>")
		w.text(a.Occupation + " at " + a.Company)
		w.raw("</p><p><a")
		w.href("mailto:" + a.Email)
		w.raw(">")
		w.text(a.Email)
		w.raw("</a></p>\n")
		if len(a.Socials) > 0 {
			w.raw(`<ul class="socials">`)
			for _, s := range a.Socials {
				if !s.Active {
					continue
				}
				w.raw("<li><a")
				w.href(s.Href)
				w.attr("title", s.LinkTitle)
				w.raw(` rel="me noopener">`)
				w.text(s.Name)
				w.raw("</a></li>")
			}
			w.raw("</ul>\n")
		}
		w.raw("</section>\n<section><h2>Posts</h2>")
		cards(w, p.Posts, p.Site.Location())
		w.raw("</section>\n")
	})
}

// AdminLogin renders the password form.
func AdminLogin(showError bool, csrfToken string) templ.Component {
	return document(pubsite.PageMeta{Title: "Admin"}, func(w *writer) {
		w.raw("<h1>Admin</h1>\n")
		if showError {
			w.raw(`<p class="error">Wrong password.</p>`, "\n")
		}
		w.raw(`<form method="post" action="/admin/login/"><input type="hidden" name="_csrf"`)
		w.attr("value", csrfToken)
		w.raw(`><label>Password <input type="password" name="password" autofocus></label>`,
			`<button type="submit">Log in</button></form>`, "\n")
	})
}

// AdminDashboard renders the last load report and the status of every post.
func AdminDashboard(p pubsite.DashboardPage) templ.Component {
	loc := p.Site.Location()
	return document(p.Meta, func(w *writer) {
		w.raw("<h1>Dashboard</h1>\n")
		if p.Message != "" {
			w.raw(`<p class="message">`)
			w.text(p.Message)
			w.raw("</p>\n")
		}
		csrfForm(w, "/admin/reload/", p.CSRFToken, "Reload content")
		csrfForm(w, "/admin/logout/", p.CSRFToken, "Log out")

		w.raw(`<section id="report"><h2>Last load</h2>`)
		if p.Report.LoadedAt.IsZero() {
			w.raw("<p>No content loaded yet.</p>")
		} else {
			w.raw("<p>")
			w.text(fmt.Sprintf("Loaded %s in %s.", FormatDate(p.Report.LoadedAt, loc), p.Report.Duration))
			w.raw("</p>\n")
		}
		for _, c := range p.Report.Collections {
			w.raw("<h3>")
			w.text(fmt.Sprintf("%s: %d valid, %d rejected", c.Name, c.Valid, len(c.Rejected)))
			w.raw("</h3>\n")
			if len(c.Rejected) == 0 {
				continue
			}
			w.raw(`<ul class="rejected">`)
			for _, r := range c.Rejected {
				w.raw("<li><code>")
				w.text(r.Path)
				w.raw("</code>")
				if len(r.Issues) == 0 {
					w.raw("<p>")
					w.text(r.Error)
					w.raw("</p>")
				} else {
					w.raw("<ul>")
					for _, issue := range r.Issues {
						w.raw("<li><code>")
						w.text(issue.Field)
						w.raw("</code> ")
						w.text(string(issue.Kind) + ": " + issue.Message)
						w.raw("</li>")
					}
					w.raw("</ul>")
				}
				w.raw("</li>\n")
			}
			w.raw("</ul>\n")
		}
		w.raw("</section>\n")

		w.raw(`<section id="posts"><h2>Posts</h2><table>`,
			"<thead><tr><th>Title</th><th>Date</th><th>Status</th></tr></thead><tbody>\n")
		for _, post := range p.Posts {
			w.raw("<tr><td>")
			w.text(post.Title)
			w.raw("</td><td>")
			w.text(FormatDate(post.PubDatetime, loc))
			w.raw("</td><td>")
			switch {
			case post.Draft:
				w.raw("draft")
			case post.Published(p.Now, p.Site.ScheduledPostMargin):
				w.raw("<a")
				w.href(PostURL(post))
				w.raw(">published</a>")
			default:
				w.raw("scheduled")
			}
			w.raw("</td></tr>\n")
		}
		w.raw("</tbody></table></section>\n")
	})
}

// NotFound renders the 404 page.
func NotFound() templ.Component {
	return document(pubsite.PageMeta{Title: "Page not found"}, func(w *writer) {
		w.raw("<h1>404</h1>\n<p>Page not found.</p>\n", `<p><a href="/">Go back home</a></p>`, "\n")
	})
}

// ServerError renders the 500 page.
func ServerError() templ.Component {
	return document(pubsite.PageMeta{Title: "Something went wrong"}, func(w *writer) {
		w.raw("<h1>500</h1>\n<p>Something went wrong. Please try again later.</p>\n")
	})
}
