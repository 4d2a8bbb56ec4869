package pubsite

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubsite/content"
)

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework stylesheet first; everything else under /public/ comes from
	// the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/pubsite.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.Static("/public", a.staticDir)
	e.GET(content.AssetPrefix+"*", a.handleAsset)

	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/metrics", a.Metrics.handler())

	e.GET("/", a.handleHome)
	e.GET("/blog/", handleBlogRedirect)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/tags/:tag/", a.handleTag)
	e.GET("/authors/:slug/", a.handleAuthor)

	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.POST("/admin/reload/", a.handleAdminReload)
}

func (a *App) handleHome(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	featured, err := a.Cache.ListFeatured()
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	recent, pagination := Paginate(posts, page, a.Config.PostsPerPage)
	return Render(c, a.Views.Home(HomePage{
		Site:       a.Config,
		Meta:       a.siteMeta(),
		Featured:   featured,
		Posts:      recent,
		Tags:       tags,
		Pagination: pagination,
	}))
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	post, err := a.Cache.GetPost(slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	body, err := a.Bodies.HTML(post)
	if err != nil {
		return err
	}

	page := PostPage{
		Site:    a.Config,
		Post:    post,
		Body:    body,
		Related: FilterRelatedPosts(post.BlogPost, posts),
		Meta: PageMeta{
			Title:       post.Title,
			Description: post.Description,
			URL:         PostURL(a.Config, post.BlogPost),
			OGType:      "article",
			Image:       a.ogImageURL(post.OGImage.Src()),
			JSONLD:      BlogPostingJsonLD(post.BlogPost, a.Config),
		},
	}
	if author, ok := a.authorByName(post.Author); ok {
		page.Author = &author
	}
	if href, text, ok := post.EditLink(a.Config.ContentDefaults().EditPost); ok {
		page.EditHref, page.EditText = href, text
	}
	return Render(c, a.Views.Post(page))
}

func (a *App) handleTag(c echo.Context) error {
	slug := content.Slugify(c.Param("tag"))
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	var tag Tag
	for _, t := range tags {
		if t.Slug == slug {
			tag = t
			break
		}
	}
	if tag.Slug == "" {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	posts, err := a.Cache.ListPosts(tag.Slug)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Tag(TagPage{
		Site:  a.Config,
		Tag:   tag,
		Posts: posts,
		Meta: PageMeta{
			Title:       "Tag: " + tag.Name,
			Description: "All the articles with the tag \"" + tag.Name + "\".",
			URL:         BuildURL(a.Config.URL, "tags", tag.Slug),
			OGType:      "website",
			Image:       a.ogImageURL(""),
		},
	}))
}

func (a *App) handleAuthor(c echo.Context) error {
	author, err := a.Store.GetAuthor(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	posts, err := a.Store.ListPostsByAuthor(author.Name, a.cutoff())
	if err != nil {
		return err
	}
	return Render(c, a.Views.Author(AuthorPage{
		Site:   a.Config,
		Author: author,
		Posts:  posts,
		Meta: PageMeta{
			Title:       author.Name,
			Description: author.Occupation + " at " + author.Company,
			URL:         BuildURL(a.Config.URL, "authors", author.Slug),
			OGType:      "profile",
			Image:       a.ogImageURL(author.Avatar),
			JSONLD:      PersonJsonLD(author, a.Config),
		},
	}))
}

// handleAsset serves images that live next to the content documents. A ?w=
// query selects a scaled-down variant.
func (a *App) handleAsset(c echo.Context) error {
	name := strings.TrimPrefix(c.Param("*"), "/")
	if !fs.ValidPath(name) || !isImageFile(name) {
		return echo.ErrNotFound
	}
	data, err := fs.ReadFile(a.contentFS, name)
	if err != nil {
		return echo.ErrNotFound
	}
	if w, err := strconv.Atoi(c.QueryParam("w")); err == nil && path.Ext(name) != ".svg" {
		width, ok := allowedWidth(w)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid width")
		}
		variant, contentType, err := a.Images.Get(name, data, width)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return c.Blob(http.StatusOK, contentType, variant)
	}
	return c.Blob(http.StatusOK, mimeByExt(name), data)
}

var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".avif": "image/avif",
}

func isImageFile(name string) bool {
	_, ok := imageTypes[strings.ToLower(path.Ext(name))]
	return ok
}

func mimeByExt(name string) string {
	return imageTypes[strings.ToLower(path.Ext(name))]
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	authors, err := a.Store.ListAuthors()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts, tags, authors)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /admin/\n\nSitemap: " + AbsoluteURL(a.Config.URL, "/sitemap.xml") + "\n"
	return c.String(http.StatusOK, body)
}

func (a *App) siteMeta() PageMeta {
	return PageMeta{
		Title:       a.Config.Name,
		Description: a.Config.Description,
		URL:         BuildURL(a.Config.URL),
		OGType:      "website",
		Image:       a.ogImageURL(""),
		JSONLD:      WebsiteJsonLD(a.Config),
	}
}

// ogImageURL returns the absolute URL of src, or of the site fallback image
// when src is empty.
func (a *App) ogImageURL(src string) string {
	if src == "" {
		src = a.Config.OGImage
	}
	return AbsoluteURL(a.Config.URL, src)
}

func (a *App) authorByName(name string) (content.Author, bool) {
	if name == "" {
		return content.Author{}, false
	}
	authors, err := a.Store.ListAuthors()
	if err != nil {
		a.log.WithError(err).Warn("list authors")
		return content.Author{}, false
	}
	for _, au := range authors {
		if au.Name == name {
			return au, true
		}
	}
	return content.Author{}, false
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.log.WithError(err).WithField("uri", c.Request().RequestURI).Error("server error")
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
