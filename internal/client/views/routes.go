package views

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/docadmin/internal/client/models"
	"github.com/dmitrijs2005/docadmin/internal/client/services"
	"github.com/dmitrijs2005/docadmin/internal/logging"
	"github.com/dmitrijs2005/docadmin/internal/netx"
)

// ResourceClient is the CRUD service of one collection.
type ResourceClient[T any] interface {
	Lister[T]
	Mutator
}

// Deps are the services the console screens are built from.
type Deps struct {
	Articles    ResourceClient[models.Article]
	PdfArticles ResourceClient[models.PdfArticle]
	AccessLogs  Lister[models.PdfArticleAccessLog]
	Files       Lister[models.File]
	Logs        Lister[models.Log]

	Transfers interface {
		FileUploader
		FileDownloader
		ContentLoader
	}
	Stats StatLoader
	Auth  Authenticator

	PageSize int
	Progress netx.ProgressFunc
	Confirm  Confirmer
	Notify   Notifier
	Log      logging.Logger

	// Redirect is called by screens that need to leave the current route,
	// usually Shell.Redirect.
	Redirect func(path string)
}

func (d Deps) logger(name string) logging.Logger {
	if d.Log == nil {
		return logging.Nop().With("module", name)
	}
	return d.Log.With("module", name)
}

var (
	articleFields = []Field{
		{Name: "title", Label: "Title", Required: true, Message: "Please input the title of article!"},
		{Name: "content", Label: "Content", Required: true, Message: "Please input the content of article!"},
	}
	pdfArticleUpdateFields = []Field{
		{Name: "title", Label: "Title", Required: true, Message: "Please input the title of article!"},
		{Name: "content", Label: "Content", Required: true, Message: "Please input the content of article!"},
	}
)

func idCol[T any](id func(T) int64) Column[T] {
	return Column[T]{Title: "ID", Value: func(it T) string { return strconv.FormatInt(id(it), 10) }}
}

// Routes returns every console route wired to d.
func Routes(d Deps) []Route {
	return []Route{
		{Pattern: "/home", Title: "Dashboard", Menu: true, Build: func(map[string]string) (Screen, error) {
			return NewDashboard(d.Stats, d.Notify, d.logger("dashboard")), nil
		}},
		{Pattern: "/pdf_articles", Title: "PDF articles", Menu: true, Build: func(map[string]string) (Screen, error) {
			return d.pdfArticles(), nil
		}},
		{Pattern: "/pdf_articles/:id", Title: "PDF article", Build: func(p map[string]string) (Screen, error) {
			id, err := parseID(p["id"])
			if err != nil {
				return nil, err
			}
			return NewPdfViewer(d.Transfers, services.PdfArticles.ItemPath(id), d.Notify, d.logger("pdf_viewer")), nil
		}},
		{Pattern: "/pdf_article_access_logs", Title: "Access log", Menu: true, RequiresLogin: true, Build: func(map[string]string) (Screen, error) {
			return d.accessLogs(), nil
		}},
		{Pattern: "/articles", Title: "Articles", Menu: true, Build: func(map[string]string) (Screen, error) {
			return d.articles(), nil
		}},
		{Pattern: "/files", Title: "Files", Menu: true, Build: func(map[string]string) (Screen, error) {
			return d.files(), nil
		}},
		{Pattern: "/pdfs/:id", Title: "PDF file", Build: func(p map[string]string) (Screen, error) {
			id, err := parseID(p["id"])
			if err != nil {
				return nil, err
			}
			return NewPdfViewer(d.Transfers, services.Files.ItemPath(id), d.Notify, d.logger("pdf_viewer")), nil
		}},
		{Pattern: "/logs", Title: "Operation logs", Menu: true, Build: func(map[string]string) (Screen, error) {
			return d.logs(), nil
		}},
		{Pattern: "/login", Title: "Login", Menu: true, GuestOnly: true, Build: func(map[string]string) (Screen, error) {
			return NewLoginScreen(d.Auth, d.Notify, d.logger("login")), nil
		}},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad id %q", s)
	}
	return id, nil
}

func (d Deps) articles() *CrudScreen[models.Article] {
	id := func(a models.Article) int64 { return a.ID }
	list := NewListView("articles", Lister[models.Article](d.Articles), d.PageSize, []Column[models.Article]{
		idCol(id),
		{Title: "Title", Value: func(a models.Article) string { return a.Title }},
		{Title: "Content", Value: func(a models.Article) string { return a.Content }},
		{Title: "Created", Value: func(a models.Article) string { return a.CreatedAt.String() }},
		{Title: "Updated", Value: func(a models.Article) string { return a.UpdatedAt.String() }},
	}, WithListNotifier[models.Article](d.Notify), WithListLogger[models.Article](d.logger("articles")))

	return NewCrudScreen(CrudSpec[models.Article]{
		List:         list,
		Filters:      services.Articles.Filters,
		ID:           id,
		Mutator:      d.Articles,
		CreateFields: articleFields,
		UpdateFields: articleFields,
		ToValues: func(a models.Article) map[string]string {
			return map[string]string{"title": a.Title, "content": a.Content}
		},
		Deletable: true,
		Confirm:   d.Confirm,
		Notify:    d.Notify,
		Log:       d.Log,
	})
}

func (d Deps) pdfArticles() *CrudScreen[models.PdfArticle] {
	id := func(a models.PdfArticle) int64 { return a.ID }
	list := NewListView("pdf_articles", Lister[models.PdfArticle](d.PdfArticles), d.PageSize, []Column[models.PdfArticle]{
		idCol(id),
		{Title: "Title", Value: func(a models.PdfArticle) string { return a.Title }},
		{Title: "Views", Value: func(a models.PdfArticle) string { return strconv.FormatInt(a.AccessCount, 10) }},
		{Title: "Created", Value: func(a models.PdfArticle) string { return a.CreatedAt.String() }},
		{Title: "Updated", Value: func(a models.PdfArticle) string { return a.UpdatedAt.String() }},
	}, WithListNotifier[models.PdfArticle](d.Notify), WithListLogger[models.PdfArticle](d.logger("pdf_articles")))

	return NewCrudScreen(CrudSpec[models.PdfArticle]{
		List:         list,
		Filters:      services.PdfArticles.Filters,
		ID:           id,
		Mutator:      d.PdfArticles,
		UpdateFields: pdfArticleUpdateFields,
		ToValues: func(a models.PdfArticle) map[string]string {
			return map[string]string{"title": a.Title, "content": a.Content}
		},
		Deletable: true,
		Uploader:  NewUploader(d.Transfers, services.PdfArticles, d.Progress, list.Refresh, d.Notify, d.logger("upload")),
		ViewRoute: func(id int64) string { return "/pdf_articles/" + strconv.FormatInt(id, 10) },
		Confirm:   d.Confirm,
		Notify:    d.Notify,
		Log:       d.Log,
	})
}

// accessLogs sends the user to /login when the backend rejects the token.
// Other failures only notify.
func (d Deps) accessLogs() *CrudScreen[models.PdfArticleAccessLog] {
	id := func(a models.PdfArticleAccessLog) int64 { return a.ID }
	hook := func(ctx context.Context, err error) {
		if services.IsAuthError(err) && d.Redirect != nil {
			d.Redirect(RouteLogin)
		}
	}
	list := NewListView("pdf_article_access_logs", d.AccessLogs, d.PageSize, []Column[models.PdfArticleAccessLog]{
		idCol(id),
		{Title: "Article", Value: func(a models.PdfArticleAccessLog) string { return a.ArticleTitle }},
		{Title: "Source IP", Value: func(a models.PdfArticleAccessLog) string { return a.SrcIP }},
		{Title: "User agent", Value: func(a models.PdfArticleAccessLog) string { return a.UserAgent }},
		{Title: "Time", Value: func(a models.PdfArticleAccessLog) string { return a.CreatedAt.String() }},
	},
		WithListNotifier[models.PdfArticleAccessLog](d.Notify),
		WithListLogger[models.PdfArticleAccessLog](d.logger("access_logs")),
		WithErrorHook[models.PdfArticleAccessLog](hook),
	)

	return NewCrudScreen(CrudSpec[models.PdfArticleAccessLog]{
		List:    list,
		Filters: services.PdfArticleAccessLogs.Filters,
		ID:      id,
		Notify:  d.Notify,
		Log:     d.Log,
	})
}

func (d Deps) files() *CrudScreen[models.File] {
	id := func(f models.File) int64 { return f.ID }
	list := NewListView("files", d.Files, d.PageSize, []Column[models.File]{
		idCol(id),
		{Title: "Name", Value: func(f models.File) string { return f.Name }},
		{Title: "Created", Value: func(f models.File) string { return f.CreatedAt.String() }},
	}, WithListNotifier[models.File](d.Notify), WithListLogger[models.File](d.logger("files")))

	return NewCrudScreen(CrudSpec[models.File]{
		List:       list,
		Filters:    services.Files.Filters,
		ID:         id,
		Uploader:   NewUploader(d.Transfers, services.Files, d.Progress, list.Refresh, d.Notify, d.logger("upload")),
		Downloader: NewDownloader(d.Transfers, d.Notify, d.logger("download")),
		ViewRoute:  func(id int64) string { return "/pdfs/" + strconv.FormatInt(id, 10) },
		Notify:     d.Notify,
		Log:        d.Log,
	})
}

func (d Deps) logs() *CrudScreen[models.Log] {
	id := func(l models.Log) int64 { return l.ID }
	list := NewListView("logs", d.Logs, d.PageSize, []Column[models.Log]{
		idCol(id),
		{Title: "Content", Value: func(l models.Log) string { return l.Content }},
		{Title: "Created", Value: func(l models.Log) string { return l.CreatedAt.String() }},
	}, WithListNotifier[models.Log](d.Notify), WithListLogger[models.Log](d.logger("logs")))

	return NewCrudScreen(CrudSpec[models.Log]{
		List:    list,
		Filters: services.Logs.Filters,
		ID:      id,
		Notify:  d.Notify,
		Log:     d.Log,
	})
}
