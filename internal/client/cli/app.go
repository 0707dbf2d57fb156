package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dmitrijs2005/docadmin/internal/client/client"
	"github.com/dmitrijs2005/docadmin/internal/client/config"
	"github.com/dmitrijs2005/docadmin/internal/client/models"
	"github.com/dmitrijs2005/docadmin/internal/client/repositories/transfers"
	"github.com/dmitrijs2005/docadmin/internal/client/services"
	"github.com/dmitrijs2005/docadmin/internal/client/session"
	"github.com/dmitrijs2005/docadmin/internal/client/views"
	"github.com/dmitrijs2005/docadmin/internal/logging"
	"github.com/dmitrijs2005/docadmin/internal/netx"
)

// sessionInfo is what the console shows about the login state.
type sessionInfo interface {
	LoggedIn(ctx context.Context) bool
	Username(ctx context.Context) string
	Info(ctx context.Context) (session.TokenInfo, error)
}

type App struct {
	shell   *views.Shell
	login   *views.LoginScreen
	session sessionInfo
	history transfers.Repository
	reader  *bufio.Reader
	out     io.Writer
	log     logging.Logger
	db      *sql.DB
}

// NewApp wires the local session database, the REST client, the services
// and the console screens.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", cfg.DatabasePath, "error", err)
		return nil, err
	}

	sess := session.New(session.NewSQLiteStore(db), log.With("module", "session"))

	rc, err := client.NewRESTClient(cfg.ServerURL, sess,
		client.WithLogger(log.With("module", "rest")),
		client.WithTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info(ctx, "backend configured", "url", rc.BaseURL(), "database", cfg.DatabasePath)

	history := transfers.NewSQLiteRepository(db)

	a := &App{
		session: sess,
		history: history,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		log:     log,
		db:      db,
	}

	auth := services.NewAuthService(rc, sess)
	files := services.NewFileService(rc, cfg.DownloadDir,
		services.WithHistory(history),
		services.WithFileLogger(log.With("module", "files")),
	)
	deps := views.Deps{
		Articles:    services.NewResourceService[models.Article](rc, services.Articles),
		PdfArticles: services.NewResourceService[models.PdfArticle](rc, services.PdfArticles),
		AccessLogs:  services.NewResourceService[models.PdfArticleAccessLog](rc, services.PdfArticleAccessLogs),
		Files:       services.NewResourceService[models.File](rc, services.Files),
		Logs:        services.NewResourceService[models.Log](rc, services.Logs),
		Transfers:   files,
		Stats:       services.NewStatService(rc),
		Auth:        auth,
		PageSize:    cfg.PageSize,
		Progress:    a.printProgress,
		Confirm:     views.ConfirmFunc(a.confirm),
		Notify:      a,
		Log:         log,
		Redirect:    func(path string) { a.shell.Redirect(path) },
	}
	a.shell = views.NewShell(views.Routes(deps), sess, auth, a, log)
	a.login = views.NewLoginScreen(auth, a, log.With("module", "login"))

	return a, nil
}

// Close releases the shell subscription and the session database.
func (a *App) Close() error {
	if a.shell != nil {
		a.shell.Close()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Run mounts the default route and reads commands until exit or EOF.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "docadmin console (type 'help' for commands)")

	a.shell.OnMenuChange(func(items []views.MenuItem) {
		a.log.Debug(ctx, "menu changed", "items", len(items))
	})
	if err := a.shell.Navigate(ctx, views.RouteRoot); err == nil {
		a.render()
	}

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.session.LoggedIn(ctx)
}

func (a *App) status(ctx context.Context) string {
	path, _ := a.shell.Current()
	if name := a.session.Username(ctx); name != "" && a.isLoggedIn(ctx) {
		return name + " " + path
	}
	return path
}

var outMu sync.Mutex

// Notify prints a notification line.
func (a *App) Notify(n views.Notification) {
	outMu.Lock()
	defer outMu.Unlock()
	fmt.Fprintf(a.out, "[%s] %s\n", n.Level, n.Message)
}

func (a *App) printProgress(p netx.Progress) {
	outMu.Lock()
	defer outMu.Unlock()
	if pct, ok := p.Percent(); ok {
		fmt.Fprintf(a.out, "\ruploading: %3d%%", pct)
		if p.Loaded >= p.Total {
			fmt.Fprintln(a.out)
		}
		return
	}
	fmt.Fprintf(a.out, "\ruploading: %d bytes", p.Loaded)
}

func (a *App) confirm(_ context.Context, prompt string) (bool, error) {
	return Confirm(a.reader, prompt, a.out)
}

func (a *App) render() {
	_, screen := a.shell.Current()
	if screen == nil {
		return
	}
	screen.Render(a.out)
}

func (a *App) printMenu() {
	path, _ := a.shell.Current()
	for _, m := range a.shell.Menu() {
		marker := " "
		if m.Path == path || strings.HasPrefix(path, m.Path+"/") {
			marker = "*"
		}
		fmt.Fprintf(a.out, "%s %-26s %s\n", marker, m.Path, m.Title)
	}
}
