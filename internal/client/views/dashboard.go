package views

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dmitrijs2005/docadmin/internal/client/models"
	"github.com/dmitrijs2005/docadmin/internal/logging"
)

const barWidth = 40

// StatLoader fetches the dashboard counters.
type StatLoader interface {
	Home(ctx context.Context) (models.HomeStat, error)
}

// Dashboard shows article and access counters and the daily access series.
type Dashboard struct {
	loader StatLoader
	notify Notifier
	log    logging.Logger

	mu   sync.Mutex
	stat models.HomeStat
}

func NewDashboard(loader StatLoader, n Notifier, log logging.Logger) *Dashboard {
	if log == nil {
		log = logging.Nop()
	}
	return &Dashboard{loader: loader, notify: orNop(n), log: log}
}

func (d *Dashboard) Mount(ctx context.Context) error {
	st, err := d.loader.Home(ctx)
	if err != nil {
		d.log.Error(ctx, "stats query failed", "error", err)
		failure(d.notify, fmt.Sprintf("query failed: %v", err))
		return err
	}

	d.mu.Lock()
	d.stat = st
	d.mu.Unlock()

	success(d.notify, "query succeeded")
	return nil
}

func (d *Dashboard) Stat() models.HomeStat {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stat
}

func (d *Dashboard) Render(w io.Writer) {
	st := d.Stat()

	fmt.Fprintf(w, "PDF articles: %d\n", st.PdfArticleCount)
	fmt.Fprintf(w, "Views:        %d\n", st.PdfArticleAccessLogCount)

	if len(st.DailyAccessStats) == 0 {
		fmt.Fprintln(w, "(no daily access data)")
		return
	}

	var peak int64
	for _, p := range st.DailyAccessStats {
		peak = max(peak, p.Count)
	}
	for _, p := range st.DailyAccessStats {
		n := 0
		if peak > 0 {
			n = int(p.Count * barWidth / peak)
		}
		fmt.Fprintf(w, "%-10s %s %d\n", p.Day, strings.Repeat("#", n), p.Count)
	}
}
