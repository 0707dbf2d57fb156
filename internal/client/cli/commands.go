package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/docadmin/internal/client/models"
	"github.com/dmitrijs2005/docadmin/internal/client/views"
	"github.com/dmitrijs2005/docadmin/internal/common"
)

var errNoList = errors.New("the current screen has no list")

// contentField is edited with the multi-line prompt.
const contentField = "content"

func usage(format string) error {
	return fmt.Errorf("usage: %s", format)
}

func parseID(args []string, cmd string) (int64, error) {
	if len(args) != 1 {
		return 0, usage(cmd + " <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func parsePositive(s, what string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return n, nil
}

func (a *App) table() (views.Table, error) {
	_, screen := a.shell.Current()
	t, ok := screen.(views.Table)
	if !ok {
		return nil, errNoList
	}
	return t, nil
}

func (a *App) viewer() (*views.PdfViewer, bool) {
	_, screen := a.shell.Current()
	v, ok := screen.(*views.PdfViewer)
	return v, ok
}

// afterCommand follows a redirect a screen asked for while handling the
// command, such as the access log sending a rejected session to /login.
func (a *App) afterCommand(ctx context.Context) {
	followed, err := a.shell.FollowRedirect(ctx)
	if followed && err == nil {
		a.render()
	}
}

func (a *App) Go(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("go <path>")
	}
	err := a.shell.Navigate(ctx, args[0])
	if errors.Is(err, views.ErrUnknownRoute) {
		return err
	}
	a.render()
	return notified(err)
}

func (a *App) Menu(context.Context) error {
	a.printMenu()
	return nil
}

func (a *App) Show(context.Context) error {
	a.render()
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if v, ok := a.viewer(); ok {
		err := v.Load(ctx)
		a.render()
		return notified(err)
	}
	t, err := a.table()
	if err != nil {
		return err
	}
	err = t.Refresh(ctx)
	a.render()
	return notified(err)
}

// Page moves a list to page n, optionally changing the size, or jumps a
// document to page n.
func (a *App) Page(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("page <n> [size]")
	}
	page, err := parsePositive(args[0], "page")
	if err != nil {
		return err
	}

	if v, ok := a.viewer(); ok {
		if err := v.GoTo(page); err != nil {
			return err
		}
		a.render()
		return nil
	}

	t, err := a.table()
	if err != nil {
		return err
	}
	size := t.PageSize()
	if len(args) == 2 {
		if size, err = parsePositive(args[1], "size"); err != nil {
			return err
		}
	}
	err = t.Paginate(ctx, page, size)
	a.render()
	return notified(err)
}

// Size changes the page size and goes back to page 1.
func (a *App) Size(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("size <n>")
	}
	size, err := parsePositive(args[0], "size")
	if err != nil {
		return err
	}
	t, err := a.table()
	if err != nil {
		return err
	}
	err = t.Paginate(ctx, 1, size)
	a.render()
	return notified(err)
}

func (a *App) Next(ctx context.Context) error {
	return a.step(ctx, true)
}

func (a *App) Prev(ctx context.Context) error {
	return a.step(ctx, false)
}

func (a *App) step(ctx context.Context, forward bool) error {
	if v, ok := a.viewer(); ok {
		moved := v.Prev
		if forward {
			moved = v.Next
		}
		if !moved() {
			if !v.Loaded() {
				return views.ErrNotLoaded
			}
			printlnFn("no more pages")
			return nil
		}
		a.render()
		return nil
	}

	t, err := a.table()
	if err != nil {
		return err
	}
	if forward {
		err = t.Next(ctx)
	} else {
		err = t.Prev(ctx)
	}
	a.render()
	return notified(err)
}

// Filter sets the list filters from name=value arguments. Without arguments
// every filter is cleared.
func (a *App) Filter(ctx context.Context, args []string) error {
	t, err := a.table()
	if err != nil {
		return err
	}
	if len(t.FilterFields()) == 0 {
		return views.ErrNotSupported
	}
	filters, err := ParseAssignments(args)
	if err != nil {
		return err
	}
	if k, ok := filtersKnown(t, filters); !ok {
		return fmt.Errorf("unknown filter %q (fields: %s)", k, strings.Join(t.FilterFields(), ", "))
	}
	err = t.Filter(ctx, filters)
	a.render()
	return notified(err)
}

func filtersKnown(t views.Table, filters map[string]string) (string, bool) {
	known := make(map[string]bool)
	for _, f := range t.FilterFields() {
		known[f] = true
	}
	for k := range filters {
		if !known[k] {
			return k, false
		}
	}
	return "", true
}

func (a *App) New(ctx context.Context) error {
	t, err := a.table()
	if err != nil {
		return err
	}
	d, err := t.CreateDialog()
	if err != nil {
		return err
	}
	return a.runDialog(ctx, d)
}

func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := parseID(args, "edit")
	if err != nil {
		return err
	}
	t, err := a.table()
	if err != nil {
		return err
	}
	d, err := t.UpdateDialog(id)
	if err != nil {
		return err
	}
	return a.runDialog(ctx, d)
}

// runDialog prompts for every visible field, then submits. A rejected form
// shows the field messages and asks again for the missing fields.
func (a *App) runDialog(ctx context.Context, d *views.Dialog) error {
	fmt.Fprintln(a.out, d.Title)
	fields := d.Form().Fields()

	for {
		for _, f := range fields {
			if f.Hidden {
				continue
			}
			if err := a.promptField(d.Form(), f); err != nil {
				d.Close()
				return err
			}
		}

		err := d.Submit(ctx)
		var verr *views.ValidationError
		if !errors.As(err, &verr) {
			a.render()
			return notified(err)
		}

		for _, name := range verr.Fields {
			fmt.Fprintf(a.out, "  %s\n", verr.Messages[name])
		}
		again, cerr := Confirm(a.reader, "Fix and submit again?", a.out)
		if cerr != nil || !again {
			d.Close()
			return common.ErrCancelled
		}
		fields = missing(d.Form().Fields(), verr.Fields)
	}
}

func missing(fields []views.Field, names []string) []views.Field {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []views.Field
	for _, f := range fields {
		if want[f.Name] {
			out = append(out, f)
		}
	}
	return out
}

// promptField reads one value. An empty answer keeps the current value.
func (a *App) promptField(form *views.Form, f views.Field) error {
	current := form.Get(f.Name)
	prompt := f.Prompt()
	if current != "" {
		prompt += fmt.Sprintf(" [%s]", common.Truncate(current, 40))
	}

	if f.Name == contentField {
		text, ok, err := getMultiline(a.reader, prompt, a.out)
		if err != nil {
			return err
		}
		if ok && text != "" {
			return form.Set(f.Name, text)
		}
		return nil
	}

	text, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if text != "" {
		return form.Set(f.Name, text)
	}
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := parseID(args, "delete")
	if err != nil {
		return err
	}
	t, err := a.table()
	if err != nil {
		return err
	}
	err = t.Delete(ctx, id)
	if errors.Is(err, common.ErrCancelled) || errors.Is(err, views.ErrNotSupported) {
		return err
	}
	a.render()
	return notified(err)
}

func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("upload <file>")
	}
	t, err := a.table()
	if err != nil {
		return err
	}
	err = t.Upload(ctx, args[0])
	if errors.Is(err, views.ErrNotSupported) {
		return err
	}
	a.render()
	return notified(err)
}

func (a *App) Download(ctx context.Context, args []string) error {
	id, err := parseID(args, "download")
	if err != nil {
		return err
	}
	t, err := a.table()
	if err != nil {
		return err
	}
	_, err = t.Download(ctx, id)
	if errors.Is(err, views.ErrNotSupported) {
		return err
	}
	return notified(err)
}

// View opens the document viewer of a record.
func (a *App) View(ctx context.Context, args []string) error {
	id, err := parseID(args, "view")
	if err != nil {
		return err
	}
	t, err := a.table()
	if err != nil {
		return err
	}
	route, err := t.ViewRoute(id)
	if err != nil {
		return err
	}
	return a.Go(ctx, []string{route})
}

const defaultHistoryLimit = 20

// History lists the latest local uploads and downloads. "history clear"
// forgets them.
func (a *App) History(ctx context.Context, args []string) error {
	limit := defaultHistoryLimit
	switch len(args) {
	case 0:
	case 1:
		if args[0] == "clear" {
			if err := a.history.Clear(ctx); err != nil {
				a.log.Error(ctx, "failed to clear transfer history", "error", err)
				return err
			}
			fmt.Fprintln(a.out, "Transfer history cleared.")
			return nil
		}
		n, err := parsePositive(args[0], "count")
		if err != nil {
			return err
		}
		limit = n
	default:
		return usage("history [n|clear]")
	}

	items, err := a.history.List(ctx, limit)
	if err != nil {
		a.log.Error(ctx, "failed to read transfer history", "error", err)
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No transfers yet.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tDIRECTION\tRESOURCE\tREMOTE ID\tNAME\tSIZE\tSTATUS\tLOCAL PATH")
	for _, t := range items {
		remote, size := "--", "--"
		if t.RemoteID > 0 {
			remote = strconv.FormatInt(t.RemoteID, 10)
		}
		if t.Size >= 0 {
			size = strconv.FormatInt(t.Size, 10)
		}
		status := t.Status
		if t.Error != "" {
			status += ": " + t.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.CreatedAt.Format(models.TimestampLayout), t.Direction, t.Resource, remote, t.Name, size, status, t.LocalPath)
	}
	return tw.Flush()
}
