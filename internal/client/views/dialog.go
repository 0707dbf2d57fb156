package views

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docadmin/internal/logging"
)

var ErrDialogClosed = errors.New("dialog is not open")

// SubmitFunc sends a validated form.
type SubmitFunc func(ctx context.Context, form *Form) error

// Dialog is a modal form. Submit closes it whether or not the request
// succeeds and then runs the after hook (the list re-query). A failed
// validation leaves it open and sends nothing.
type Dialog struct {
	Title string
	// Action names the operation in notifications ("create", "update").
	Action string

	form   *Form
	open   bool
	submit SubmitFunc
	after  func(ctx context.Context) error
	notify Notifier
	log    logging.Logger
}

func NewDialog(title, action string, form *Form, submit SubmitFunc, after func(ctx context.Context) error, n Notifier, log logging.Logger) *Dialog {
	if log == nil {
		log = logging.Nop()
	}
	return &Dialog{
		Title:  title,
		Action: action,
		form:   form,
		submit: submit,
		after:  after,
		notify: orNop(n),
		log:    log,
	}
}

// Open resets the form, loads initial values and shows the dialog.
func (d *Dialog) Open(initial map[string]string) error {
	d.form.Reset()
	for k, v := range initial {
		if err := d.form.Set(k, v); err != nil {
			return err
		}
	}
	d.open = true
	return nil
}

func (d *Dialog) Close()        { d.open = false }
func (d *Dialog) Visible() bool { return d.open }
func (d *Dialog) Form() *Form   { return d.form }

// Submit validates and sends the form. It returns the validation error or
// the request error; a re-query failure is reported by the list itself.
func (d *Dialog) Submit(ctx context.Context) error {
	if !d.open {
		return ErrDialogClosed
	}
	if err := d.form.Validate(); err != nil {
		return err
	}

	err := d.submit(ctx, d.form)
	if err != nil {
		d.log.Error(ctx, d.Action+" failed", "error", err)
		failure(d.notify, fmt.Sprintf("%s error: %v", d.Action, err))
	} else {
		success(d.notify, d.Action+" success")
	}

	d.Close()
	if d.after != nil {
		_ = d.after(ctx)
	}
	return err
}
