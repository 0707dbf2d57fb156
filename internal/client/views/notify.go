// Package views holds the console screens: a generic paginated list with
// create/update dialogs and delete, file transfer actions, the PDF viewer,
// the dashboard and the navigation shell that routes between them.
//
// Screens are UI-agnostic. They report outcomes through a Notifier and
// render themselves as plain text; internal/client/cli drives them from a
// terminal.
package views

// Level classifies a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "ok"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a transient message for the user.
type Notification struct {
	Level   Level
	Message string
}

type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}

func success(n Notifier, msg string) { n.Notify(Notification{Level: LevelSuccess, Message: msg}) }
func failure(n Notifier, msg string) { n.Notify(Notification{Level: LevelError, Message: msg}) }
func info(n Notifier, msg string)    { n.Notify(Notification{Level: LevelInfo, Message: msg}) }

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
