package conversation

// Level is the severity of a toast
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient message for the user, shown outside the history
type Notification struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Notifier receives toasts. Notify is called without the store lock held and
// may be called from the synthesis goroutine.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(Notification)

// Notify calls f(n)
func (f NotifierFunc) Notify(n Notification) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notification) {}
