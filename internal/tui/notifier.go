package tui

import "github.com/diogo/dstchat/internal/conversation"

// Notifier forwards store toasts into the TUI event loop. When the queue is
// full new toasts are dropped; only the latest few matter on screen.
type Notifier struct {
	ch chan conversation.Notification
}

// NewNotifier creates a notifier with room for a handful of pending toasts
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan conversation.Notification, 8)}
}

// Notify implements conversation.Notifier
func (n *Notifier) Notify(note conversation.Notification) {
	select {
	case n.ch <- note:
	default:
	}
}

// C returns the receive side of the queue
func (n *Notifier) C() <-chan conversation.Notification {
	return n.ch
}
