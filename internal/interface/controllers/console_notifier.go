package controllers

import (
	"fmt"
	"io"
	"sync"

	"papertube-compress/internal/domain/entities"
	"papertube-compress/internal/domain/repositories"
)

// ConsoleNotifier печатает уведомления в консоль и передает их дальше
type ConsoleNotifier struct {
	mu   sync.Mutex
	out  io.Writer
	next repositories.Notifier
}

// NewConsoleNotifier создает консольный уведомитель; next может быть nil
func NewConsoleNotifier(out io.Writer, next repositories.Notifier) *ConsoleNotifier {
	return &ConsoleNotifier{out: out, next: next}
}

// Notify выводит уведомление с иконкой по типу
func (n *ConsoleNotifier) Notify(notice entities.Notice) {
	icon := "ℹ️"
	switch notice.Kind {
	case entities.NoticeSuccess:
		icon = "✅"
	case entities.NoticeWarning:
		icon = "⚠️"
	case entities.NoticeError:
		icon = "❌"
	}

	n.mu.Lock()
	fmt.Fprintf(n.out, "%s %s\n", icon, notice.Message)
	n.mu.Unlock()

	if n.next != nil {
		n.next.Notify(notice)
	}
}
