package auth

import (
	"context"
	"fmt"
)

// ConsoleNotifier prints notification email to stdout. It stands in for
// the real mailer during development.
type ConsoleNotifier struct{}

var _ Notifier = ConsoleNotifier{}

func (ConsoleNotifier) SendWelcome(ctx context.Context, user *User, baseURL string) error {
	fmt.Println("====== SENDING WELCOME EMAIL =======")
	fmt.Printf("to: %s\n", user.Email)
	fmt.Printf("link: %s\n", baseURL)
	return nil
}

func (ConsoleNotifier) SendPasswordReset(ctx context.Context, user *User, resetURL string) error {
	fmt.Println("====== SENDING RESET EMAIL =======")
	fmt.Printf("to: %s\n", user.Email)
	fmt.Printf("link: %s\n", resetURL)
	return nil
}

type noopNotifier struct{}

func (noopNotifier) SendWelcome(context.Context, *User, string) error       { return nil }
func (noopNotifier) SendPasswordReset(context.Context, *User, string) error { return nil }

func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
