// Package mailtest provides a Sender that records messages instead of sending them.
package mailtest

import (
	"context"
	"sync"

	"storefront-api/mail"
)

type Recorder struct {
	mu       sync.Mutex
	messages []mail.Message
	Err      error
}

func (r *Recorder) Send(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return r.Err
}

func (r *Recorder) Messages() []mail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mail.Message(nil), r.messages...)
}

// Last returns the most recent message, or the zero value.
func (r *Recorder) Last() mail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return mail.Message{}
	}
	return r.messages[len(r.messages)-1]
}
