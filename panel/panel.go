// Package panel holds the email panel's view-model and the operations that
// feed it. Front-ends render from a Panel and never keep state of their own.
package panel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bassamadnan/mailpanel/assistant"
)

// ErrUnknownMessage is returned when an operation addresses a message that is
// not part of the current list.
var ErrUnknownMessage = errors.New("message is not in the current list")

// ItemState is the per-message action state.
type ItemState int

const (
	NoDraft ItemState = iota
	HasDraft
)

func (s ItemState) String() string {
	if s == HasDraft {
		return "has draft"
	}
	return "no draft"
}

// Item is one rendered email.
type Item struct {
	Email assistant.Email
	// Pending is set while a draft or send call for this message is in flight.
	Pending bool
}

// State derives the action state from draft presence.
func (it Item) State() ItemState {
	if it.Email.HasDraft() {
		return HasDraft
	}
	return NoDraft
}

// DraftText returns the draft currently shown for the item.
func (it Item) DraftText() string { return it.Email.DraftText() }

// Panel is the view-model: an order-preserving copy of the last successful
// load plus an id -> position table. It is not safe for concurrent use; every
// front-end mutates it from its single event loop.
type Panel struct {
	items  []Item
	index  map[string]int
	loaded bool
}

// New returns an empty panel.
func New() *Panel {
	return &Panel{index: map[string]int{}}
}

// Replace discards the current items and shows emails instead.
func (p *Panel) Replace(emails []assistant.Email) {
	items := make([]Item, len(emails))
	index := make(map[string]int, len(emails))
	for i, e := range emails {
		if e.Draft != nil {
			d := normalizeDraft(*e.Draft)
			e.Draft = &d
		}
		items[i] = Item{Email: e}
		if _, dup := index[e.MessageID]; !dup {
			index[e.MessageID] = i
		}
	}
	p.items = items
	p.index = index
	p.loaded = true
}

// Loaded reports whether a load has ever succeeded.
func (p *Panel) Loaded() bool { return p.loaded }

// Len returns the number of items.
func (p *Panel) Len() int { return len(p.items) }

// Items returns a copy of the items in display order.
func (p *Panel) Items() []Item {
	out := make([]Item, len(p.items))
	copy(out, p.items)
	return out
}

// At returns the item at position i.
func (p *Panel) At(i int) (Item, bool) {
	if i < 0 || i >= len(p.items) {
		return Item{}, false
	}
	return p.items[i], true
}

// Index returns the position of the message, or -1.
func (p *Panel) Index(messageID string) int {
	if i, ok := p.index[messageID]; ok {
		return i
	}
	return -1
}

// Lookup returns the item for a message id.
func (p *Panel) Lookup(messageID string) (Item, bool) {
	i := p.Index(messageID)
	if i < 0 {
		return Item{}, false
	}
	return p.items[i], true
}

// DraftText returns the draft displayed for the message, if it has one.
func (p *Panel) DraftText(messageID string) (string, bool) {
	it, ok := p.Lookup(messageID)
	if !ok || !it.Email.HasDraft() {
		return "", false
	}
	return it.DraftText(), true
}

// normalizeDraft stores a draft the way it is displayed, so the text sent
// later is the text the user saw.
func normalizeDraft(s string) string {
	return DisplayText(strings.ReplaceAll(s, "\r\n", "\n"))
}

// SetDraft attaches text to one message and clears its pending marker.
// No other item changes.
func (p *Panel) SetDraft(messageID, text string) error {
	i := p.Index(messageID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownMessage, messageID)
	}
	d := normalizeDraft(text)
	p.items[i].Email.Draft = &d
	p.items[i].Pending = false
	return nil
}

// SetPending marks a message as having a call in flight.
func (p *Panel) SetPending(messageID string, pending bool) {
	if i := p.Index(messageID); i >= 0 {
		p.items[i].Pending = pending
	}
}

// ApplyLoad replaces the items when the load succeeded. On failure the
// current items are kept and the error is returned.
func (p *Panel) ApplyLoad(r LoadResult) error {
	if r.Err != nil {
		return r.Err
	}
	p.Replace(r.Emails)
	return nil
}

// ApplyDraft updates the addressed item when the draft call succeeded.
// On failure only the pending marker is cleared.
func (p *Panel) ApplyDraft(r DraftResult) error {
	if r.Err != nil {
		p.SetPending(r.MessageID, false)
		return r.Err
	}
	return p.SetDraft(r.MessageID, r.Draft)
}

// ApplySend clears the pending marker. The caller reloads on success.
func (p *Panel) ApplySend(r SendResult) error {
	p.SetPending(r.MessageID, false)
	return r.Err
}
