package assistant

import "fmt"

// Email is a synced message as returned by GET /emails.
// Draft is nil until the backend has generated a reply for the message.
type Email struct {
	MessageID      string  `json:"message_id"`
	Subject        string  `json:"subject"`
	Sender         string  `json:"sender"`
	Classification string  `json:"classification"`
	Snippet        string  `json:"snippet,omitempty"`
	Draft          *string `json:"draft,omitempty"`
}

// HasDraft reports whether a draft is attached. An empty draft still counts.
func (e Email) HasDraft() bool { return e.Draft != nil }

// DraftText returns the draft or "" when none is attached.
func (e Email) DraftText() string {
	if e.Draft == nil {
		return ""
	}
	return *e.Draft
}

// Tone selects the register of a generated draft.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneConcise      Tone = "concise"
	ToneFormal       Tone = "formal"
)

// DefaultTone is used when nothing else is configured.
const DefaultTone = ToneProfessional

var tones = []Tone{ToneProfessional, ToneFriendly, ToneConcise, ToneFormal}

// Tones returns the supported tones in cycling order.
func Tones() []Tone {
	out := make([]Tone, len(tones))
	copy(out, tones)
	return out
}

// Valid reports whether t is one of the supported tones.
func (t Tone) Valid() bool {
	for _, v := range tones {
		if v == t {
			return true
		}
	}
	return false
}

// Next returns the tone after t, wrapping around. Unknown tones map to the default.
func (t Tone) Next() Tone {
	for i, v := range tones {
		if v == t {
			return tones[(i+1)%len(tones)]
		}
	}
	return DefaultTone
}

func (t Tone) String() string { return string(t) }

// ParseTone converts user input into a Tone.
func ParseTone(s string) (Tone, error) {
	t := Tone(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown tone %q (want one of %v)", s, tones)
	}
	return t, nil
}

// DraftRequest is the body of POST /draft.
type DraftRequest struct {
	MessageID         string `json:"message_id"`
	Tone              Tone   `json:"tone"`
	ExtraInstructions string `json:"extra_instructions"`
}

// SendRequest is the body of POST /send.
type SendRequest struct {
	MessageID string `json:"message_id"`
	DraftText string `json:"draft_text"`
}

// SendAck is the acknowledgement object returned by POST /send.
// Only its presence is meaningful.
type SendAck map[string]any

// Health is the response of the GET / probe.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

type syncResponse struct {
	Synced *int `json:"synced"`
}

type draftResponse struct {
	Draft *string `json:"draft"`
}
