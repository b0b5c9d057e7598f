package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fasalsetu/agrilink/internal/interfaces"
	"github.com/fasalsetu/agrilink/internal/lib"
	"github.com/fasalsetu/agrilink/internal/resources/contract"
	"github.com/fasalsetu/agrilink/internal/resources/users"
)

var ErrEmptyMessage = errors.New("message is empty")

const (
	WelcomeText  = "Welcome to FasalSetu Bot! How can I help you today?"
	FallbackText = "Our servers are busy tending the crops. Try again later!"
	EmptyReply   = "I'm having a little trouble connecting to the field. Please try again in a moment!"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

type Message struct {
	Text   string    `json:"text"`
	Sender Sender    `json:"sender"`
	Time   time.Time `json:"time"`
}

// Generator produces free text for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Assistant answers chat messages with the context of the user and their active contract
type Assistant struct {
	generator   Generator
	historySize int
	sessions    map[string]*lib.History[Message]
	mutex       sync.Mutex
	now         func() time.Time
	log         interfaces.ILogger
}

func NewAssistant(generator Generator, historySize int, log interfaces.ILogger) *Assistant {
	return &Assistant{
		generator:   generator,
		historySize: historySize,
		sessions:    make(map[string]*lib.History[Message]),
		now:         time.Now,
		log:         log,
	}
}

// Reply records the message and the bot answer in the session history. Generator failures are
// answered with a fallback text instead of an error
func (a *Assistant) Reply(ctx context.Context, session string, user *users.User, c *contract.Contract, message string) (Message, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Message{}, ErrEmptyMessage
	}

	history := a.session(session)
	prompt := BuildPrompt(user, c, history.Items(), message)
	history.Add(Message{Text: message, Sender: SenderUser, Time: a.now()})

	text, err := a.generator.Generate(ctx, prompt)
	switch {
	case err != nil:
		a.log.Warnf("chat generation failed for session %s: %s", session, err)
		text = FallbackText
	case strings.TrimSpace(text) == "":
		text = EmptyReply
	}

	reply := Message{Text: strings.TrimSpace(text), Sender: SenderBot, Time: a.now()}
	history.Add(reply)
	return reply, nil
}

// History returns the messages of the session, oldest first
func (a *Assistant) History(session string) []Message {
	a.mutex.Lock()
	h, ok := a.sessions[session]
	a.mutex.Unlock()
	if !ok {
		return []Message{{Text: WelcomeText, Sender: SenderBot}}
	}
	return h.Items()
}

func (a *Assistant) session(id string) *lib.History[Message] {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	h, ok := a.sessions[id]
	if !ok {
		h = lib.NewHistory[Message](a.historySize)
		a.sessions[id] = h
	}
	return h
}

func BuildPrompt(user *users.User, c *contract.Contract, history []Message, message string) string {
	name, role, location := "Guest", "Prospect", "India"
	if user != nil {
		name, role, location = user.Name, user.Role.String(), user.Location
	}
	status, product := "None", "General Produce"
	if c != nil {
		status, product = c.Status.String(), c.FruitType
	}

	var b strings.Builder
	b.WriteString(`You are "FasalSetu Agri-Bot", a helpful, secure, and professional WhatsApp bot for AgriLink India.
Context:
`)
	fmt.Fprintf(&b, "- Current User: %s (%s)\n", name, role)
	fmt.Fprintf(&b, "- Location: %s\n", location)
	fmt.Fprintf(&b, "- Active Contract Status: %s\n", status)
	fmt.Fprintf(&b, "- Product: %s\n", product)
	b.WriteString(`Rules:
- Be concise (WhatsApp style).
- Use emojis relevant to agriculture.
- If asked about OTP, explain that they are found in the web dashboard for security. Never reveal an OTP.
- If asked about payments, remind them funds are held in secure Escrow.
`)
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, m := range history {
			fmt.Fprintf(&b, "%s: %s\n", m.Sender, m.Text)
		}
	}
	fmt.Fprintf(&b, "User message: %q\n", message)
	return b.String()
}
