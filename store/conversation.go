package store

// Persona is one of the two fixed talk-show roles.
type Persona string

const (
	PersonaHumor   Persona = "HUMOR"
	PersonaSerious Persona = "SERIOUS"
)

// Other returns the opposite persona.
func (p Persona) Other() Persona {
	if p == PersonaHumor {
		return PersonaSerious
	}
	return PersonaHumor
}

// Valid reports whether p is one of the known personas.
func (p Persona) Valid() bool {
	return p == PersonaHumor || p == PersonaSerious
}

// DisplayName returns the on-air name of the persona.
func (p Persona) DisplayName() string {
	if p == PersonaHumor {
		return "Humor AI"
	}
	return "Serious AI"
}

// Turn is one persisted utterance of a conversation.
type Turn struct {
	ID             int32
	UID            string
	ConversationID int32
	Seq            int32
	Speaker        Persona
	Text           string
	CreatedTs      int64
}

// Conversation is a finished, persisted talk show transcript.
type Conversation struct {
	ID        int32
	UID       string
	CreatorID int32
	Topic     string
	CreatedTs int64
	Turns     []*Turn
}

type FindConversation struct {
	ID        *int32
	UID       *string
	CreatorID *int32
}

type DeleteConversation struct {
	UID       string
	CreatorID int32
}
