package ai

import (
	"fmt"

	"github.com/duetcast/duetcast/store"
)

// personaProfile holds the prompt-facing description of one persona. The
// opening and reply blurbs differ: only the reply blurb references the
// counterpart, since the opener has nobody to react to yet.
type personaProfile struct {
	opening string
	reply   string
}

var personaProfiles = map[store.Persona]personaProfile{
	store.PersonaHumor: {
		opening: "You are a highly humorous, sarcastic, and witty AI. You joke around and find the funny side of everything.",
		reply:   "You are a highly humorous, sarcastic, and witty AI. You joke around and find the funny side of everything. You often poke fun at your serious counterpart.",
	},
	store.PersonaSerious: {
		opening: "You are a very serious, analytical, and logical AI. You focus on facts, consequences, and deep philosophical or practical implications.",
		reply:   "You are a very serious, analytical, and logical AI. You focus on facts and logic. You often find your humorous counterpart annoying or irrelevant.",
	},
}

// openingPrompt builds the prompt for the first statement of a show.
func openingPrompt(topic string, persona store.Persona) string {
	profile := personaProfiles[persona]
	return fmt.Sprintf(`%s
You are starting a talk show debate. The topic is: %q.
Please provide an opening statement for the debate directly addressing the topic. Keep it under 3 sentences.`, profile.opening, topic)
}

// replyPrompt builds the prompt for a response to the opponent's last statement.
func replyPrompt(topic string, persona store.Persona, previous string) string {
	profile := personaProfiles[persona]
	return fmt.Sprintf(`%s
You are in a talk show debate about %q.
The other AI just said: %q
Provide a direct response to their statement, maintaining your persona. Keep it under 3 sentences.`, profile.reply, topic, previous)
}
