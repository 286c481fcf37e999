package agent

import (
	"fmt"
	"strings"

	"sambot/internal/archive"
)

// selfInquiryTriggers mark questions about the bot's own identity.
var selfInquiryTriggers = []string{
	"quem é você",
	"quem e voce",
	"te criou",
	"seu autor",
	"sua tecnologia",
	"como você funciona",
}

// SelfKnowledge answers questions about the bot itself using the identity
// file instead of letting the model improvise.
type SelfKnowledge struct {
	archive *archive.Archive
}

func NewSelfKnowledge(arc *archive.Archive) *SelfKnowledge {
	return &SelfKnowledge{archive: arc}
}

// IsSelfInquiry reports whether the text asks about the bot's identity.
func (s *SelfKnowledge) IsSelfInquiry(text string) bool {
	lower := strings.ToLower(text)
	for _, trigger := range selfInquiryTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

// IdentityPrompt builds the system prompt used when answering about itself.
func (s *SelfKnowledge) IdentityPrompt() string {
	identity := s.archive.GetIdentity()
	name := identity.Name
	if name == "" {
		name = "SamBot"
	}
	return fmt.Sprintf(
		"Você é a %s. Sua descrição: %s. Responda de forma carismática baseando-se no seu JSON de identidade.",
		name, identity.Description)
}
