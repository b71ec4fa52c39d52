package accessibility

import (
	"fmt"
	"strings"

	"github.com/parv18050212/ai-tutor/internal/dto"
)

var frustrationIndicators = []string{
	"i don't understand", "this is hard", "i'm confused", "i don't know",
	"this doesn't make sense", "i'm lost", "i give up", "this is too difficult",
	"i can't", "help me", "i'm stuck", "frustrated", "overwhelming",
}

// DetectFrustration reports whether the student's message reads like a
// frustration or confusion signal.
func DetectFrustration(message string) bool {
	lower := strings.ToLower(message)
	for _, indicator := range frustrationIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// ApplySupport wraps an answer with encouragement when the student showed
// frustration, otherwise returns it unchanged.
func ApplySupport(answer string, frustrated bool) string {
	if !frustrated {
		return answer
	}
	return "🌟 It's okay! Learning takes time, and you're doing great by asking questions.\n\n" +
		answer +
		"\n\n💪 Remember: Every expert was once a beginner. You've got this! Let's break this down into smaller steps."
}

// MemoryScaffold frames an answer with orientation cues for students with
// working memory challenges. Only applied when simplified language is on.
func MemoryScaffold(answer, currentConcept string, settings *dto.AccessibilitySettings) string {
	if settings == nil || !settings.SimplifyLanguage {
		return answer
	}

	return fmt.Sprintf(`📋 **Where we are**: %s
💡 **Key point to remember**: Focus on one concept at a time

%s

🔄 **Next step**: Think about this one question, then we'll move forward together`, currentConcept, answer)
}

// CognitiveAdaptations renders the prompt-level adaptation block for the
// enabled accessibility settings. Empty when nothing applies.
func CognitiveAdaptations(settings *dto.AccessibilitySettings) string {
	if settings == nil {
		return ""
	}

	var adaptations []string

	if settings.SimplifyLanguage {
		adaptations = append(adaptations, `- Keep questions short and focused (max 2 sentences)
- Break complex concepts into micro-steps
- Use clear transitions: "First... Then... Finally..."
- Provide frequent positive reinforcement`)
	}

	if settings.DyslexiaFont {
		adaptations = append(adaptations, `- Avoid complex sentence structures
- Use familiar, high-frequency words
- Provide phonetic hints when introducing new terms
- Repeat key concepts using different phrasing`)
	}

	if settings.LineSpacing {
		adaptations = append(adaptations, `- Allow extra thinking time - don't rush responses
- Provide multiple pathways to the same concept
- Use concrete examples before abstract concepts
- Check understanding frequently with simple questions`)
	}

	if settings.TextToSpeech {
		adaptations = append(adaptations, `- Structure responses for clear audio reading
- Use punctuation for natural speech pauses
- Avoid complex formatting that doesn't read well aloud`)
	}

	return strings.Join(adaptations, "\n")
}
