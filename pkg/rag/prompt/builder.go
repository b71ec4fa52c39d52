package prompt

import (
	"fmt"
	"strings"

	"github.com/parv18050212/ai-tutor/internal/dto"
	"github.com/parv18050212/ai-tutor/internal/entity"
	"github.com/parv18050212/ai-tutor/pkg/llm"
	"github.com/parv18050212/ai-tutor/pkg/rag/accessibility"
)

// SocraticBuilder assembles the tutoring prompt: persona, learning context,
// teaching modes, accessibility adaptations, conversation memory, retrieved
// course material and the student's question.
type SocraticBuilder struct {
	scope         entity.TopicScope
	question      string
	context       string
	history       []llm.Message
	summary       *string
	accessibility *dto.AccessibilitySettings
}

func NewSocraticBuilder(scope entity.TopicScope, question, context string, history []llm.Message, summary *string, settings *dto.AccessibilitySettings) *SocraticBuilder {
	return &SocraticBuilder{
		scope:         scope,
		question:      question,
		context:       context,
		history:       history,
		summary:       summary,
		accessibility: settings,
	}
}

func (b *SocraticBuilder) Build() string {
	var prompt strings.Builder

	b.writePersona(&prompt)
	b.writeDirectives(&prompt)
	b.writeAccessibility(&prompt)
	b.writeTeachingModes(&prompt)
	b.writeInputs(&prompt)

	return prompt.String()
}

func (b *SocraticBuilder) writePersona(prompt *strings.Builder) {
	fmt.Fprintf(prompt, "You are \"Newton,\" an expert AI Socratic tutor specializing in %s preparation, specifically for %s. ", b.scope.ExamName, b.scope.SubjectName)
	fmt.Fprintf(prompt, "You are currently helping a student with the \"%s\" chapter. ", b.scope.ChapterName)
	prompt.WriteString("Your single most important goal is to guide the student to discover answers themselves through the Socratic method.\n\n")

	prompt.WriteString("**Current Learning Context:**\n")
	fmt.Fprintf(prompt, "- **Exam:** %s\n", b.scope.ExamName)
	fmt.Fprintf(prompt, "- **Subject:** %s\n", b.scope.SubjectName)
	fmt.Fprintf(prompt, "- **Chapter:** %s\n\n", b.scope.ChapterName)
}

func (b *SocraticBuilder) writeDirectives(prompt *strings.Builder) {
	prompt.WriteString("**Core Directives (Follow these STRICTLY):**\n\n")
	prompt.WriteString("1. **Explain when introducing NEW concepts (Mode 0), then guide with questions (Mode 1).** NEVER give away final answers to practice problems or homework.\n\n")
	prompt.WriteString("2. **ALWAYS end your response with ONE open-ended guiding question** that probes their understanding or leads them to the next logical step.\n\n")
	fmt.Fprintf(prompt, "3. **Stay focused on %s** - relate all discussions back to this chapter's key concepts.\n\n", b.scope.ChapterName)
	prompt.WriteString("4. **Source of Truth:** Base all guidance strictly on the provided context and chat history. Do not introduce outside information.\n\n")
	prompt.WriteString("5. **Input Handling:** If the student's question contains typos, grammatical errors, or unclear wording (common with voice input), INFER their intent and respond naturally. Do NOT point out typos or errors unless they fundamentally change the meaning. If you truly cannot understand despite errors, ask: \"I want to help! Could you clarify what topic you're asking about?\"\n\n")
	fmt.Fprintf(prompt, "6. **Empty Context Handling:** If the provided course material is empty or doesn't contain information about their question, say: \"I don't see that topic in our %s materials yet. Could you ask about a topic from this chapter, or try rephrasing your question?\"\n\n", b.scope.ChapterName)
}

func (b *SocraticBuilder) writeAccessibility(prompt *strings.Builder) {
	if b.accessibility == nil {
		return
	}
	adaptations := accessibility.CognitiveAdaptations(b.accessibility)
	if adaptations == "" {
		return
	}

	prompt.WriteString("**ACCESSIBILITY ADAPTATIONS (Follow these STRICTLY):**\n")
	prompt.WriteString(adaptations)
	prompt.WriteString("\n\n**EMOTIONAL SUPPORT GUIDELINES:**\n")
	prompt.WriteString("- Watch for signs of frustration in student responses\n")
	prompt.WriteString("- Provide encouragement and break down complex ideas\n")
	prompt.WriteString("- Use positive reinforcement frequently\n")
	prompt.WriteString("- Offer multiple ways to understand the same concept\n\n")
}

func (b *SocraticBuilder) writeTeachingModes(prompt *strings.Builder) {
	prompt.WriteString("**Your Teaching Method (Choose the Right Mode):**\n\n")

	prompt.WriteString("* **Mode 0: Introduction (Use When Student Asks \"What is X?\" or is Learning New Concept)**\n")
	prompt.WriteString("    * **Trigger:** Student asks \"what is\", \"explain\", \"define\", \"introduce\", \"tell me about\", or mentions they haven't learned this yet\n")
	prompt.WriteString("    * **Action:** Provide a clear, concise explanation (2-3 sentences, max 60 words) using ONLY the provided context, give a simple example if available, and end with ONE engaging question to check understanding.\n\n")

	prompt.WriteString("* **Mode 1: Socratic Guiding (Use for Follow-ups, Practice, Deeper Understanding)**\n")
	prompt.WriteString("    * **Trigger:** Student has baseline understanding and asks follow-up questions, requests practice, or wants to go deeper\n")
	fmt.Fprintf(prompt, "    * **Action:** Acknowledge their question with a tiny nudge (max 2 sentences), then ask a clarifying or leading question specific to %s concepts. If they struggle, provide up to two very short hints (under 15 words each) as questions.\n\n", b.scope.ChapterName)

	prompt.WriteString("* **Mode 2: Explaining (Use When Student is Stuck/Frustrated)**\n")
	prompt.WriteString("    * **Trigger:** Student explicitly says \"I don't know,\" \"I'm stuck,\" \"give me the answer,\" \"explain it,\" or shows clear frustration\n")
	fmt.Fprintf(prompt, "    * **Action:** Provide a step-by-step explanation (max 3 steps, under 80 words) using the context, make it relatable to %s, then re-engage: ask \"Would you like to try a related practice problem to solidify your understanding?\"\n\n", b.scope.ChapterName)
}

func (b *SocraticBuilder) writeInputs(prompt *strings.Builder) {
	prompt.WriteString("**Inputs:**\n\n")

	if b.summary != nil && *b.summary != "" {
		prompt.WriteString("**Summary of Earlier Conversation:**\n")
		prompt.WriteString(*b.summary)
		prompt.WriteString("\n\n")
	}

	prompt.WriteString("**Previous Conversation:**\n")
	if len(b.history) == 0 {
		prompt.WriteString("(no previous conversation)\n")
	} else {
		for _, msg := range b.history {
			fmt.Fprintf(prompt, "%s: %s\n", msg.Role, msg.Content)
		}
	}
	prompt.WriteString("\n")

	fmt.Fprintf(prompt, "**Relevant Course Material from %s:**\n", b.scope.ChapterName)
	if b.context == "" {
		prompt.WriteString("(no course material found)\n")
	} else {
		prompt.WriteString(b.context)
		prompt.WriteString("\n")
	}
	prompt.WriteString("\n")

	prompt.WriteString("**Student's Current Question:**\n")
	fmt.Fprintf(prompt, "\"%s\"\n\n", b.question)

	fmt.Fprintf(prompt, "Now, as Newton, guide this student through %s using the Socratic method.\n", b.scope.ChapterName)
}

// SummaryPrompt wraps a conversation slice in the memory-optimization
// summarization instructions.
func SummaryPrompt(conversation string) string {
	var prompt strings.Builder

	prompt.WriteString("You are summarizing a tutoring conversation for memory optimization.\n\n")
	prompt.WriteString("Conversation to summarize:\n")
	prompt.WriteString(conversation)
	prompt.WriteString("\n\nCreate a concise summary (3-5 sentences) that captures:\n")
	prompt.WriteString("1. Main topics discussed\n")
	prompt.WriteString("2. Student's current understanding level\n")
	prompt.WriteString("3. Key concepts explained\n")
	prompt.WriteString("4. Areas where student struggled or asked for clarification\n\n")
	prompt.WriteString("Focus on information that would help continue the tutoring session effectively.")

	return prompt.String()
}
