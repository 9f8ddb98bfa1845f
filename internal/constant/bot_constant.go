package constant

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleSystem    = "system"

	// Prompt pair used to derive a bot's system instruction from its draft.
	InstructionGeneratorSystemPrompt = "You are an AI assistant that generates system prompts/instructions for chatbots."

	InstructionGeneratorUserPromptTemplate = `Generate a system prompt for a chatbot with the following details:
Name: %s
Description: %s
Personality: %s
Knowledge Base: %s`

	// Every bot gets the same avatar; image generation was deliberately
	// left out of the authoring flow.
	PlaceholderAvatarURL = "/static/bot-avatar-placeholder.png"

	SessionTitlePrefix = "Conversation"

	DefaultThemePrimaryColor   = "#3f51b5"
	DefaultThemeFontSizePx     = 16
	DefaultThemeBorderRadiusPx = 4
)
