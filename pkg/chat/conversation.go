package chat

// Conversation is an ordered, mutable message history. It is exclusively
// owned by one in-flight call chain; concurrent callers must work on a Clone.
type Conversation struct {
	messages []Message
}

// NewConversation creates a Conversation from the given messages.
func NewConversation(messages ...Message) *Conversation {
	return &Conversation{messages: messages}
}

// Messages returns the backing message slice.
// Callers must not mutate it while the conversation is in flight.
func (c *Conversation) Messages() []Message {
	return c.messages
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Last returns the last message, or nil when the conversation is empty.
func (c *Conversation) Last() *Message {
	if len(c.messages) == 0 {
		return nil
	}
	return &c.messages[len(c.messages)-1]
}

// Append adds messages to the end of the conversation.
func (c *Conversation) Append(messages ...Message) {
	c.messages = append(c.messages, messages...)
}

// Clone returns a deep-enough copy for an independent call chain:
// the slice is copied, message values are immutable by convention.
func (c *Conversation) Clone() *Conversation {
	cloned := make([]Message, len(c.messages))
	copy(cloned, c.messages)
	return &Conversation{messages: cloned}
}

// Normalize removes any leading system or developer messages and, when
// systemPrompt is not empty, inserts it at position 0. The operation is
// idempotent: repeated calls never accumulate system messages.
func (c *Conversation) Normalize(systemPrompt string) {
	for len(c.messages) > 0 && c.messages[0].Role.IsSystem() {
		c.messages = c.messages[1:]
	}
	if systemPrompt != "" {
		c.messages = append([]Message{SystemMessage(systemPrompt)}, c.messages...)
	}
}
