// Package memory contains concrete ConversationStore implementations. The
// store interface and ConversationContext type reside in the core package.
// Depend on core.ConversationStore in your code and select an implementation
// at wiring time.
package memory
