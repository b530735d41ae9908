// Package window bounds outbound chat history by message count and token
// budget, newest-biased, using a cheap character-class token estimate.
package window
