package chat

import (
	"strings"

	"github.com/chatx/chatx/internal/models"
)

// DefaultWindowSize bounds how many conversations the sidebar renders.
const DefaultWindowSize = 20

// Window derives the visible slice of the registry: conversations whose
// title contains the query (case-insensitive), in registry order, truncated
// to the first size entries. It is a pure projection; the registry is never
// touched. A non-positive size yields an empty window.
func Window(convs []models.Conversation, query string, size int) []models.Conversation {
	if size <= 0 {
		return nil
	}

	query = strings.ToLower(query)
	out := make([]models.Conversation, 0, size)
	for _, conv := range convs {
		if query != "" && !strings.Contains(strings.ToLower(conv.Title), query) {
			continue
		}
		out = append(out, conv)
		if len(out) == size {
			break
		}
	}
	return out
}
