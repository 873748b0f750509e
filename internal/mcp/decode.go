package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// decode maps a tool call's argument map onto a typed request struct via a
// JSON round-trip, so handlers never reach into the raw map themselves.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var request T
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return request, fmt.Errorf("marshal tool arguments: %w", err)
	}
	if err := json.Unmarshal(raw, &request); err != nil {
		return request, fmt.Errorf("unmarshal tool arguments: %w", err)
	}
	return request, nil
}
