package effectchain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Node is the JSON form of one chain node. Params values may be numbers,
// strings or booleans.
type Node struct {
	ID       string         `json:"id,omitempty"`
	Type     string         `json:"type"`
	Bypassed bool           `json:"bypassed,omitempty"`
	Params   map[string]any `json:"params,omitempty"`
}

// ToParams converts n into the typed parameter form used by runtimes.
func (n Node) ToParams() Params {
	num, str := parseNodeParams(n.Params)

	return Params{
		ID:       n.ID,
		Type:     n.Type,
		Bypassed: n.Bypassed,
		Num:      num,
		Str:      str,
	}
}

// ParseNodes decodes an ordered JSON array of nodes. Nodes without a type
// are rejected; missing IDs are filled with the node's position.
func ParseNodes(raw []byte) ([]Params, error) {
	var nodes []Node

	err := json.Unmarshal(raw, &nodes)
	if err != nil {
		return nil, fmt.Errorf("invalid chain json: %w", err)
	}

	return NodesToParams(nodes)
}

// NodesToParams converts decoded nodes, applying the same rules as ParseNodes.
func NodesToParams(nodes []Node) ([]Params, error) {
	out := make([]Params, 0, len(nodes))

	for i, n := range nodes {
		if n.Type == "" {
			return nil, fmt.Errorf("invalid chain: node %d has no type", i)
		}

		p := n.ToParams()
		if p.ID == "" {
			p.ID = strconv.Itoa(i)
		}

		out = append(out, p)
	}

	return out, nil
}

// parseNodeParams extracts numeric and string parameters from raw JSON params.
func parseNodeParams(params map[string]any) (map[string]float64, map[string]string) {
	num := map[string]float64{}
	str := map[string]string{}

	for k, v := range params {
		switch t := v.(type) {
		case float64:
			num[k] = t
		case float32:
			num[k] = float64(t)
		case int:
			num[k] = float64(t)
		case int64:
			num[k] = float64(t)
		case string:
			str[k] = t
		case bool:
			if t {
				num[k] = 1
			} else {
				num[k] = 0
			}
		}
	}

	return num, str
}
