package tui

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/samber/lo"
)

func serialize(format OutputFormat, values map[string]any) ([]byte, error) {
	switch format {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		payload, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("tui: encode submission: %w", err)
		}
		return payload, nil
	}
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	for key, value := range values {
		flattened.Set(key, fmt.Sprint(value))
	}
	return flattened.Encode()
}

func prettyPrint(values map[string]any) string {
	keys := lo.Keys(values)
	sort.Strings(keys)

	width := lo.Max(lo.Map(keys, func(key string, _ int) int { return len(key) }))
	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "%-*s  %v\n", width, key, values[key])
	}
	return b.String()
}
