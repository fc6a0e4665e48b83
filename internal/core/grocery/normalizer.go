package grocery

import "strings"

// SplitLines 將多行食材文字切成去除空白後的非空行
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}

	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// JoinBlocks 以換行串接多段食材文字，略過空白段落
func JoinBlocks(blocks []string) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if strings.TrimSpace(b) == "" {
			continue
		}
		parts = append(parts, b)
	}
	return strings.Join(parts, "\n")
}
