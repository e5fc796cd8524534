package registry

import (
	"encoding/base64"
	"sort"
	"strings"
)

// Format selects discover's rendering.
type Format string

const (
	FormatList        Format = "list"
	FormatTOON        Format = "toon"
	FormatTOONTabular Format = "toon-tabular"
)

// encodeTOON renders rows as Token-Oriented Object Notation: a header
// line naming the keys once, then one tab-separated value line per row
// in the same key order (spec §6). Encoding is deterministic: keys are
// sorted, and any field value containing a tab or newline — which would
// break the line-delimited/tab-separated contract — is base64-escaped
// with a "b64:" marker so decoding is lossless.
//
// toon-tabular additionally right-pads every column to its widest value
// for human readability; the tab separators are preserved underneath so
// a machine reader using the same split-on-tab rule gets identical
// fields (extra trailing spaces are insignificant once trimmed).
func encodeTOON(rows []map[string]string, tabular bool) string {
	if len(rows) == 0 {
		return ""
	}

	keySet := map[string]bool{}
	for _, row := range rows {
		for k := range row {
			keySet[k] = true
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	widths := make([]int, len(keys))
	for i, k := range keys {
		widths[i] = len(k)
	}

	lines := make([][]string, 0, len(rows)+1)
	header := append([]string(nil), keys...)
	lines = append(lines, header)

	for _, row := range rows {
		cells := make([]string, len(keys))
		for i, k := range keys {
			cells[i] = escapeTOONField(row[k])
			if tabular && len(cells[i]) > widths[i] {
				widths[i] = len(cells[i])
			}
		}
		lines = append(lines, cells)
	}

	var b strings.Builder
	for li, line := range lines {
		for ci, cell := range line {
			if tabular {
				cell = cell + strings.Repeat(" ", widths[ci]-len(cell))
			}
			b.WriteString(cell)
			if ci < len(line)-1 {
				b.WriteByte('\t')
			}
		}
		if li < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

const toonB64Prefix = "b64:"

func escapeTOONField(v string) string {
	if strings.ContainsAny(v, "\t\n\r") || !isASCII(v) {
		return toonB64Prefix + base64.StdEncoding.EncodeToString([]byte(v))
	}
	return v
}

// decodeTOONField reverses escapeTOONField, exposed so a consumer that
// round-trips a discover(format:"toon") response can recover raw values.
func decodeTOONField(v string) string {
	if !strings.HasPrefix(v, toonB64Prefix) {
		return v
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(v, toonB64Prefix))
	if err != nil {
		return v
	}
	return string(decoded)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}

