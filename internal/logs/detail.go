package logs

import "encoding/json"

// DetailLevel controls how many entries a Summary retains per category.
type DetailLevel int

const (
	DetailMinimal DetailLevel = iota
	DetailNormal
	DetailDetailed
)

var detailLevelNames = map[DetailLevel]string{
	DetailMinimal:  "minimal",
	DetailNormal:   "normal",
	DetailDetailed: "detailed",
}

func (d DetailLevel) String() string {
	if s, ok := detailLevelNames[d]; ok {
		return s
	}
	return "normal"
}

func (d DetailLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DetailLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for lvl, name := range detailLevelNames {
		if name == s {
			*d = lvl
			return nil
		}
	}
	*d = DetailNormal
	return nil
}

// caps is (errors, warnings, keyEvents) per spec §4.6.
type caps struct {
	errors, warnings, events int
}

var detailCaps = map[DetailLevel]caps{
	DetailMinimal:  {5, 3, 5},
	DetailNormal:   {10, 5, 10},
	DetailDetailed: {20, 10, 20},
}

func capsFor(d DetailLevel) caps {
	if c, ok := detailCaps[d]; ok {
		return c
	}
	return detailCaps[DetailNormal]
}

func capEntries(entries []LogEntry, n int) []LogEntry {
	if len(entries) <= n {
		return entries
	}
	return entries[:n]
}
