package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexUID accepts a uid encoded either as a JSON number or a string.
// paimon.moe has written both forms across export versions.
type FlexUID int32

func (u *FlexUID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("flex uid: %w", err)
		}
		data = []byte(s)
	}

	v, err := strconv.ParseInt(string(data), 10, 32)
	if err != nil {
		return fmt.Errorf("flex uid %q: %w", data, err)
	}
	*u = FlexUID(v)
	return nil
}
