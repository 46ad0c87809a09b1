package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// CodeString is a code field that clients send either as a JSON string or
// as a JSON number ("5" and 5 are the same meal code).
type CodeString string

// UnmarshalJSON accepts strings and numbers and rejects every other JSON type
func (s *CodeString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = CodeString(strings.TrimSpace(str))
		return nil
	}

	var num json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&num); err != nil {
		return errors.New("code must be a string or a number")
	}
	*s = CodeString(num.String())
	return nil
}

func (s CodeString) String() string {
	return string(s)
}
