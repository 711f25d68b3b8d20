package models

import "strings"

// Address identifies an account. The zero value is the null address.
type Address string

const NullAddress Address = ""

func (a Address) IsNull() bool {
	return strings.TrimSpace(string(a)) == ""
}

func (a Address) String() string {
	return string(a)
}
