package jsonpointer

import (
	"bytes"
	"encoding/json"
	"strings"
)

type Pointer []string

var tokenEncoder *strings.Replacer

func init() {
	tokenEncoder = strings.NewReplacer("~", "~0", "/", "~1")
}

func (p Pointer) String() string {
	var buf bytes.Buffer

	for _, token := range p {
		buf.WriteByte('/')
		buf.WriteString(encodeToken(token))
	}

	return buf.String()
}

func (p Pointer) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Pointer) Append(token string) {
	*p = append(*p, token)
}

func encodeToken(s string) string {
	return tokenEncoder.Replace(s)
}
