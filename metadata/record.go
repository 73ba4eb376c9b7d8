package metadata

import (
	"math/big"
)

const (
	FieldID          = "id"
	FieldURI         = "uri"
	FieldName        = "name"
	FieldDescription = "description"
	FieldImage       = "image"
)

// TokenReference identifies a token and the URI its collection returned
// for it. ID is the decimal form of the on-chain token id.
type TokenReference struct {
	ID  string
	URI string
}

func NewTokenReference(id *big.Int, uri string) TokenReference {
	return TokenReference{
		ID:  id.String(),
		URI: uri,
	}
}

// Record is a display-ready metadata document. Every field of the fetched
// JSON document is kept verbatim, id and uri are always present.
type Record map[string]interface{}

func (r Record) str(key string) string {
	v, ok := r[key].(string)
	if !ok {
		return ""
	}
	return v
}

func (r Record) ID() string          { return r.str(FieldID) }
func (r Record) URI() string         { return r.str(FieldURI) }
func (r Record) Name() string        { return r.str(FieldName) }
func (r Record) Description() string { return r.str(FieldDescription) }
func (r Record) Image() string       { return r.str(FieldImage) }

// Attributes returns the conventional ERC721 "attributes" list as
// trait/value pairs. Entries that don't follow the convention are skipped.
func (r Record) Attributes() [][2]string {
	raw, ok := r["attributes"].([]interface{})
	if !ok {
		return nil
	}
	result := [][2]string{}
	for _, a := range raw {
		m, ok := a.(map[string]interface{})
		if !ok {
			continue
		}
		trait, _ := m["trait_type"].(string)
		if trait == "" {
			continue
		}
		result = append(result, [2]string{trait, stringify(m["value"])})
	}
	return result
}

func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	result := make(Record, len(r))
	for k, v := range r {
		result[k] = v
	}
	return result
}
