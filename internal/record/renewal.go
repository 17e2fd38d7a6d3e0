package record

import (
	"encoding/json"
	"strings"
)

// Regnums is a list of registration numbers that decodes from either a
// single string or an array, and encodes a single entry as a plain string.
type Regnums []string

// UnmarshalJSON implements json.Unmarshaler.
func (r *Regnums) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			*r = nil
		} else {
			*r = Regnums{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*r = Regnums(compact(many))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r Regnums) MarshalJSON() ([]byte, error) {
	switch len(r) {
	case 0:
		return []byte("null"), nil
	case 1:
		return json.Marshal(r[0])
	default:
		return json.Marshal([]string(r))
	}
}

// Renewal is a renewal filing that refers back to an original registration.
// It is read-only after ingestion.
type Renewal struct {
	UUID                string   `json:"uuid,omitempty"`
	Regnum              Regnums  `json:"regnum"`
	RegDate             string   `json:"reg_date,omitempty"`
	RenewalID           string   `json:"renewal_id,omitempty"`
	RenewalDate         string   `json:"renewal_date,omitempty"`
	Author              string   `json:"author,omitempty"`
	Title               string   `json:"title,omitempty"`
	NewMatter           any      `json:"new_matter,omitempty"`
	SeeAlsoRenewal      []string `json:"see_also_renewal,omitempty"`
	SeeAlsoRegistration []string `json:"see_also_registration,omitempty"`
	FullText            string   `json:"full_text,omitempty"`
}

// Keys returns the renewal's registration numbers with hyphens removed, the
// form used to index renewals.
func (r *Renewal) Keys() []string {
	keys := make([]string, 0, len(r.Regnum))
	for _, regnum := range r.Regnum {
		if key := RegnumKey(regnum); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// NormalizedRegDate is the renewal's original registration date in ISODate
// form, or "" when it does not parse.
func (r *Renewal) NormalizedRegDate() string {
	return NormalizeDate(strings.TrimSpace(r.RegDate))
}

// RegnumKey strips hyphens and surrounding space from a registration number.
func RegnumKey(regnum string) string {
	return strings.ReplaceAll(strings.TrimSpace(regnum), "-", "")
}
