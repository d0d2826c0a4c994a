// Package commands defines the typed application commands sent to the chain
// service. A command is validated once at construction and is read-only
// afterwards.
package commands

import (
	"encoding/json"
	"fmt"
)

// Kind identifies an application command on the wire (cmdNum).
type Kind uint16

const (
	KindUnknown Kind = iota
	KindCreateDao
	KindUpdateDao
	KindAlterDaoAuthority
	KindAcceptProposal
	KindDeclineProposal
	KindCreateAttribute
	KindUpdateAttribute
	KindDeleteAttribute
	KindCreateLayout
	KindUpdateLayout
	KindDeleteLayout
	KindUpdatePortalSettings
)

var kindNames = map[Kind]string{
	KindCreateDao:            "CREATE_DAO",
	KindUpdateDao:            "UPDATE_DAO",
	KindAlterDaoAuthority:    "ALTER_DAO_AUTHORITY",
	KindAcceptProposal:       "ACCEPT_PROPOSAL",
	KindDeclineProposal:      "DECLINE_PROPOSAL",
	KindCreateAttribute:      "CREATE_ATTRIBUTE",
	KindUpdateAttribute:      "UPDATE_ATTRIBUTE",
	KindDeleteAttribute:      "DELETE_ATTRIBUTE",
	KindCreateLayout:         "CREATE_LAYOUT",
	KindUpdateLayout:         "UPDATE_LAYOUT",
	KindDeleteLayout:         "DELETE_LAYOUT",
	KindUpdatePortalSettings: "UPDATE_PORTAL_SETTINGS",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint16(k))
}

// Cmd is a validated, immutable command.
type Cmd struct {
	kind    Kind
	payload json.RawMessage
}

type wireCmd struct {
	CmdNum     Kind            `json:"cmdNum"`
	CmdPayload json.RawMessage `json:"cmdPayload"`
}

// Kind returns the command kind.
func (c *Cmd) Kind() Kind {
	return c.kind
}

// Payload returns a copy of the canonical JSON payload.
func (c *Cmd) Payload() json.RawMessage {
	out := make(json.RawMessage, len(c.payload))
	copy(out, c.payload)
	return out
}

// DecodePayload unmarshals the payload into v.
func (c *Cmd) DecodePayload(v interface{}) error {
	return json.Unmarshal(c.payload, v)
}

func (c *Cmd) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCmd{CmdNum: c.kind, CmdPayload: c.payload})
}

// payload is implemented by every typed command payload.
type payload interface {
	kind() Kind
	validate() *ValidationError
}

func build(p payload) (*Cmd, error) {
	if verr := p.validate(); verr != nil {
		return nil, verr
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", p.kind(), err)
	}
	return &Cmd{kind: p.kind(), payload: raw}, nil
}
