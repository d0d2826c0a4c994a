package commands

type AcceptProposal struct {
	ID      string `json:"_id"`
	Account string `json:"account"`
	// BatchWeight may legitimately be zero; nil means absent.
	BatchWeight *uint64 `json:"batchWeight"`
}

func (p AcceptProposal) kind() Kind { return KindAcceptProposal }

func (p AcceptProposal) validate() *ValidationError {
	c := newChecker(KindAcceptProposal)
	c.requireString("_id", p.ID)
	c.requireString("account", p.Account)
	c.requirePresent("batchWeight", p.BatchWeight != nil)
	return c.result()
}

func NewAcceptProposalCmd(p AcceptProposal) (*Cmd, error) {
	return build(p)
}

type DeclineProposal struct {
	ID      string `json:"_id"`
	Account string `json:"account"`
}

func (p DeclineProposal) kind() Kind { return KindDeclineProposal }

func (p DeclineProposal) validate() *ValidationError {
	c := newChecker(KindDeclineProposal)
	c.requireString("_id", p.ID)
	c.requireString("account", p.Account)
	return c.result()
}

func NewDeclineProposalCmd(p DeclineProposal) (*Cmd, error) {
	return build(p)
}

// Uint64 returns a pointer to v, for optional numeric payload fields.
func Uint64(v uint64) *uint64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}
