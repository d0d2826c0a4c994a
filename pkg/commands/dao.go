package commands

// Attributes maps attribute ids to their values.
type Attributes map[string]interface{}

type CreateDao struct {
	Email         string     `json:"email"`
	PubKey        string     `json:"pubKey"`
	Roles         []Role     `json:"roles,omitempty"`
	Attributes    Attributes `json:"attributes,omitempty"`
	IsTeamAccount bool       `json:"isTeamAccount"`
}

type Role struct {
	Role   string `json:"role"`
	TeamID string `json:"teamId,omitempty"`
}

func (p CreateDao) kind() Kind { return KindCreateDao }

func (p CreateDao) validate() *ValidationError {
	c := newChecker(KindCreateDao)
	c.requireString("email", p.Email)
	c.requireString("pubKey", p.PubKey)
	for i, r := range p.Roles {
		if r.Role == "" {
			c.invalid("roles", i, "role name is required")
		}
	}
	return c.result()
}

// NewCreateDaoCmd builds the command that registers a new user DAO.
func NewCreateDaoCmd(p CreateDao) (*Cmd, error) {
	return build(p)
}

type UpdateDao struct {
	ID            string     `json:"_id"`
	Description   string     `json:"description"`
	Attributes    Attributes `json:"attributes"`
	Email         string     `json:"email"`
	Status        *int       `json:"status,omitempty"`
	IsTeamAccount bool       `json:"isTeamAccount"`
}

func (p UpdateDao) kind() Kind { return KindUpdateDao }

func (p UpdateDao) validate() *ValidationError {
	c := newChecker(KindUpdateDao)
	c.requireString("_id", p.ID)
	c.requireString("description", p.Description)
	c.requireString("email", p.Email)
	c.requirePresent("attributes", p.Attributes != nil)
	if p.Status != nil && *p.Status < 0 {
		c.invalid("status", *p.Status, "must not be negative")
	}
	return c.result()
}

// NewUpdateDaoCmd builds the command that updates a DAO's profile.
func NewUpdateDaoCmd(p UpdateDao) (*Cmd, error) {
	return build(p)
}

// Authority is a weighted key threshold controlling a DAO.
type Authority struct {
	Owner AuthorityOwner `json:"owner"`
}

type AuthorityOwner struct {
	Auths           []AuthorityKey `json:"auths"`
	WeightThreshold uint32         `json:"weight_threshold"`
}

type AuthorityKey struct {
	Key    string `json:"key"`
	Weight uint32 `json:"weight"`
}

type AlterDaoAuthority struct {
	ID            string     `json:"_id"`
	IsTeamAccount bool       `json:"isTeamAccount"`
	Authority     *Authority `json:"authority"`
}

func (p AlterDaoAuthority) kind() Kind { return KindAlterDaoAuthority }

func (p AlterDaoAuthority) validate() *ValidationError {
	c := newChecker(KindAlterDaoAuthority)
	c.requireString("_id", p.ID)
	c.requirePresent("authority", p.Authority != nil)
	if p.Authority != nil {
		if len(p.Authority.Owner.Auths) == 0 {
			c.invalid("authority", "owner.auths", "at least one key is required")
		}
		if p.Authority.Owner.WeightThreshold == 0 {
			c.invalid("authority", "owner.weight_threshold", "threshold must be positive")
		}
		for _, a := range p.Authority.Owner.Auths {
			if a.Key == "" {
				c.invalid("authority", "owner.auths.key", "key must not be empty")
			}
		}
	}
	return c.result()
}

// NewAlterDaoAuthorityCmd builds the command that replaces a DAO's signing authority.
func NewAlterDaoAuthorityCmd(p AlterDaoAuthority) (*Cmd, error) {
	return build(p)
}
