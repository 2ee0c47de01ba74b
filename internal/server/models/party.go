package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ISTE-SCTCE/Admin/internal/common"
)

// Party is one end of a direct message: either a user id or the legacy admin
// pseudo-party. The zero value is "no party".
type Party struct {
	userID int64
	legacy bool
}

// LegacyAdmin is the party older messages used for the shared admin inbox.
var LegacyAdmin = Party{legacy: true}

// UserParty returns the party for a user id.
func UserParty(id int64) Party {
	return Party{userID: id}
}

// UserID returns the user id and true for user parties.
func (p Party) UserID() (int64, bool) {
	if p.legacy || p.userID == 0 {
		return 0, false
	}
	return p.userID, true
}

func (p Party) IsLegacyAdmin() bool { return p.legacy }

func (p Party) IsZero() bool { return !p.legacy && p.userID == 0 }

func (p Party) String() string {
	if p.legacy {
		return common.LegacyAdminParty
	}
	return strconv.FormatInt(p.userID, 10)
}

// ParseParty accepts a positive decimal user id or "admin".
func ParseParty(s string) (Party, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, common.LegacyAdminParty) {
		return LegacyAdmin, nil
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return Party{}, fmt.Errorf("%w: invalid party %q", common.ErrValidation, s)
	}

	return UserParty(id), nil
}

func (p Party) MarshalJSON() ([]byte, error) {
	switch {
	case p.legacy:
		return json.Marshal(common.LegacyAdminParty)
	case p.userID == 0:
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(p.userID, 10)), nil
}

// UnmarshalJSON decodes a number, a numeric string, "admin" or null.
func (p *Party) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	if bytes.Equal(b, []byte("null")) {
		*p = Party{}
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := ParseParty(s)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("%w: invalid party %s", common.ErrValidation, b)
	}
	parsed, err := ParseParty(n.String())
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
