package services

import (
	"errors"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// dialString matches what a SIP user may dial besides full numbers:
// extensions, feature codes and the like.
var dialString = regexp.MustCompile(`^[0-9*#]{1,15}$`)

var errBadPhone = errors.New("must be a phone number or extension")

// NormalizePhone returns raw in E.164 form when it parses as a valid phone
// number (international, or national in region), or unchanged when it is a
// plain dial string such as an extension.
func NormalizePhone(raw, region string) (string, error) {
	s := strings.Join(strings.Fields(raw), "")
	if s == "" {
		return "", errBadPhone
	}

	if strings.HasPrefix(s, "+") || region != "" {
		if num, err := phonenumbers.Parse(s, strings.ToUpper(region)); err == nil && phonenumbers.IsValidNumber(num) {
			return phonenumbers.Format(num, phonenumbers.E164), nil
		}
	}
	if dialString.MatchString(s) {
		return s, nil
	}
	return "", errBadPhone
}

// DisplayPhone formats an E.164 number in international notation and
// leaves anything else as is.
func DisplayPhone(s string) string {
	if !strings.HasPrefix(s, "+") {
		return s
	}
	num, err := phonenumbers.Parse(s, "")
	if err != nil {
		return s
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
}
