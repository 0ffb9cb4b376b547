package whatsapp

import "strings"

// WhatsApp address suffixes. Individual contacts use @c.us, groups @g.us.
const (
	UserSuffix  = "@c.us"
	GroupSuffix = "@g.us"
)

// NormalizeUser appends the individual-contact suffix when missing.
func NormalizeUser(number string) string {
	if strings.HasSuffix(number, UserSuffix) {
		return number
	}
	return number + UserSuffix
}

// NormalizeGroup appends the group suffix when missing.
func NormalizeGroup(id string) string {
	if strings.HasSuffix(id, GroupSuffix) {
		return id
	}
	return id + GroupSuffix
}

// IsUserAddress reports whether addr is an individual-contact address.
func IsUserAddress(addr string) bool {
	return strings.HasSuffix(addr, UserSuffix)
}

// StripUser removes the individual-contact suffix, yielding the bare
// phone number.
func StripUser(addr string) string {
	return strings.TrimSuffix(addr, UserSuffix)
}
