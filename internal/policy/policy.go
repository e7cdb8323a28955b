// Package policy decides who may send a direct message to whom.
package policy

// CanMessage reports whether senderID may open a direct message to
// recipientID given the sender's allow-list.
//
// An empty allow-list means the sender has not restricted anyone and may
// message any user. A non-empty list restricts the sender to the users on
// it. Messaging yourself is always allowed.
func CanMessage(senderID, recipientID uint, allowList []uint) bool {
	if senderID == recipientID {
		return true
	}

	if len(allowList) == 0 {
		return true
	}

	for _, id := range allowList {
		if id == recipientID {
			return true
		}
	}

	return false
}
