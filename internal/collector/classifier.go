package collector

import (
	"strings"

	"emailstats/internal/gmail"
)

type Classification int

const (
	None Classification = iota
	ReceivedHome
	ReceivedOther
	SentHome
	SentOther
)

func (c Classification) String() string {
	switch c {
	case ReceivedHome:
		return "received_home"
	case ReceivedOther:
		return "received_other"
	case SentHome:
		return "sent_home"
	case SentOther:
		return "sent_other"
	default:
		return "none"
	}
}

// Classifier buckets a message by its first From or To header that does not
// mention the mailbox owner. Later headers are never consulted, so a message
// counts in at most one bucket.
type Classifier struct {
	homeAddress string
	homeDomain  string
}

func NewClassifier(homeAddress, homeDomain string) Classifier {
	return Classifier{homeAddress: homeAddress, homeDomain: homeDomain}
}

func (c Classifier) Classify(headers []gmail.Header) Classification {
	for _, h := range headers {
		switch h.Name {
		case gmail.HeaderFrom:
			if c.isSelf(h.Value) {
				continue
			}
			if strings.Contains(h.Value, c.homeDomain) {
				return ReceivedHome
			}
			return ReceivedOther
		case gmail.HeaderTo:
			if c.isSelf(h.Value) {
				continue
			}
			if strings.Contains(h.Value, c.homeDomain) {
				return SentHome
			}
			return SentOther
		}
	}
	return None
}

func (c Classifier) isSelf(value string) bool {
	return c.homeAddress != "" && strings.Contains(value, c.homeAddress)
}
