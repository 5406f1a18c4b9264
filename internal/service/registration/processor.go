// internal/service/registration/processor.go
package registration

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"tusafishe-service/internal/domain/customer"
)

// minIDLength is the shortest national ID number accepted.
const minIDLength = 6

type command int

const (
	commandNone command = iota
	commandMenu
	commandRegister
	commandBalance
)

// parseCommand matches keywords after trimming and lowercasing.
func parseCommand(text string) command {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "menu", "help", "start":
		return commandMenu
	case "register", "1":
		return commandRegister
	case "balance", "2":
		return commandBalance
	}
	return commandNone
}

// Decision is what a turn should reply and persist.
type Decision struct {
	Reply string
	Patch *customer.Patch
}

// Processor maps (customer, message) to a Decision. It performs no I/O.
type Processor struct {
	accountPrefix string
}

func NewProcessor(accountPrefix string) *Processor {
	return &Processor{accountPrefix: accountPrefix}
}

// ErrorReply is sent when a turn cannot be processed, e.g. the store is down.
func (p *Processor) ErrorReply() string {
	return replyError
}

// Process decides the reply and updates for one inbound message. A nil
// customer means the sender was just seen for the first time.
//
// Commands are checked before the registration step, so MENU or REGISTER
// typed mid-registration is never taken as free text.
func (p *Processor) Process(c *customer.Customer, message string) Decision {
	if c == nil {
		return Decision{Reply: replyWelcome}
	}

	cmd := parseCommand(message)

	switch cmd {
	case commandMenu:
		if c.IsRegistered {
			return Decision{Reply: fmt.Sprintf(replyRegisteredMenu, c.Credits)}
		}
		return Decision{Reply: replyMainMenu, Patch: customer.WithState(customer.StateMainMenu)}

	case commandRegister:
		if c.IsRegistered {
			return Decision{Reply: replyAlreadyRegistered}
		}
		return Decision{Reply: replyAskID, Patch: customer.WithState(customer.StateRegistrationID)}
	}

	if d, ok := p.registrationStep(c, message); ok {
		return d
	}

	if cmd == commandBalance {
		if c.IsRegistered {
			return Decision{Reply: fmt.Sprintf(replyBalance, c.AccountIDOrDefault("N/A"), c.Credits)}
		}
		return Decision{Reply: replyRegisterFirst}
	}

	if c.IsRegistered {
		return Decision{Reply: replyNotRecognized}
	}
	return Decision{Reply: replyStart}
}

// registrationStep handles free-text input for the state the customer is in.
// ok is false for states that do not expect free text.
func (p *Processor) registrationStep(c *customer.Customer, message string) (Decision, bool) {
	switch c.RegistrationState {
	case customer.StateRegistrationID:
		// The ID number itself is not stored; only its length is checked.
		if utf8.RuneCountInString(message) < minIDLength {
			return Decision{Reply: replyInvalidID}, true
		}
		return Decision{Reply: replyIDSaved, Patch: customer.WithState(customer.StateRegistrationName)}, true

	case customer.StateRegistrationName:
		name := message
		patch := customer.WithState(customer.StateRegistrationLocation)
		patch.FullName = &name
		return Decision{Reply: replyNameSaved, Patch: patch}, true

	case customer.StateRegistrationLocation:
		location := message
		accountID := customer.DeriveAccountID(p.accountPrefix, c.ID)
		registered := true
		patch := customer.WithState(customer.StateCompleted)
		patch.Location = &location
		patch.AccountID = &accountID
		patch.IsRegistered = &registered
		return Decision{Reply: fmt.Sprintf(replyCompleted, accountID), Patch: patch}, true

	case customer.StateNew, customer.StateMainMenu, customer.StateCompleted:
		return Decision{}, false
	}

	// Unknown stored value: treat like a state without free-text input.
	return Decision{}, false
}
