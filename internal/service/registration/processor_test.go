package registration

import (
	"strings"
	"testing"
	"time"

	"tusafishe-service/internal/domain/customer"
)

func newCustomer(state customer.RegistrationState) *customer.Customer {
	c := customer.NewCustomer("+254700000000", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	c.ID = "65a1f0c2d9e8b7a6"
	c.RegistrationState = state
	return c
}

func registered(credits int) *customer.Customer {
	c := newCustomer(customer.StateCompleted)
	c.IsRegistered = true
	c.Credits = credits
	acct := "TSFE8B7A6"
	c.AccountID = &acct
	return c
}

func stateOf(t *testing.T, d Decision) customer.RegistrationState {
	t.Helper()
	if d.Patch == nil || d.Patch.RegistrationState == nil {
		t.Fatalf("expected a state change, got patch %+v", d.Patch)
	}
	return *d.Patch.RegistrationState
}

func TestProcessAbsentCustomerGetsWelcome(t *testing.T) {
	p := NewProcessor("TSF")

	for _, msg := range []string{"REGISTER", "hello", "", "MENU"} {
		d := p.Process(nil, msg)
		if d.Reply != "Welcome to Tusafishe Water Kiosks! 💧\nReply REGISTER to start" {
			t.Fatalf("message %q: unexpected reply %q", msg, d.Reply)
		}
		if d.Patch != nil {
			t.Fatalf("message %q: expected no patch, got %+v", msg, d.Patch)
		}
	}
}

func TestProcessMenu(t *testing.T) {
	p := NewProcessor("TSF")

	t.Run("unregistered moves to main menu", func(t *testing.T) {
		for _, msg := range []string{"MENU", " help ", "Start"} {
			d := p.Process(newCustomer(customer.StateRegistrationName), msg)
			if got := stateOf(t, d); got != customer.StateMainMenu {
				t.Fatalf("expected main_menu, got %q", got)
			}
			if d.Patch.IsRegistered != nil {
				t.Fatal("menu must not touch is_registered")
			}
			if d.Patch.FullName != nil {
				t.Fatal("menu must not be stored as the full name")
			}
			if !strings.Contains(d.Reply, "1. Register") {
				t.Fatalf("unexpected reply %q", d.Reply)
			}
		}
	})

	t.Run("registered sees balance", func(t *testing.T) {
		d := p.Process(registered(50), "menu")
		if d.Patch != nil {
			t.Fatalf("expected no patch, got %+v", d.Patch)
		}
		if d.Reply != "💧 Tusafishe Water Kiosk\nBalance: 50 KES\nCommands: BALANCE, MENU" {
			t.Fatalf("unexpected reply %q", d.Reply)
		}
	})
}

func TestProcessRegisterFromAnyState(t *testing.T) {
	p := NewProcessor("TSF")

	for _, state := range customer.States {
		for _, msg := range []string{"REGISTER", "1", "  register\n"} {
			d := p.Process(newCustomer(state), msg)
			if got := stateOf(t, d); got != customer.StateRegistrationID {
				t.Fatalf("state %q msg %q: expected registration_id, got %q", state, msg, got)
			}
			if d.Reply != "Let's register! Enter your ID number:" {
				t.Fatalf("unexpected reply %q", d.Reply)
			}
		}
	}

	d := p.Process(registered(0), "REGISTER")
	if d.Reply != "Already registered! Reply MENU for options" || d.Patch != nil {
		t.Fatalf("unexpected decision %+v", d)
	}
}

func TestProcessIDLength(t *testing.T) {
	p := NewProcessor("TSF")

	tests := []struct {
		input   string
		advance bool
	}{
		{input: "12345", advance: false},
		{input: "123456", advance: true},
		{input: "A1234567", advance: true},
		{input: "abc", advance: false},
		{input: "", advance: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d := p.Process(newCustomer(customer.StateRegistrationID), tt.input)
			if tt.advance {
				if got := stateOf(t, d); got != customer.StateRegistrationName {
					t.Fatalf("expected registration_name, got %q", got)
				}
				return
			}
			if d.Patch != nil {
				t.Fatalf("expected to stay in registration_id, got %+v", d.Patch)
			}
			if d.Reply != "Please enter valid ID (min 6 digits):" {
				t.Fatalf("unexpected reply %q", d.Reply)
			}
		})
	}
}

func TestProcessNumericShortcutDuringIDStepIsACommand(t *testing.T) {
	p := NewProcessor("TSF")

	// "2" is the balance shortcut, but the ID step is checked first.
	d := p.Process(newCustomer(customer.StateRegistrationID), "2")
	if d.Reply != "Please enter valid ID (min 6 digits):" {
		t.Fatalf("unexpected reply %q", d.Reply)
	}
}

func TestProcessNameStoredVerbatim(t *testing.T) {
	p := NewProcessor("TSF")

	d := p.Process(newCustomer(customer.StateRegistrationName), "  Jane  Doe ")
	if got := stateOf(t, d); got != customer.StateRegistrationLocation {
		t.Fatalf("expected registration_location, got %q", got)
	}
	if d.Patch.FullName == nil || *d.Patch.FullName != "  Jane  Doe " {
		t.Fatalf("expected name stored as received, got %v", d.Patch.FullName)
	}
}

func TestProcessLocationCompletesRegistration(t *testing.T) {
	p := NewProcessor("TSF")
	c := newCustomer(customer.StateRegistrationLocation)

	first := p.Process(c, "Nairobi")
	second := p.Process(c, "Nairobi")

	if got := stateOf(t, first); got != customer.StateCompleted {
		t.Fatalf("expected completed, got %q", got)
	}
	if first.Patch.IsRegistered == nil || !*first.Patch.IsRegistered {
		t.Fatal("expected is_registered=true")
	}
	if first.Patch.AccountID == nil || *first.Patch.AccountID != "TSFE8B7A6" {
		t.Fatalf("unexpected account id %v", first.Patch.AccountID)
	}
	if *second.Patch.AccountID != *first.Patch.AccountID {
		t.Fatal("expected the same id to yield the same account id")
	}
	if first.Patch.Location == nil || *first.Patch.Location != "Nairobi" {
		t.Fatalf("unexpected location %v", first.Patch.Location)
	}
	if !strings.Contains(first.Reply, "🎉 Registration complete!") || !strings.Contains(first.Reply, "Account: TSFE8B7A6") {
		t.Fatalf("unexpected reply %q", first.Reply)
	}
}

func TestProcessBalance(t *testing.T) {
	p := NewProcessor("TSF")

	t.Run("registered", func(t *testing.T) {
		d := p.Process(registered(50), "2")
		if !strings.Contains(d.Reply, "Balance: 50 KES") || !strings.Contains(d.Reply, "TSFE8B7A6") {
			t.Fatalf("unexpected reply %q", d.Reply)
		}
		if d.Patch != nil {
			t.Fatalf("expected no patch, got %+v", d.Patch)
		}
	})

	t.Run("registered without account id", func(t *testing.T) {
		c := registered(0)
		c.AccountID = nil
		d := p.Process(c, "BALANCE")
		if d.Reply != "💧 Account: N/A\nBalance: 0 KES" {
			t.Fatalf("unexpected reply %q", d.Reply)
		}
	})

	t.Run("unregistered", func(t *testing.T) {
		d := p.Process(newCustomer(customer.StateMainMenu), "BALANCE")
		if d.Reply != "Please register first. Reply REGISTER" {
			t.Fatalf("unexpected reply %q", d.Reply)
		}
		if d.Patch != nil {
			t.Fatalf("expected state unchanged, got %+v", d.Patch)
		}
	})
}

func TestProcessUnrecognized(t *testing.T) {
	p := NewProcessor("TSF")

	if d := p.Process(registered(0), "water please"); d.Reply != "Command not recognized. Reply MENU for help" || d.Patch != nil {
		t.Fatalf("unexpected decision %+v", d)
	}
	if d := p.Process(newCustomer(customer.StateNew), "water please"); d.Reply != "Welcome! Reply REGISTER to start" || d.Patch != nil {
		t.Fatalf("unexpected decision %+v", d)
	}
	if d := p.Process(newCustomer("legacy_state"), "hi"); d.Reply != "Welcome! Reply REGISTER to start" {
		t.Fatalf("unexpected reply for unknown state %q", d.Reply)
	}
}

func TestProcessRegistrationScenario(t *testing.T) {
	p := NewProcessor("TSF")
	c := newCustomer(customer.StateNew)

	steps := []struct {
		text  string
		reply string
		state customer.RegistrationState
	}{
		{text: "REGISTER", reply: "Let's register! Enter your ID number:", state: customer.StateRegistrationID},
		{text: "123456789", reply: "✅ ID saved! Enter your full name:", state: customer.StateRegistrationName},
		{text: "Jane Doe", reply: "✅ Name saved! Enter your location:", state: customer.StateRegistrationLocation},
		{text: "Nairobi", reply: "🎉 Registration complete!", state: customer.StateCompleted},
	}

	for _, step := range steps {
		d := p.Process(c, step.text)
		if !strings.HasPrefix(d.Reply, step.reply) {
			t.Fatalf("after %q: expected reply starting %q, got %q", step.text, step.reply, d.Reply)
		}
		d.Patch.Apply(c)
		if c.RegistrationState != step.state {
			t.Fatalf("after %q: expected state %q, got %q", step.text, step.state, c.RegistrationState)
		}
	}

	if c.FullName == nil || *c.FullName != "Jane Doe" {
		t.Fatalf("expected full name Jane Doe, got %v", c.FullName)
	}
	if !c.IsRegistered {
		t.Fatal("expected customer to be registered")
	}
	if !strings.HasPrefix(c.AccountIDOrDefault(""), "TSF") {
		t.Fatalf("expected account id starting with TSF, got %q", c.AccountIDOrDefault(""))
	}
}
