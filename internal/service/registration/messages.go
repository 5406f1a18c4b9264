// internal/service/registration/messages.go
package registration

// Replies sent back to customers. Kept together so copy changes touch one file.
const (
	replyWelcome = "Welcome to Tusafishe Water Kiosks! 💧\nReply REGISTER to start"

	replyRegisteredMenu = "💧 Tusafishe Water Kiosk\nBalance: %d KES\nCommands: BALANCE, MENU"
	replyMainMenu       = "Welcome to Tusafishe! 💧\n1. Register\n2. Check Balance\nReply with number"

	replyAlreadyRegistered = "Already registered! Reply MENU for options"
	replyAskID             = "Let's register! Enter your ID number:"
	replyIDSaved           = "✅ ID saved! Enter your full name:"
	replyInvalidID         = "Please enter valid ID (min 6 digits):"
	replyNameSaved         = "✅ Name saved! Enter your location:"
	replyCompleted         = "🎉 Registration complete!\nAccount: %s\nReply MENU for options"

	replyBalance       = "💧 Account: %s\nBalance: %d KES"
	replyRegisterFirst = "Please register first. Reply REGISTER"

	replyNotRecognized = "Command not recognized. Reply MENU for help"
	replyStart         = "Welcome! Reply REGISTER to start"

	replyError = "Error occurred. Reply MENU to try again"
)
