package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowCookieGuide writes step-by-step instructions for copying the
// .ROBLOSECURITY cookie out of a browser.
func ShowCookieGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)
	lines := []string{
		rule,
		"ROBLOX SECURITY COOKIE",
		rule,
		"",
		"Instance listings are only served to a signed-in session. rblxlocate",
		"sends your .ROBLOSECURITY cookie with every request and nothing else.",
		"",
		"1. Sign in at https://www.roblox.com in your browser.",
		"2. Open Developer Tools (F12, or Cmd+Option+I on Mac).",
		"3. Chrome/Edge/Brave: Application tab > Storage > Cookies.",
		"   Firefox: Storage tab > Cookies.",
		"4. Select https://www.roblox.com and find .ROBLOSECURITY.",
		"5. Copy the whole value. It starts with _|WARNING:-DO-NOT-SHARE-THIS.",
		"",
		"Tips:",
		"  • Pasting \".ROBLOSECURITY=<value>\" works too; the prefix is stripped.",
		"  • Signing out of the browser invalidates the cookie.",
		"",
		"WARNING: the cookie grants full access to the account. Never share it.",
		"Saved cookies are kept in the system keychain or an encrypted file.",
		rule,
		"",
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

// ShowQuickGuide writes a one-line reminder for experienced users
func ShowQuickGuide(w io.Writer) {
	fmt.Fprintln(w, "F12 > Application > Cookies > https://www.roblox.com > copy .ROBLOSECURITY (type 'help' for details)")
}
