// Package dashboard implements the interactive quick-dial screen: a header,
// a vertical list of contact cards, a footer and a help bar.
package dashboard

// DialedMsg carries the result of handing a dial intent to the platform.
// Err reports only a failure to launch the handler, never the call outcome.
type DialedMsg struct {
	ContactID int
	URI       string
	Err       error
}
