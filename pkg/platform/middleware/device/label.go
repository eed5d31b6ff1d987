// Package device derives a readable device label from a User-Agent string.
// Labels are attached to audit events; they are never used for authorization.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown device"

// Label returns "<browser> on <os>", with a mobile or bot marker when detected.
func Label(userAgent string) string {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return unknownDevice
	}

	ua := useragent.New(userAgent)
	if ua.Bot() {
		name, _ := ua.Browser()
		if name == "" {
			return "Bot"
		}
		return "Bot (" + name + ")"
	}

	browser, _ := ua.Browser()
	os := ua.OS()
	switch {
	case browser == "" && os == "":
		return unknownDevice
	case os == "":
		return browser
	case browser == "":
		return os
	}

	label := browser + " on " + os
	if ua.Mobile() {
		label += " (mobile)"
	}
	return label
}
