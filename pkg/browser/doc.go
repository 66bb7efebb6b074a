// Package browser opens Playwright browser sessions from a resolved capability
// set and execution mode.
//
// A Plan is derived first with NewPlan, which is pure and maps capabilities
// onto Playwright options:
//
//   - browserName selects the engine (chrome/edge: Chromium, firefox, safari/webkit)
//   - screenResolution becomes the context viewport
//   - timeZone city names map to IANA zones
//   - commandTimeout (seconds) becomes the page default timeout
//   - recordVideo enables context video recording
//
// Local plans launch a browser with the sandbox enabled. Remote plans attach
// to the grid URL, over WebSocket for ws/wss and over CDP for http/https.
//
// The fallback grid URL (grid.DefaultGridURL, http://localhost:4444/wd/hub)
// is a Selenium WebDriver hub. Playwright cannot drive it: CDP attach against
// it fails, and Firefox or WebKit plans for it are rejected by NewPlan. Point
// SELENIUM_REMOTE_URL at a ws:// Playwright server or a Chromium CDP endpoint
// instead. The session manager logs a warning when asked to attach to a
// .../wd/hub URL.
//
//	plan, err := browser.NewPlan(mode, caps, headless, "videos")
//	session, err := manager.StartSession("", plan, caps)
//	defer manager.CloseSession(session.Name)
package browser
